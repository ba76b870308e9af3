package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/pkg/utils"
)

// Error codes returned in the "code" field
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeDocumentsIncomplete = "DOCUMENTS_INCOMPLETE"
	CodeUnavailable         = "SERVICE_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Paginated sends a list page with its metadata
func Paginated(c *gin.Context, items interface{}, meta utils.PageMeta) {
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"meta":  meta,
	})
}

// Error maps err to its HTTP status and writes the error body.
// Messages of unexpected errors are never exposed.
func Error(c *gin.Context, err error) {
	status := domainerrors.StatusOf(err)
	message := http.StatusText(status)

	if status != http.StatusInternalServerError {
		message = err.Error()
		var appErr *domainerrors.AppError
		if errors.As(err, &appErr) {
			message = appErr.Error()
		}
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{
		"code":    codeOf(err, status),
		"message": message,
	})
}

// ErrorWithStatus sends an error response with an explicit status and code
func ErrorWithStatus(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}

func codeOf(err error, status int) string {
	switch {
	case errors.Is(err, domainerrors.ErrDocumentsIncomplete):
		return CodeDocumentsIncomplete
	case errors.Is(err, domainerrors.ErrInvalidTransition):
		return CodeInvalidTransition
	}

	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthenticated
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusServiceUnavailable:
		return CodeUnavailable
	default:
		return CodeInternalError
	}
}
