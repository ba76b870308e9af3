package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/internal/interfaces/http/middleware"
	"sportsadmin.backend/internal/interfaces/http/response"
	"sportsadmin.backend/internal/usecases"
	"sportsadmin.backend/pkg/utils"
)

// DefaultMaxUploadBytes caps multipart uploads when no limit is configured
const DefaultMaxUploadBytes int64 = 10 << 20

const dateLayout = "2006-01-02"

// currentActor resolves the authenticated actor or writes a 401.
func currentActor(c *gin.Context) (entities.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthenticated("User not authenticated"))
		return entities.Actor{}, false
	}
	return actor, true
}

// uuidParam parses a path parameter or writes a 400.
func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, domainerrors.Validation(fmt.Sprintf("Invalid %s ID", label)))
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) utils.PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(utils.DefaultPageSize)))
	return utils.NewPageRequest(page, limit)
}

// csvQuery splits a comma separated query value, dropping blanks.
func csvQuery(c *gin.Context, key string) []string {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDate accepts either a calendar date or an RFC 3339 timestamp.
func parseDate(raw string) (null.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return null.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return null.TimeFrom(t.UTC()), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return null.Time{}, domainerrors.Validation("dates must be YYYY-MM-DD or RFC 3339")
	}
	return null.TimeFrom(t.UTC()), nil
}

// formFile reads an optional multipart file. The returned close func is never nil.
func formFile(c *gin.Context, field string, maxBytes int64) (*usecases.FileUpload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, domainerrors.Validation("Invalid multipart body")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if fh.Size > maxBytes {
		return nil, noop, domainerrors.Validation(fmt.Sprintf("file exceeds %d bytes", maxBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, domainerrors.Validation("Unreadable file")
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &usecases.FileUpload{
		Reader:      f,
		Size:        fh.Size,
		ContentType: contentType,
		Name:        fh.Filename,
	}, func() { _ = f.Close() }, nil
}

// actionResult writes the outcome of a workflow action.
func actionResult(c *gin.Context, status int, res *usecases.ActionResult, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, status, res)
}
