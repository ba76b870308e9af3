package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/internal/domain/workflow"
	"sportsadmin.backend/internal/interfaces/http/response"
	"sportsadmin.backend/internal/usecases"
)

type DocumentService interface {
	Requirements(contractType entities.ContractType) (workflow.Requirements, error)
	ListByContract(ctx context.Context, actor entities.Actor, contractID uuid.UUID) ([]*entities.Document, error)
	Readiness(ctx context.Context, actor entities.Actor, contractID uuid.UUID) (*workflow.ReadinessReport, error)
	ListExpiring(ctx context.Context, actor entities.Actor, days int) ([]*entities.Document, error)
}

type DocumentWorkflow interface {
	UploadDocument(ctx context.Context, actor entities.Actor, contractID uuid.UUID, docType entities.DocumentType, file *usecases.FileUpload, expiry null.Time) (*usecases.ActionResult, error)
	ReviewDocument(ctx context.Context, actor entities.Actor, documentID uuid.UUID, decision entities.ReviewDecision, notes string) (*usecases.ActionResult, error)
}

// ReviewDocumentInput is the body of a document review
type ReviewDocumentInput struct {
	Decision entities.ReviewDecision `json:"decision" binding:"required"`
	Notes    string                  `json:"notes"`
}

// DocumentHandler handles supporting document endpoints
type DocumentHandler struct {
	documents      DocumentService
	workflow       DocumentWorkflow
	maxUploadBytes int64
	defaultDays    int
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents DocumentService, workflow DocumentWorkflow, maxUploadBytes int64, defaultDays int) *DocumentHandler {
	return &DocumentHandler{documents: documents, workflow: workflow, maxUploadBytes: maxUploadBytes, defaultDays: defaultDays}
}

// Requirements lists required and optional document types
// GET /api/v1/documents/requirements?contract_type=service
func (h *DocumentHandler) Requirements(c *gin.Context) {
	contractType := entities.ContractType(c.DefaultQuery("contract_type", string(entities.ContractTypeService)))
	req, err := h.documents.Requirements(contractType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, req)
}

// ListByContract lists the documents of a contract
// GET /api/v1/contracts/:id/documents
func (h *DocumentHandler) ListByContract(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "contract")
	if !ok {
		return
	}

	docs, err := h.documents.ListByContract(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"documents": docs})
}

// Readiness reports whether every required document is approved
// GET /api/v1/contracts/:id/readiness
func (h *DocumentHandler) Readiness(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "contract")
	if !ok {
		return
	}

	report, err := h.documents.Readiness(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// Upload stores or replaces a document of the contract
// POST /api/v1/contracts/:id/documents (multipart: document_type, file, expiry_date)
func (h *DocumentHandler) Upload(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "contract")
	if !ok {
		return
	}

	file, closeFile, err := formFile(c, "file", h.maxUploadBytes)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()
	if file == nil {
		response.Error(c, domainerrors.Validation("file is required"))
		return
	}

	docType := entities.DocumentType(c.PostForm("document_type"))
	expiry, err := parseDate(c.PostForm("expiry_date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.workflow.UploadDocument(c.Request.Context(), actor, id, docType, file, expiry)
	actionResult(c, http.StatusCreated, res, err)
}

// Review approves or rejects an uploaded document
// POST /api/v1/documents/:id/review
func (h *DocumentHandler) Review(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "document")
	if !ok {
		return
	}

	var input ReviewDocumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	res, err := h.workflow.ReviewDocument(c.Request.Context(), actor, id, input.Decision, input.Notes)
	actionResult(c, http.StatusOK, res, err)
}

// ListExpiring lists approved documents expiring within the window
// GET /api/v1/documents/expiring?days=30
func (h *DocumentHandler) ListExpiring(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	days := h.defaultDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 365 {
			response.Error(c, domainerrors.Validation("days must be between 1 and 365"))
			return
		}
		days = n
	}

	docs, err := h.documents.ListExpiring(c.Request.Context(), actor, days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"documents": docs, "days": days})
}
