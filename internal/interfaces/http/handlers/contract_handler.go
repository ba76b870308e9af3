package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/internal/interfaces/http/response"
	"sportsadmin.backend/internal/usecases"
	"sportsadmin.backend/pkg/utils"
)

type ContractService interface {
	GetContract(ctx context.Context, actor entities.Actor, id uuid.UUID) (*entities.Contract, error)
	ListContracts(ctx context.Context, actor entities.Actor, statuses []entities.ContractStatus, page utils.PageRequest) ([]*entities.Contract, utils.PageMeta, error)
	History(ctx context.Context, actor entities.Actor, id uuid.UUID) ([]*entities.AuditEntry, error)
}

type ContractWorkflow interface {
	CreateContract(ctx context.Context, actor entities.Actor, input entities.CreateContractInput) (*usecases.ActionResult, error)
	UpdateContract(ctx context.Context, actor entities.Actor, id uuid.UUID, input entities.UpdateContractInput) (*usecases.ActionResult, error)
	SubmitContract(ctx context.Context, actor entities.Actor, id uuid.UUID) (*usecases.ActionResult, error)
	SendContractForApproval(ctx context.Context, actor entities.Actor, id uuid.UUID) (*usecases.ActionResult, error)
	ApproveContract(ctx context.Context, actor entities.Actor, id uuid.UUID, file *usecases.FileUpload) (*usecases.ActionResult, error)
	UploadSignedContract(ctx context.Context, actor entities.Actor, id uuid.UUID, file *usecases.FileUpload) (*usecases.ActionResult, error)
	CompleteContract(ctx context.Context, actor entities.Actor, id uuid.UUID) (*usecases.ActionResult, error)
	CancelContract(ctx context.Context, actor entities.Actor, id uuid.UUID) (*usecases.ActionResult, error)
}

// ContractHandler handles contract endpoints
type ContractHandler struct {
	contracts      ContractService
	workflow       ContractWorkflow
	maxUploadBytes int64
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contracts ContractService, workflow ContractWorkflow, maxUploadBytes int64) *ContractHandler {
	return &ContractHandler{contracts: contracts, workflow: workflow, maxUploadBytes: maxUploadBytes}
}

// CreateContract creates a draft contract
// POST /api/v1/contracts
func (h *ContractHandler) CreateContract(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var input entities.CreateContractInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	res, err := h.workflow.CreateContract(c.Request.Context(), actor, input)
	actionResult(c, http.StatusCreated, res, err)
}

// ListContracts lists contracts visible to the caller
// GET /api/v1/contracts?status=draft,active&page=1&limit=20
func (h *ContractHandler) ListContracts(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var statuses []entities.ContractStatus
	for _, s := range csvQuery(c, "status") {
		statuses = append(statuses, entities.ContractStatus(s))
	}

	contracts, meta, err := h.contracts.ListContracts(c.Request.Context(), actor, statuses, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, contracts, meta)
}

// GetContract returns one contract
// GET /api/v1/contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "contract")
	if !ok {
		return
	}

	contract, err := h.contracts.GetContract(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"contract": contract})
}

// UpdateContract edits a contract's details before it is sent for approval
// PUT /api/v1/contracts/:id
func (h *ContractHandler) UpdateContract(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "contract")
	if !ok {
		return
	}

	var input entities.UpdateContractInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	res, err := h.workflow.UpdateContract(c.Request.Context(), actor, id, input)
	actionResult(c, http.StatusOK, res, err)
}

// History returns the audit trail of a contract
// GET /api/v1/contracts/:id/history
func (h *ContractHandler) History(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "contract")
	if !ok {
		return
	}

	entries, err := h.contracts.History(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"history": entries})
}

// Submit moves a draft to pending_documents
// POST /api/v1/contracts/:id/submit
func (h *ContractHandler) Submit(c *gin.Context) {
	h.simpleAction(c, h.workflow.SubmitContract)
}

// SendForApproval moves a reviewed contract to pending_approval
// POST /api/v1/contracts/:id/send-for-approval
func (h *ContractHandler) SendForApproval(c *gin.Context) {
	h.simpleAction(c, h.workflow.SendContractForApproval)
}

// Complete closes an active contract
// POST /api/v1/contracts/:id/complete
func (h *ContractHandler) Complete(c *gin.Context) {
	h.simpleAction(c, h.workflow.CompleteContract)
}

// Cancel cancels a non-terminal contract
// POST /api/v1/contracts/:id/cancel
func (h *ContractHandler) Cancel(c *gin.Context) {
	h.simpleAction(c, h.workflow.CancelContract)
}

// Approve approves a contract with the generated contract file
// POST /api/v1/contracts/:id/approve (multipart: file)
func (h *ContractHandler) Approve(c *gin.Context) {
	h.fileAction(c, "file", h.workflow.ApproveContract)
}

// UploadSigned activates an approved contract with the collaborator's signed copy
// POST /api/v1/contracts/:id/upload-signed (multipart: file)
func (h *ContractHandler) UploadSigned(c *gin.Context) {
	h.fileAction(c, "file", h.workflow.UploadSignedContract)
}

func (h *ContractHandler) simpleAction(c *gin.Context, do func(context.Context, entities.Actor, uuid.UUID) (*usecases.ActionResult, error)) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "contract")
	if !ok {
		return
	}

	res, err := do(c.Request.Context(), actor, id)
	actionResult(c, http.StatusOK, res, err)
}

func (h *ContractHandler) fileAction(c *gin.Context, field string, do func(context.Context, entities.Actor, uuid.UUID, *usecases.FileUpload) (*usecases.ActionResult, error)) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "contract")
	if !ok {
		return
	}

	file, closeFile, err := formFile(c, field, h.maxUploadBytes)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()

	res, err := do(c.Request.Context(), actor, id, file)
	actionResult(c, http.StatusOK, res, err)
}
