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

type PaymentService interface {
	GetPayment(ctx context.Context, actor entities.Actor, id uuid.UUID) (*entities.Payment, error)
	ListPayments(ctx context.Context, actor entities.Actor, contractID *uuid.UUID, statuses []entities.PaymentStatus, page utils.PageRequest) ([]*entities.Payment, utils.PageMeta, error)
}

type PaymentWorkflow interface {
	CreatePayment(ctx context.Context, actor entities.Actor, input entities.CreatePaymentInput) (*usecases.ActionResult, error)
	UploadBill(ctx context.Context, actor entities.Actor, id uuid.UUID, file *usecases.FileUpload) (*usecases.ActionResult, error)
	ApprovePayment(ctx context.Context, actor entities.Actor, id uuid.UUID) (*usecases.ActionResult, error)
	RejectPayment(ctx context.Context, actor entities.Actor, id uuid.UUID, reason string) (*usecases.ActionResult, error)
	ConfirmPayment(ctx context.Context, actor entities.Actor, id uuid.UUID, voucher *usecases.FileUpload) (*usecases.ActionResult, error)
	CancelPayment(ctx context.Context, actor entities.Actor, id uuid.UUID) (*usecases.ActionResult, error)
}

// RejectPaymentInput is the body of a payment rejection
type RejectPaymentInput struct {
	Reason string `json:"reason" binding:"required"`
}

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	payments       PaymentService
	workflow       PaymentWorkflow
	maxUploadBytes int64
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments PaymentService, workflow PaymentWorkflow, maxUploadBytes int64) *PaymentHandler {
	return &PaymentHandler{payments: payments, workflow: workflow, maxUploadBytes: maxUploadBytes}
}

// CreatePayment creates a draft payment on an active contract
// POST /api/v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var input entities.CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	res, err := h.workflow.CreatePayment(c.Request.Context(), actor, input)
	actionResult(c, http.StatusCreated, res, err)
}

// GetPayment gets a payment by ID
// GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "payment")
	if !ok {
		return
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": payment})
}

// ListPayments lists payments visible to the caller
// GET /api/v1/payments?status=pending_approval&contract_id=
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	contractID, err := utils.ParseOptionalUUID(c.Query("contract_id"))
	if err != nil {
		response.Error(c, domainerrors.Validation("Invalid contract ID"))
		return
	}
	h.list(c, contractID)
}

// ListByContract lists the payments of one contract
// GET /api/v1/contracts/:id/payments
func (h *PaymentHandler) ListByContract(c *gin.Context) {
	id, ok := uuidParam(c, "id", "contract")
	if !ok {
		return
	}
	h.list(c, &id)
}

func (h *PaymentHandler) list(c *gin.Context, contractID *uuid.UUID) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var statuses []entities.PaymentStatus
	for _, s := range csvQuery(c, "status") {
		statuses = append(statuses, entities.PaymentStatus(s))
	}

	payments, meta, err := h.payments.ListPayments(c.Request.Context(), actor, contractID, statuses, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, payments, meta)
}

// UploadBill attaches the collaborator's bill and submits the payment
// POST /api/v1/payments/:id/bill (multipart: file)
func (h *PaymentHandler) UploadBill(c *gin.Context) {
	h.fileAction(c, h.workflow.UploadBill)
}

// Confirm marks an approved payment as paid with its voucher
// POST /api/v1/payments/:id/confirm (multipart: file)
func (h *PaymentHandler) Confirm(c *gin.Context) {
	h.fileAction(c, h.workflow.ConfirmPayment)
}

// Approve approves a pending payment
// POST /api/v1/payments/:id/approve
func (h *PaymentHandler) Approve(c *gin.Context) {
	h.simpleAction(c, h.workflow.ApprovePayment)
}

// Cancel cancels a non-terminal payment
// POST /api/v1/payments/:id/cancel
func (h *PaymentHandler) Cancel(c *gin.Context) {
	h.simpleAction(c, h.workflow.CancelPayment)
}

// Reject sends a pending payment back to the collaborator
// POST /api/v1/payments/:id/reject
func (h *PaymentHandler) Reject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "payment")
	if !ok {
		return
	}

	var input RejectPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	res, err := h.workflow.RejectPayment(c.Request.Context(), actor, id, input.Reason)
	actionResult(c, http.StatusOK, res, err)
}

func (h *PaymentHandler) simpleAction(c *gin.Context, do func(context.Context, entities.Actor, uuid.UUID) (*usecases.ActionResult, error)) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "payment")
	if !ok {
		return
	}

	res, err := do(c.Request.Context(), actor, id)
	actionResult(c, http.StatusOK, res, err)
}

func (h *PaymentHandler) fileAction(c *gin.Context, do func(context.Context, entities.Actor, uuid.UUID, *usecases.FileUpload) (*usecases.ActionResult, error)) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "payment")
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

	res, err := do(c.Request.Context(), actor, id, file)
	actionResult(c, http.StatusOK, res, err)
}
