package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/internal/interfaces/http/response"
	"sportsadmin.backend/pkg/utils"
)

type FileService interface {
	DownloadURL(ctx context.Context, fileID string) (string, error)
}

// FileHandler serves stored files
type FileHandler struct {
	files FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(files FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Download redirects to a short-lived URL for the file
// GET /api/v1/files/:id
func (h *FileHandler) Download(c *gin.Context) {
	fileID := c.Param("id")
	if fileID == "" {
		response.Error(c, domainerrors.Validation("file ID is required"))
		return
	}

	url, err := h.files.DownloadURL(c.Request.Context(), fileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

type ReportService interface {
	DashboardStats(ctx context.Context, actor entities.Actor) (*entities.DashboardStats, error)
	ContractsPendingSignature(ctx context.Context, actor entities.Actor) ([]*entities.Contract, error)
	ActiveContracts(ctx context.Context, actor entities.Actor) ([]*entities.Contract, error)
	PendingPayments(ctx context.Context, actor entities.Actor) ([]*entities.Payment, error)
}

// ReportHandler serves the dashboard and backlog reports
type ReportHandler struct {
	reports ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// DashboardStats returns counts scoped to the caller
// GET /api/v1/dashboard/stats
func (h *ReportHandler) DashboardStats(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	stats, err := h.reports.DashboardStats(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// ContractsPendingSignature lists approved contracts awaiting the signed copy
// GET /api/v1/reports/contracts-pending-signature
func (h *ReportHandler) ContractsPendingSignature(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	contracts, err := h.reports.ContractsPendingSignature(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"contracts": contracts})
}

// ActiveContracts lists active contracts
// GET /api/v1/reports/contracts-active
func (h *ReportHandler) ActiveContracts(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	contracts, err := h.reports.ActiveContracts(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"contracts": contracts})
}

// PendingPayments lists payments awaiting approval or confirmation
// GET /api/v1/reports/payments-pending
func (h *ReportHandler) PendingPayments(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	payments, err := h.reports.PendingPayments(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": payments})
}

type NotificationService interface {
	List(ctx context.Context, actor entities.Actor, unreadOnly bool, page utils.PageRequest) ([]*entities.Notification, utils.PageMeta, error)
	MarkRead(ctx context.Context, actor entities.Actor, id uuid.UUID) error
	MarkAllRead(ctx context.Context, actor entities.Actor) (int64, error)
}

// NotificationHandler serves the in-app inbox
type NotificationHandler struct {
	notifications NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns the caller's notifications, newest first
// GET /api/v1/notifications?unread=true
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	unreadOnly := c.Query("unread") == "true"

	items, meta, err := h.notifications.List(c.Request.Context(), actor, unreadOnly, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, meta)
}

// MarkRead marks one notification as read
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "notification")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead marks the caller's whole inbox as read
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	n, err := h.notifications.MarkAllRead(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": n})
}
