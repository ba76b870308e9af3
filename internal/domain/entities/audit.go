package entities

import (
	"time"

	"github.com/google/uuid"
)

// EntityType names the aggregate a workflow action targets
type EntityType string

const (
	EntityTypeContract EntityType = "contract"
	EntityTypeDocument EntityType = "document"
	EntityTypePayment  EntityType = "payment"
)

// AuditEntry is an append-only record of a status change
type AuditEntry struct {
	ID         uuid.UUID  `json:"id"`
	ActorID    uuid.UUID  `json:"actorId"`
	EntityType EntityType `json:"entityType"`
	EntityID   uuid.UUID  `json:"entityId"`
	Action     string     `json:"action"`
	FromStatus string     `json:"fromStatus"`
	ToStatus   string     `json:"toStatus"`
	Timestamp  time.Time  `json:"timestamp"`
}

// NotificationEventType identifies what happened in the workflow
type NotificationEventType string

const (
	EventContractSubmitted       NotificationEventType = "contract_submitted"
	EventContractUnderReview     NotificationEventType = "contract_under_review"
	EventContractPendingApproval NotificationEventType = "contract_pending_approval"
	EventContractApproved        NotificationEventType = "contract_approved"
	EventContractActive          NotificationEventType = "contract_active"
	EventContractCompleted       NotificationEventType = "contract_completed"
	EventContractCancelled       NotificationEventType = "contract_cancelled"
	EventDocumentUploaded        NotificationEventType = "document_uploaded"
	EventDocumentReviewed        NotificationEventType = "document_reviewed"
	EventPaymentCreated          NotificationEventType = "payment_created"
	EventPaymentBillUploaded     NotificationEventType = "payment_bill_uploaded"
	EventPaymentApproved         NotificationEventType = "payment_approved"
	EventPaymentRejected         NotificationEventType = "payment_rejected"
	EventPaymentPaid             NotificationEventType = "payment_paid"
	EventPaymentCancelled        NotificationEventType = "payment_cancelled"
)

// NotificationEvent is the descriptor handed to the notifier after commit
type NotificationEvent struct {
	Type        NotificationEventType
	RecipientID uuid.UUID
	EntityType  EntityType
	EntityID    uuid.UUID
	Title       string
	Message     string
}

// Notification is an in-app notification row
type Notification struct {
	ID         uuid.UUID             `json:"id"`
	UserID     uuid.UUID             `json:"userId"`
	EventType  NotificationEventType `json:"eventType"`
	Title      string                `json:"title"`
	Message    string                `json:"message"`
	EntityType EntityType            `json:"entityType"`
	EntityID   uuid.UUID             `json:"entityId"`
	Read       bool                  `json:"read"`
	CreatedAt  time.Time             `json:"createdAt"`
}

// DashboardStats summarizes workflow backlog for the current user
type DashboardStats struct {
	TotalContracts     int64 `json:"totalContracts"`
	PendingContracts   int64 `json:"pendingContracts"`
	ActiveContracts    int64 `json:"activeContracts"`
	PendingApprovals   int64 `json:"pendingApprovals"`
	PendingDocuments   int64 `json:"pendingDocuments"`
	ExpiringDocuments  int64 `json:"expiringDocuments"`
	PendingPayments    int64 `json:"pendingPayments"`
	TotalCollaborators int64 `json:"totalCollaborators"`
}
