package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// ContractType distinguishes monthly service contracts from per-session ones
type ContractType string

const (
	ContractTypeService ContractType = "service"
	ContractTypeEvent   ContractType = "event"
)

// Valid reports whether t is a known contract type.
func (t ContractType) Valid() bool {
	return t == ContractTypeService || t == ContractTypeEvent
}

// ContractStatus represents contract status
type ContractStatus string

const (
	ContractStatusDraft            ContractStatus = "draft"
	ContractStatusPendingDocuments ContractStatus = "pending_documents"
	ContractStatusUnderReview      ContractStatus = "under_review"
	ContractStatusPendingApproval  ContractStatus = "pending_approval"
	ContractStatusApproved         ContractStatus = "approved"
	// PendingSignature and Signed are kept for compatibility with stored data;
	// signing moves an approved contract straight to active.
	ContractStatusPendingSignature ContractStatus = "pending_signature"
	ContractStatusSigned           ContractStatus = "signed"
	ContractStatusActive           ContractStatus = "active"
	ContractStatusCompleted        ContractStatus = "completed"
	ContractStatusCancelled        ContractStatus = "cancelled"
)

// IsTerminal reports whether the status accepts no further transitions.
func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusCompleted || s == ContractStatusCancelled
}

// ContractAction names an action on the contract state machine
type ContractAction string

const (
	ContractActionCreate          ContractAction = "create"
	ContractActionUpdate          ContractAction = "update"
	ContractActionSubmit          ContractAction = "submit"
	ContractActionAutoReview      ContractAction = "auto_under_review"
	ContractActionSendForApproval ContractAction = "send_for_approval"
	ContractActionApprove         ContractAction = "approve"
	ContractActionUploadSigned    ContractAction = "upload_signed"
	ContractActionComplete        ContractAction = "complete"
	ContractActionCancel          ContractAction = "cancel"
)

// Contract represents a collaborator contract
type Contract struct {
	ID                uuid.UUID      `json:"id"`
	CollaboratorID    uuid.UUID      `json:"collaboratorId"`
	ContractType      ContractType   `json:"contractType"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	StartDate         time.Time      `json:"startDate"`
	EndDate           null.Time      `json:"endDate"`
	MonthlyPayment    null.Float64   `json:"monthlyPayment"`
	PaymentPerSession null.Float64   `json:"paymentPerSession"`
	Status            ContractStatus `json:"status"`
	ContractFileID    null.String    `json:"contractFileId"`
	SignedFileID      null.String    `json:"signedFileId"`
	ApprovedBy        *uuid.UUID     `json:"approvedBy,omitempty"`
	Notes             string         `json:"notes,omitempty"`
	CreatedBy         uuid.UUID      `json:"createdBy"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// IsOwnedBy reports whether userID is the contract's collaborator.
func (c *Contract) IsOwnedBy(userID uuid.UUID) bool {
	return c != nil && c.CollaboratorID == userID
}

// CreateContractInput represents input for creating a contract
type CreateContractInput struct {
	CollaboratorID    uuid.UUID    `json:"collaboratorId" binding:"required"`
	ContractType      ContractType `json:"contractType" binding:"required"`
	Title             string       `json:"title" binding:"required"`
	Description       string       `json:"description"`
	StartDate         time.Time    `json:"startDate" binding:"required"`
	EndDate           *time.Time   `json:"endDate"`
	MonthlyPayment    *float64     `json:"monthlyPayment"`
	PaymentPerSession *float64     `json:"paymentPerSession"`
	Notes             string       `json:"notes"`
}

// UpdateContractInput carries the editable contract fields. Nil leaves a field unchanged.
type UpdateContractInput struct {
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	StartDate         *time.Time `json:"startDate"`
	EndDate           *time.Time `json:"endDate"`
	MonthlyPayment    *float64   `json:"monthlyPayment"`
	PaymentPerSession *float64   `json:"paymentPerSession"`
	Notes             *string    `json:"notes"`
}

// IsEmpty reports whether the input changes nothing.
func (in UpdateContractInput) IsEmpty() bool {
	return in.Title == nil && in.Description == nil && in.StartDate == nil && in.EndDate == nil &&
		in.MonthlyPayment == nil && in.PaymentPerSession == nil && in.Notes == nil
}

// ContractFilter narrows contract listings
type ContractFilter struct {
	CollaboratorID *uuid.UUID
	Statuses       []ContractStatus
	Limit          int
	Offset         int
}
