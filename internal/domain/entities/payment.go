package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusDraft           PaymentStatus = "draft"
	PaymentStatusPendingApproval PaymentStatus = "pending_approval"
	PaymentStatusApproved        PaymentStatus = "approved"
	PaymentStatusPaid            PaymentStatus = "paid"
	PaymentStatusRejected        PaymentStatus = "rejected"
	PaymentStatusCancelled       PaymentStatus = "cancelled"
)

// IsTerminal reports whether the status accepts no further transitions.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusCancelled
}

// PaymentAction names an action on the payment state machine
type PaymentAction string

const (
	PaymentActionCreate     PaymentAction = "create"
	PaymentActionUploadBill PaymentAction = "upload_bill"
	PaymentActionApprove    PaymentAction = "approve"
	PaymentActionReject     PaymentAction = "reject"
	PaymentActionConfirm    PaymentAction = "confirm"
	PaymentActionCancel     PaymentAction = "cancel"
)

// Payment represents a billing cycle for an active contract
type Payment struct {
	ID              uuid.UUID     `json:"id"`
	ContractID      uuid.UUID     `json:"contractId"`
	Amount          float64       `json:"amount"`
	PaymentDate     time.Time     `json:"paymentDate"`
	Description     string        `json:"description,omitempty"`
	BillFileID      null.String   `json:"billFileId"`
	VoucherFileID   null.String   `json:"voucherFileId"`
	Status          PaymentStatus `json:"status"`
	RejectionReason null.String   `json:"rejectionReason"`
	CreatedBy       uuid.UUID     `json:"createdBy"`
	ApprovedBy      *uuid.UUID    `json:"approvedBy,omitempty"`
	RejectedBy      *uuid.UUID    `json:"rejectedBy,omitempty"`
	ConfirmedBy     *uuid.UUID    `json:"confirmedBy,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// CreatePaymentInput represents input for creating a payment
type CreatePaymentInput struct {
	ContractID  uuid.UUID `json:"contractId" binding:"required"`
	Amount      float64   `json:"amount" binding:"required"`
	PaymentDate time.Time `json:"paymentDate" binding:"required"`
	Description string    `json:"description"`
}

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	ContractIDs []uuid.UUID
	Statuses    []PaymentStatus
	Limit       int
	Offset      int
}
