package workflow

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
)

var paymentPermissions = map[entities.PaymentAction]Permission{
	entities.PaymentActionUploadBill: {OwnerOnly: true},
	entities.PaymentActionApprove:    {MinRole: entities.UserRoleAccountant},
	entities.PaymentActionReject:     {MinRole: entities.UserRoleAccountant},
	entities.PaymentActionConfirm:    {MinRole: entities.UserRoleAccountant},
	entities.PaymentActionCancel:     {MinRole: entities.UserRoleAdmin},
}

// PaymentPermission returns the permission required for a payment action.
// Create is checked with CanCreatePayment since either path may apply.
func PaymentPermission(action entities.PaymentAction) (Permission, bool) {
	p, ok := paymentPermissions[action]
	return p, ok
}

// CanCreatePayment allows accountants and above, or the collaborator who owns the contract.
func CanCreatePayment(actor entities.Actor, contractOwner uuid.UUID) bool {
	return actor.HasRole(entities.UserRoleAccountant) || actor.ID == contractOwner
}

// ValidateNewPayment checks the creation guard against the referenced contract.
func ValidateNewPayment(contract *entities.Contract, input entities.CreatePaymentInput) error {
	if input.Amount <= 0 {
		return domainerrors.Validation("amount must be greater than zero")
	}
	if input.PaymentDate.IsZero() {
		return domainerrors.Validation("payment date is required")
	}
	if contract.Status != entities.ContractStatusActive {
		return domainerrors.InvalidTransition(fmt.Sprintf("payments require an active contract, contract is %s", contract.Status))
	}
	return nil
}

// CanProgressPayment stops a cancelled contract's payments from moving forward.
// Cancelling them stays possible, and a completed contract may still settle
// the payments it opened while active.
func CanProgressPayment(contractStatus entities.ContractStatus, action entities.PaymentAction) error {
	if contractStatus == entities.ContractStatusCancelled && action != entities.PaymentActionCancel {
		return domainerrors.InvalidTransition("contract is cancelled, payments can only be cancelled")
	}
	return nil
}

// NextPaymentStatus resolves the target status for (current, action) or an InvalidTransition error.
func NextPaymentStatus(current entities.PaymentStatus, action entities.PaymentAction) (entities.PaymentStatus, error) {
	if current.IsTerminal() {
		return current, domainerrors.InvalidTransition(fmt.Sprintf("payment is %s and accepts no further actions", current))
	}

	switch {
	case action == entities.PaymentActionCancel:
		return entities.PaymentStatusCancelled, nil
	case action == entities.PaymentActionUploadBill &&
		(current == entities.PaymentStatusDraft || current == entities.PaymentStatusRejected):
		return entities.PaymentStatusPendingApproval, nil
	case current == entities.PaymentStatusPendingApproval && action == entities.PaymentActionApprove:
		return entities.PaymentStatusApproved, nil
	case current == entities.PaymentStatusPendingApproval && action == entities.PaymentActionReject:
		return entities.PaymentStatusRejected, nil
	case current == entities.PaymentStatusApproved && action == entities.PaymentActionConfirm:
		return entities.PaymentStatusPaid, nil
	}
	return current, domainerrors.InvalidTransition(fmt.Sprintf("cannot %s a payment in status %s", action, current))
}

// ApplyPaymentTransition mutates p for the action, enforcing the field guards
// that travel with each edge. p is left untouched on error.
func ApplyPaymentTransition(p *entities.Payment, action entities.PaymentAction, actorID uuid.UUID, fileID, reason string) error {
	next, err := NextPaymentStatus(p.Status, action)
	if err != nil {
		return err
	}

	switch action {
	case entities.PaymentActionUploadBill:
		if fileID == "" {
			return domainerrors.Validation("bill file is required")
		}
		p.BillFileID.SetValid(fileID)
		p.RejectionReason.Valid = false
		p.RejectionReason.String = ""
	case entities.PaymentActionApprove:
		if !p.BillFileID.Valid || p.BillFileID.String == "" {
			return domainerrors.Validation("payment has no bill to approve")
		}
		id := actorID
		p.ApprovedBy = &id
	case entities.PaymentActionReject:
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return domainerrors.Validation("rejection reason is required")
		}
		p.RejectionReason.SetValid(reason)
		id := actorID
		p.RejectedBy = &id
	case entities.PaymentActionConfirm:
		if fileID == "" {
			return domainerrors.Validation("payment voucher file is required")
		}
		p.VoucherFileID.SetValid(fileID)
		id := actorID
		p.ConfirmedBy = &id
	}
	p.Status = next
	return nil
}
