package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
)

// Permission describes who may perform an action
type Permission struct {
	MinRole entities.UserRole
	// OwnerOnly restricts the action to the owning collaborator; MinRole is ignored.
	OwnerOnly bool
	// System actions are never requested by an actor directly.
	System bool
}

// Allows checks the permission for an actor against the owner of the entity.
func (p Permission) Allows(actor entities.Actor, ownerID uuid.UUID) bool {
	switch {
	case p.System:
		return false
	case p.OwnerOnly:
		return actor.ID == ownerID
	default:
		return actor.HasRole(p.MinRole)
	}
}

// MayAttempt checks the role half of the permission before the entity is
// loaded. Owner-only actions belong to collaborators, so other roles fail early.
func (p Permission) MayAttempt(actor entities.Actor) bool {
	switch {
	case p.System:
		return false
	case p.OwnerOnly:
		return actor.Role == entities.UserRoleCollaborator
	default:
		return actor.HasRole(p.MinRole)
	}
}

var contractPermissions = map[entities.ContractAction]Permission{
	entities.ContractActionCreate:          {MinRole: entities.UserRoleLegalRep},
	entities.ContractActionUpdate:          {MinRole: entities.UserRoleLegalRep},
	entities.ContractActionSubmit:          {MinRole: entities.UserRoleLegalRep},
	entities.ContractActionAutoReview:      {System: true},
	entities.ContractActionSendForApproval: {MinRole: entities.UserRoleAdmin},
	entities.ContractActionApprove:         {MinRole: entities.UserRoleLegalRep},
	entities.ContractActionUploadSigned:    {OwnerOnly: true},
	entities.ContractActionComplete:        {MinRole: entities.UserRoleAdmin},
	entities.ContractActionCancel:          {MinRole: entities.UserRoleAdmin},
}

// ContractPermission returns the permission required for a contract action.
func ContractPermission(action entities.ContractAction) (Permission, bool) {
	p, ok := contractPermissions[action]
	return p, ok
}

// NextContractStatus resolves the target status for (current, action) or an InvalidTransition error.
func NextContractStatus(current entities.ContractStatus, action entities.ContractAction) (entities.ContractStatus, error) {
	if current.IsTerminal() {
		return current, domainerrors.InvalidTransition(fmt.Sprintf("contract is %s and accepts no further actions", current))
	}

	switch {
	case action == entities.ContractActionCancel:
		return entities.ContractStatusCancelled, nil
	case current == entities.ContractStatusDraft && action == entities.ContractActionSubmit:
		return entities.ContractStatusPendingDocuments, nil
	case current == entities.ContractStatusPendingDocuments && action == entities.ContractActionAutoReview:
		return entities.ContractStatusUnderReview, nil
	case current == entities.ContractStatusUnderReview && action == entities.ContractActionSendForApproval:
		return entities.ContractStatusPendingApproval, nil
	case current == entities.ContractStatusPendingApproval && action == entities.ContractActionApprove:
		return entities.ContractStatusApproved, nil
	case current == entities.ContractStatusApproved && action == entities.ContractActionUploadSigned:
		return entities.ContractStatusActive, nil
	case current == entities.ContractStatusActive && action == entities.ContractActionComplete:
		return entities.ContractStatusCompleted, nil
	}
	return current, domainerrors.InvalidTransition(fmt.Sprintf("cannot %s a contract in status %s", action, current))
}

// AcceptsDocumentUploads reports whether the contract is collecting documents.
func AcceptsDocumentUploads(status entities.ContractStatus) bool {
	return status == entities.ContractStatusPendingDocuments || status == entities.ContractStatusUnderReview
}

// ApplyContractTransition mutates c for the action after checking the edge guards.
// docs is the contract's document snapshot and is only read for send_for_approval.
// c is left untouched on error.
func ApplyContractTransition(c *entities.Contract, action entities.ContractAction, actorID uuid.UUID, fileID string, docs []*entities.Document, now time.Time) error {
	next, err := NextContractStatus(c.Status, action)
	if err != nil {
		return err
	}

	switch action {
	case entities.ContractActionSendForApproval:
		if report := Evaluate(c.ContractType, docs, now); !report.Ready {
			return domainerrors.DocumentsIncomplete(fmt.Sprintf("required documents not approved: %s", joinTypes(report.Missing)))
		}
	case entities.ContractActionApprove:
		if fileID == "" {
			return domainerrors.Validation("contract file is required to approve")
		}
		c.ContractFileID.SetValid(fileID)
		id := actorID
		c.ApprovedBy = &id
	case entities.ContractActionUploadSigned:
		if fileID == "" {
			return domainerrors.Validation("signed contract file is required")
		}
		if !c.ContractFileID.Valid {
			return domainerrors.InvalidTransition("contract has no approved file to sign")
		}
		c.SignedFileID.SetValid(fileID)
	}
	c.Status = next
	return nil
}

// ValidateNewContract checks the fields a draft contract must carry.
func ValidateNewContract(input entities.CreateContractInput) error {
	if !input.ContractType.Valid() {
		return domainerrors.Validation(fmt.Sprintf("unknown contract type %q", input.ContractType))
	}
	if strings.TrimSpace(input.Title) == "" {
		return domainerrors.Validation("title is required")
	}
	if input.StartDate.IsZero() {
		return domainerrors.Validation("start date is required")
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return domainerrors.Validation("end date must not precede start date")
	}

	switch input.ContractType {
	case entities.ContractTypeService:
		if input.MonthlyPayment == nil || input.PaymentPerSession != nil {
			return domainerrors.Validation("service contracts take a monthly payment only")
		}
		if *input.MonthlyPayment <= 0 {
			return domainerrors.Validation("monthly payment must be greater than zero")
		}
	case entities.ContractTypeEvent:
		if input.PaymentPerSession == nil || input.MonthlyPayment != nil {
			return domainerrors.Validation("event contracts take a payment per session only")
		}
		if *input.PaymentPerSession <= 0 {
			return domainerrors.Validation("payment per session must be greater than zero")
		}
	}
	return nil
}

// CanEditContract allows detail edits until the contract is sent for approval.
func CanEditContract(status entities.ContractStatus) error {
	switch status {
	case entities.ContractStatusDraft, entities.ContractStatusPendingDocuments, entities.ContractStatusUnderReview:
		return nil
	}
	return domainerrors.InvalidTransition(fmt.Sprintf("contract in status %s can no longer be edited", status))
}

// ApplyContractUpdate merges input into c and revalidates the result against
// the rules for new contracts. c is left untouched on error.
func ApplyContractUpdate(c *entities.Contract, input entities.UpdateContractInput) error {
	if input.IsEmpty() {
		return domainerrors.Validation("no contract fields to update")
	}
	if err := CanEditContract(c.Status); err != nil {
		return err
	}

	merged := entities.CreateContractInput{
		CollaboratorID:    c.CollaboratorID,
		ContractType:      c.ContractType,
		Title:             c.Title,
		Description:       c.Description,
		StartDate:         c.StartDate,
		EndDate:           c.EndDate.Ptr(),
		MonthlyPayment:    c.MonthlyPayment.Ptr(),
		PaymentPerSession: c.PaymentPerSession.Ptr(),
		Notes:             c.Notes,
	}
	if input.Title != nil {
		merged.Title = *input.Title
	}
	if input.Description != nil {
		merged.Description = *input.Description
	}
	if input.StartDate != nil {
		merged.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		merged.EndDate = input.EndDate
	}
	if input.MonthlyPayment != nil {
		merged.MonthlyPayment = input.MonthlyPayment
	}
	if input.PaymentPerSession != nil {
		merged.PaymentPerSession = input.PaymentPerSession
	}
	if input.Notes != nil {
		merged.Notes = *input.Notes
	}
	if err := ValidateNewContract(merged); err != nil {
		return err
	}

	c.Title = strings.TrimSpace(merged.Title)
	c.Description = merged.Description
	c.StartDate = merged.StartDate
	c.EndDate = null.TimeFromPtr(merged.EndDate)
	c.MonthlyPayment = null.Float64FromPtr(merged.MonthlyPayment)
	c.PaymentPerSession = null.Float64FromPtr(merged.PaymentPerSession)
	c.Notes = merged.Notes
	return nil
}

func joinTypes(types []entities.DocumentType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
