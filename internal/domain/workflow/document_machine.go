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

var documentPermissions = map[entities.DocumentAction]Permission{
	entities.DocumentActionUpload: {OwnerOnly: true},
	entities.DocumentActionReview: {MinRole: entities.UserRoleAdmin},
	entities.DocumentActionExpire: {System: true},
}

// DocumentPermission returns the permission required for a document action.
func DocumentPermission(action entities.DocumentAction) (Permission, bool) {
	p, ok := documentPermissions[action]
	return p, ok
}

// CanUploadDocument decides whether an upload is accepted for the contract and
// the existing row for the type (nil when the type is still pending).
func CanUploadDocument(contractStatus entities.ContractStatus, existing *entities.Document, now time.Time) error {
	if contractStatus.IsTerminal() {
		return domainerrors.InvalidTransition(fmt.Sprintf("contract is %s and accepts no documents", contractStatus))
	}
	if AcceptsDocumentUploads(contractStatus) {
		return nil
	}
	if existing != nil {
		switch existing.EffectiveStatus(now) {
		case entities.DocumentStatusRejected, entities.DocumentStatusExpired:
			return nil
		}
	}
	return domainerrors.InvalidTransition(fmt.Sprintf("contract in status %s is not collecting documents", contractStatus))
}

// CanReviewDocument rejects reviews on contracts that no longer take changes.
func CanReviewDocument(contractStatus entities.ContractStatus) error {
	if contractStatus.IsTerminal() {
		return domainerrors.InvalidTransition(fmt.Sprintf("contract is %s and its documents can no longer be reviewed", contractStatus))
	}
	return nil
}

// ReviewDocument validates a review decision and returns the resulting status.
// Rejections must carry notes.
func ReviewDocument(current entities.DocumentStatus, decision entities.ReviewDecision, notes string) (entities.DocumentStatus, error) {
	if current != entities.DocumentStatusUploaded && current != entities.DocumentStatusUnderReview {
		return current, domainerrors.InvalidTransition(fmt.Sprintf("cannot review a document in status %s", current))
	}
	switch decision {
	case entities.ReviewDecisionApproved:
		return entities.DocumentStatusApproved, nil
	case entities.ReviewDecisionRejected:
		if strings.TrimSpace(notes) == "" {
			return current, domainerrors.Validation("review notes are required when rejecting a document")
		}
		return entities.DocumentStatusRejected, nil
	default:
		return current, domainerrors.Validation(fmt.Sprintf("unknown review decision %q", decision))
	}
}

// ValidateDocument enforces the row-level invariants before any write.
func ValidateDocument(d *entities.Document) error {
	if !d.DocumentType.Valid() {
		return domainerrors.Validation(fmt.Sprintf("unknown document type %q", d.DocumentType))
	}
	if d.Status == entities.DocumentStatusRejected && (!d.ReviewNotes.Valid || strings.TrimSpace(d.ReviewNotes.String) == "") {
		return domainerrors.Validation("rejected document must carry review notes")
	}
	if d.ExpiryDate.Valid && !d.DocumentType.Expires() {
		return domainerrors.Validation(fmt.Sprintf("document type %s does not take an expiry date", d.DocumentType))
	}
	return nil
}

// ExpireDocument moves a lapsed approved document to expired.
func ExpireDocument(d *entities.Document, now time.Time) (entities.DocumentStatus, error) {
	if !d.IsLapsed(now) {
		return d.Status, domainerrors.InvalidTransition(fmt.Sprintf("document in status %s has not lapsed", d.Status))
	}
	return entities.DocumentStatusExpired, nil
}

// UploadDocument overwrites d with a new file and resets it for review.
func UploadDocument(d *entities.Document, fileID, fileName string, expiry null.Time, uploaderID uuid.UUID) error {
	if fileID == "" {
		return domainerrors.Validation("document file is required")
	}
	if !d.DocumentType.Expires() {
		expiry = null.Time{}
	}
	d.FileID = fileID
	d.FileName = fileName
	d.ExpiryDate = expiry
	d.Status = entities.DocumentStatusUploaded
	d.ReviewNotes = null.String{}
	d.UploadedBy = uploaderID
	d.ReviewedBy = nil
	d.ReviewedAt = null.Time{}
	return ValidateDocument(d)
}

// ApplyReview records a review decision on d. d is left untouched on error.
func ApplyReview(d *entities.Document, decision entities.ReviewDecision, notes string, reviewerID uuid.UUID, now time.Time) error {
	next, err := ReviewDocument(d.Status, decision, notes)
	if err != nil {
		return err
	}
	d.Status = next
	if notes = strings.TrimSpace(notes); notes != "" {
		d.ReviewNotes.SetValid(notes)
	} else {
		d.ReviewNotes = null.String{}
	}
	id := reviewerID
	d.ReviewedBy = &id
	d.ReviewedAt.SetValid(now)
	return nil
}
