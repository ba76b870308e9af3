package workflow

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
)

func TestCanUploadDocument(t *testing.T) {
	now := time.Now()
	rejected := &entities.Document{Status: entities.DocumentStatusRejected}
	approved := &entities.Document{Status: entities.DocumentStatusApproved}
	lapsed := &entities.Document{Status: entities.DocumentStatusApproved, ExpiryDate: null.TimeFrom(now.Add(-time.Minute))}

	assert.NoError(t, CanUploadDocument(entities.ContractStatusPendingDocuments, nil, now))
	assert.NoError(t, CanUploadDocument(entities.ContractStatusUnderReview, approved, now))
	assert.NoError(t, CanUploadDocument(entities.ContractStatusActive, rejected, now))
	assert.NoError(t, CanUploadDocument(entities.ContractStatusActive, lapsed, now))

	assert.ErrorIs(t, CanUploadDocument(entities.ContractStatusDraft, nil, now), domainerrors.ErrInvalidTransition)
	assert.ErrorIs(t, CanUploadDocument(entities.ContractStatusActive, approved, now), domainerrors.ErrInvalidTransition)
	assert.ErrorIs(t, CanUploadDocument(entities.ContractStatusCancelled, rejected, now), domainerrors.ErrInvalidTransition)
}

func TestCanReviewDocument(t *testing.T) {
	assert.NoError(t, CanReviewDocument(entities.ContractStatusUnderReview))
	assert.NoError(t, CanReviewDocument(entities.ContractStatusActive))
	assert.ErrorIs(t, CanReviewDocument(entities.ContractStatusCancelled), domainerrors.ErrInvalidTransition)
	assert.ErrorIs(t, CanReviewDocument(entities.ContractStatusCompleted), domainerrors.ErrInvalidTransition)
}

func TestReviewDocument(t *testing.T) {
	got, err := ReviewDocument(entities.DocumentStatusUploaded, entities.ReviewDecisionApproved, "")
	require.NoError(t, err)
	assert.Equal(t, entities.DocumentStatusApproved, got)

	got, err = ReviewDocument(entities.DocumentStatusUploaded, entities.ReviewDecisionRejected, "  ")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Equal(t, entities.DocumentStatusUploaded, got)

	got, err = ReviewDocument(entities.DocumentStatusUnderReview, entities.ReviewDecisionRejected, "blurry scan")
	require.NoError(t, err)
	assert.Equal(t, entities.DocumentStatusRejected, got)

	_, err = ReviewDocument(entities.DocumentStatusApproved, entities.ReviewDecisionApproved, "")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTransition)

	_, err = ReviewDocument(entities.DocumentStatusUploaded, "maybe", "")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestUploadDocument_ReuploadClearsReview(t *testing.T) {
	reviewer := uuid.New()
	d := &entities.Document{
		DocumentType: entities.DocumentTypeRUT,
		FileID:       "old",
		Status:       entities.DocumentStatusRejected,
		ReviewNotes:  null.StringFrom("wrong year"),
		ReviewedBy:   &reviewer,
		ReviewedAt:   null.TimeFrom(time.Now()),
	}
	uploader := uuid.New()

	require.NoError(t, UploadDocument(d, "new", "rut.pdf", null.TimeFrom(time.Now()), uploader))
	assert.Equal(t, entities.DocumentStatusUploaded, d.Status)
	assert.Equal(t, "new", d.FileID)
	assert.False(t, d.ReviewNotes.Valid)
	assert.Nil(t, d.ReviewedBy)
	assert.False(t, d.ReviewedAt.Valid)
	assert.False(t, d.ExpiryDate.Valid, "rut does not carry an expiry date")
	assert.Equal(t, uploader, d.UploadedBy)

	assert.ErrorIs(t, UploadDocument(d, "", "rut.pdf", null.Time{}, uploader), domainerrors.ErrValidation)
}

func TestApplyReview_RejectKeepsNotes(t *testing.T) {
	reviewer := uuid.New()
	now := time.Now()
	d := &entities.Document{DocumentType: entities.DocumentTypeCedula, Status: entities.DocumentStatusUploaded}

	require.Error(t, ApplyReview(d, entities.ReviewDecisionRejected, "", reviewer, now))
	assert.Equal(t, entities.DocumentStatusUploaded, d.Status)
	assert.Nil(t, d.ReviewedBy)

	require.NoError(t, ApplyReview(d, entities.ReviewDecisionRejected, "illegible", reviewer, now))
	assert.Equal(t, entities.DocumentStatusRejected, d.Status)
	assert.Equal(t, "illegible", d.ReviewNotes.String)
	assert.Equal(t, reviewer, *d.ReviewedBy)
	assert.NoError(t, ValidateDocument(d))
}

func TestValidateDocument_RejectedNeedsNotes(t *testing.T) {
	d := &entities.Document{DocumentType: entities.DocumentTypeCedula, Status: entities.DocumentStatusRejected}
	assert.ErrorIs(t, ValidateDocument(d), domainerrors.ErrValidation)

	d.ReviewNotes = null.StringFrom("missing page")
	assert.NoError(t, ValidateDocument(d))

	d.DocumentType = "passport"
	assert.ErrorIs(t, ValidateDocument(d), domainerrors.ErrValidation)
}

func TestExpireDocument(t *testing.T) {
	now := time.Now()
	d := &entities.Document{
		DocumentType: entities.DocumentTypeAntecedentes,
		Status:       entities.DocumentStatusApproved,
		ExpiryDate:   null.TimeFrom(now.Add(24 * time.Hour)),
	}
	_, err := ExpireDocument(d, now)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidTransition)

	got, err := ExpireDocument(d, now.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, entities.DocumentStatusExpired, got)
}
