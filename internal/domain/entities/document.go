package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// DocumentType represents the kind of supporting document
type DocumentType string

const (
	DocumentTypeCedula         DocumentType = "cedula"
	DocumentTypeRUT            DocumentType = "rut"
	DocumentTypeCertLaboral    DocumentType = "cert_laboral"
	DocumentTypeCertEducativa  DocumentType = "cert_educativa"
	DocumentTypeCuentaBancaria DocumentType = "cuenta_bancaria"
	DocumentTypeAntecedentes   DocumentType = "antecedentes"
	DocumentTypeLicencia       DocumentType = "licencia"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeCedula, DocumentTypeRUT, DocumentTypeCertLaboral, DocumentTypeCertEducativa,
		DocumentTypeCuentaBancaria, DocumentTypeAntecedentes, DocumentTypeLicencia:
		return true
	}
	return false
}

// Expires reports whether documents of this type carry an expiry date.
func (t DocumentType) Expires() bool {
	return t == DocumentTypeCuentaBancaria || t == DocumentTypeAntecedentes
}

// DocumentStatus represents document review status
type DocumentStatus string

const (
	// DocumentStatusPending is virtual: no row exists yet for the type.
	DocumentStatusPending     DocumentStatus = "pending"
	DocumentStatusUploaded    DocumentStatus = "uploaded"
	DocumentStatusUnderReview DocumentStatus = "under_review"
	DocumentStatusApproved    DocumentStatus = "approved"
	DocumentStatusRejected    DocumentStatus = "rejected"
	DocumentStatusExpired     DocumentStatus = "expired"
)

// DocumentAction names an action on the document state machine
type DocumentAction string

const (
	DocumentActionUpload DocumentAction = "upload"
	DocumentActionReview DocumentAction = "review"
	DocumentActionExpire DocumentAction = "expire"
)

// ReviewDecision is the outcome an admin records on a document
type ReviewDecision string

const (
	ReviewDecisionApproved ReviewDecision = "approved"
	ReviewDecisionRejected ReviewDecision = "rejected"
)

// Document represents a supporting document attached to a contract
type Document struct {
	ID           uuid.UUID      `json:"id"`
	ContractID   uuid.UUID      `json:"contractId"`
	DocumentType DocumentType   `json:"documentType"`
	FileID       string         `json:"fileId"`
	FileName     string         `json:"fileName"`
	ExpiryDate   null.Time      `json:"expiryDate"`
	Status       DocumentStatus `json:"status"`
	ReviewNotes  null.String    `json:"reviewNotes"`
	UploadedBy   uuid.UUID      `json:"uploadedBy"`
	ReviewedBy   *uuid.UUID     `json:"reviewedBy,omitempty"`
	ReviewedAt   null.Time      `json:"reviewedAt"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// IsLapsed reports whether an approved document has passed its expiry date.
func (d *Document) IsLapsed(now time.Time) bool {
	return d.Status == DocumentStatusApproved && d.ExpiryDate.Valid && d.ExpiryDate.Time.Before(now)
}

// EffectiveStatus folds lazy expiry into the stored status.
func (d *Document) EffectiveStatus(now time.Time) DocumentStatus {
	if d.IsLapsed(now) {
		return DocumentStatusExpired
	}
	return d.Status
}

// ExpiresWithin reports whether an approved document expires inside [now, now+window].
func (d *Document) ExpiresWithin(now time.Time, window time.Duration) bool {
	if d.Status != DocumentStatusApproved || !d.ExpiryDate.Valid {
		return false
	}
	exp := d.ExpiryDate.Time
	return !exp.Before(now) && !exp.After(now.Add(window))
}
