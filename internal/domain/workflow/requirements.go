package workflow

import (
	"time"

	"sportsadmin.backend/internal/domain/entities"
)

// Requirements lists the document types a contract must and may carry
type Requirements struct {
	Required []entities.DocumentType `json:"required"`
	Optional []entities.DocumentType `json:"optional"`
}

var (
	requiredDocuments = []entities.DocumentType{
		entities.DocumentTypeCedula,
		entities.DocumentTypeRUT,
		entities.DocumentTypeCertLaboral,
		entities.DocumentTypeCertEducativa,
		entities.DocumentTypeCuentaBancaria,
		entities.DocumentTypeAntecedentes,
	}
	optionalDocuments = []entities.DocumentType{
		entities.DocumentTypeLicencia,
	}
)

// RequirementsFor returns the document requirements for a contract type.
// Both contract types share one set today; the parameter is kept so the sets can diverge.
func RequirementsFor(_ entities.ContractType) Requirements {
	req := make([]entities.DocumentType, len(requiredDocuments))
	copy(req, requiredDocuments)
	opt := make([]entities.DocumentType, len(optionalDocuments))
	copy(opt, optionalDocuments)
	return Requirements{Required: req, Optional: opt}
}

// IsRequired reports whether t is mandatory for the contract type.
func IsRequired(contractType entities.ContractType, t entities.DocumentType) bool {
	for _, r := range RequirementsFor(contractType).Required {
		if r == t {
			return true
		}
	}
	return false
}

// ReadinessReport is the outcome of evaluating a contract's document snapshot
type ReadinessReport struct {
	Ready    bool                                              `json:"ready"`
	Missing  []entities.DocumentType                           `json:"missing"`
	Statuses map[entities.DocumentType]entities.DocumentStatus `json:"statuses"`
}

// Evaluate computes readiness over a snapshot of the contract's documents.
// Types without a row are reported as pending; lapsed approvals count as expired.
func Evaluate(contractType entities.ContractType, docs []*entities.Document, now time.Time) ReadinessReport {
	byType := make(map[entities.DocumentType]*entities.Document, len(docs))
	for _, d := range docs {
		if d != nil {
			byType[d.DocumentType] = d
		}
	}

	reqs := RequirementsFor(contractType)
	report := ReadinessReport{
		Ready:    true,
		Missing:  []entities.DocumentType{},
		Statuses: make(map[entities.DocumentType]entities.DocumentStatus, len(reqs.Required)+len(reqs.Optional)),
	}
	for _, t := range append(reqs.Required, reqs.Optional...) {
		status := entities.DocumentStatusPending
		if d, ok := byType[t]; ok {
			status = d.EffectiveStatus(now)
		}
		report.Statuses[t] = status
	}
	for _, t := range reqs.Required {
		if report.Statuses[t] != entities.DocumentStatusApproved {
			report.Ready = false
			report.Missing = append(report.Missing, t)
		}
	}
	return report
}

// IsReady reports whether every required document type has an approved document.
func IsReady(contractType entities.ContractType, docs []*entities.Document, now time.Time) bool {
	return Evaluate(contractType, docs, now).Ready
}
