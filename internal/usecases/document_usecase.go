package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/internal/domain/repositories"
	"sportsadmin.backend/internal/domain/workflow"
)

const maxExpiringDays = 365

// DocumentUsecase serves document reads and readiness queries
type DocumentUsecase struct {
	contractRepo repositories.ContractRepository
	documentRepo repositories.DocumentRepository
	expiryWindow time.Duration
	now          func() time.Time
}

func NewDocumentUsecase(contractRepo repositories.ContractRepository, documentRepo repositories.DocumentRepository, expiryWindow time.Duration) *DocumentUsecase {
	return &DocumentUsecase{
		contractRepo: contractRepo,
		documentRepo: documentRepo,
		expiryWindow: expiryWindow,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Requirements lists the required and optional document types for a contract type.
func (u *DocumentUsecase) Requirements(contractType entities.ContractType) (workflow.Requirements, error) {
	if !contractType.Valid() {
		return workflow.Requirements{}, domainerrors.Validation(fmt.Sprintf("unknown contract type %q", contractType))
	}
	return workflow.RequirementsFor(contractType), nil
}

// ListByContract returns the contract's documents with lapsed approvals shown as expired.
func (u *DocumentUsecase) ListByContract(ctx context.Context, actor entities.Actor, contractID uuid.UUID) ([]*entities.Document, error) {
	if _, err := loadVisibleContract(ctx, u.contractRepo, actor, contractID); err != nil {
		return nil, err
	}
	docs, err := u.documentRepo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	now := u.now()
	for _, d := range docs {
		d.Status = d.EffectiveStatus(now)
	}
	return docs, nil
}

// Readiness evaluates the contract's current document snapshot.
func (u *DocumentUsecase) Readiness(ctx context.Context, actor entities.Actor, contractID uuid.UUID) (*workflow.ReadinessReport, error) {
	c, err := loadVisibleContract(ctx, u.contractRepo, actor, contractID)
	if err != nil {
		return nil, err
	}
	docs, err := u.documentRepo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	report := workflow.Evaluate(c.ContractType, docs, u.now())
	return &report, nil
}

// ListExpiring returns approved documents that expire within days (default window when days <= 0).
func (u *DocumentUsecase) ListExpiring(ctx context.Context, actor entities.Actor, days int) ([]*entities.Document, error) {
	if !actor.HasRole(entities.UserRoleAdmin) {
		return nil, domainerrors.Unauthorized("only admins may list expiring documents")
	}
	window := u.expiryWindow
	if days > 0 {
		if days > maxExpiringDays {
			days = maxExpiringDays
		}
		window = time.Duration(days) * 24 * time.Hour
	}
	now := u.now()
	return u.documentRepo.ListExpiring(ctx, now, now.Add(window), nil, 0)
}
