package usecases

import (
	"context"

	"github.com/google/uuid"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/internal/domain/repositories"
	"sportsadmin.backend/pkg/utils"
)

// ContractUsecase serves contract reads. Writes go through WorkflowUsecase.
type ContractUsecase struct {
	contractRepo repositories.ContractRepository
	auditRepo    repositories.AuditRepository
}

func NewContractUsecase(contractRepo repositories.ContractRepository, auditRepo repositories.AuditRepository) *ContractUsecase {
	return &ContractUsecase{
		contractRepo: contractRepo,
		auditRepo:    auditRepo,
	}
}

// canView lets staff see every contract and collaborators only their own.
func canView(actor entities.Actor, ownerID uuid.UUID) bool {
	return actor.HasRole(entities.UserRoleAccountant) || actor.ID == ownerID
}

func loadVisibleContract(ctx context.Context, repo repositories.ContractRepository, actor entities.Actor, id uuid.UUID) (*entities.Contract, error) {
	c, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, c.CollaboratorID) {
		return nil, domainerrors.Unauthorized("you may only access your own contracts")
	}
	return c, nil
}

func (u *ContractUsecase) GetContract(ctx context.Context, actor entities.Actor, id uuid.UUID) (*entities.Contract, error) {
	return loadVisibleContract(ctx, u.contractRepo, actor, id)
}

// ListContracts pages through contracts; collaborators only see their own.
func (u *ContractUsecase) ListContracts(ctx context.Context, actor entities.Actor, statuses []entities.ContractStatus, page utils.PageRequest) ([]*entities.Contract, utils.PageMeta, error) {
	filter := entities.ContractFilter{
		Statuses: statuses,
		Limit:    page.Limit,
		Offset:   page.Offset(),
	}
	if !actor.HasRole(entities.UserRoleAccountant) {
		id := actor.ID
		filter.CollaboratorID = &id
	}

	contracts, total, err := u.contractRepo.List(ctx, filter)
	if err != nil {
		return nil, utils.PageMeta{}, err
	}
	return contracts, page.Meta(total), nil
}

// History returns the audit trail of the contract, oldest first.
func (u *ContractUsecase) History(ctx context.Context, actor entities.Actor, id uuid.UUID) ([]*entities.AuditEntry, error) {
	if _, err := loadVisibleContract(ctx, u.contractRepo, actor, id); err != nil {
		return nil, err
	}
	return u.auditRepo.ListByEntity(ctx, entities.EntityTypeContract, id)
}
