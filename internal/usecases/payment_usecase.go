package usecases

import (
	"context"

	"github.com/google/uuid"

	"sportsadmin.backend/internal/domain/entities"
	"sportsadmin.backend/internal/domain/repositories"
	"sportsadmin.backend/pkg/utils"
)

// PaymentUsecase serves payment reads. Writes go through WorkflowUsecase.
type PaymentUsecase struct {
	paymentRepo  repositories.PaymentRepository
	contractRepo repositories.ContractRepository
}

func NewPaymentUsecase(paymentRepo repositories.PaymentRepository, contractRepo repositories.ContractRepository) *PaymentUsecase {
	return &PaymentUsecase{
		paymentRepo:  paymentRepo,
		contractRepo: contractRepo,
	}
}

func (u *PaymentUsecase) GetPayment(ctx context.Context, actor entities.Actor, id uuid.UUID) (*entities.Payment, error) {
	p, err := u.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := loadVisibleContract(ctx, u.contractRepo, actor, p.ContractID); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPayments pages through payments, optionally for one contract.
// Collaborators only see payments of their own contracts.
func (u *PaymentUsecase) ListPayments(ctx context.Context, actor entities.Actor, contractID *uuid.UUID, statuses []entities.PaymentStatus, page utils.PageRequest) ([]*entities.Payment, utils.PageMeta, error) {
	filter := entities.PaymentFilter{
		Statuses: statuses,
		Limit:    page.Limit,
		Offset:   page.Offset(),
	}

	switch {
	case contractID != nil:
		if _, err := loadVisibleContract(ctx, u.contractRepo, actor, *contractID); err != nil {
			return nil, utils.PageMeta{}, err
		}
		filter.ContractIDs = []uuid.UUID{*contractID}
	case !actor.HasRole(entities.UserRoleAccountant):
		ids, err := ownContractIDs(ctx, u.contractRepo, actor.ID)
		if err != nil {
			return nil, utils.PageMeta{}, err
		}
		filter.ContractIDs = ids
	}

	payments, total, err := u.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, utils.PageMeta{}, err
	}
	return payments, page.Meta(total), nil
}

// ownContractIDs never returns nil so an empty result still filters.
func ownContractIDs(ctx context.Context, repo repositories.ContractRepository, collaboratorID uuid.UUID) ([]uuid.UUID, error) {
	contracts, _, err := repo.List(ctx, entities.ContractFilter{CollaboratorID: &collaboratorID})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(contracts))
	for _, c := range contracts {
		ids = append(ids, c.ID)
	}
	return ids, nil
}
