package usecases

import (
	"context"
	"time"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/internal/domain/repositories"
)

var pendingPaymentStatuses = []entities.PaymentStatus{
	entities.PaymentStatusPendingApproval,
	entities.PaymentStatusApproved,
}

// ReportUsecase builds dashboard counters and backlog reports
type ReportUsecase struct {
	userRepo     repositories.UserRepository
	contractRepo repositories.ContractRepository
	documentRepo repositories.DocumentRepository
	paymentRepo  repositories.PaymentRepository
	expiryWindow time.Duration
	now          func() time.Time
}

func NewReportUsecase(
	userRepo repositories.UserRepository,
	contractRepo repositories.ContractRepository,
	documentRepo repositories.DocumentRepository,
	paymentRepo repositories.PaymentRepository,
	expiryWindow time.Duration,
) *ReportUsecase {
	return &ReportUsecase{
		userRepo:     userRepo,
		contractRepo: contractRepo,
		documentRepo: documentRepo,
		paymentRepo:  paymentRepo,
		expiryWindow: expiryWindow,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// DashboardStats is scoped to the collaborator's own contracts, or global for staff.
func (u *ReportUsecase) DashboardStats(ctx context.Context, actor entities.Actor) (*entities.DashboardStats, error) {
	if actor.HasRole(entities.UserRoleAccountant) {
		return u.globalStats(ctx)
	}
	return u.collaboratorStats(ctx, actor)
}

func (u *ReportUsecase) collaboratorStats(ctx context.Context, actor entities.Actor) (*entities.DashboardStats, error) {
	id := actor.ID
	stats := &entities.DashboardStats{}
	var err error

	if stats.TotalContracts, err = u.contractRepo.Count(ctx, &id); err != nil {
		return nil, err
	}
	// contracts waiting on the collaborator: documents to upload or a copy to sign
	if stats.PendingContracts, err = u.contractRepo.Count(ctx, &id, entities.ContractStatusPendingDocuments, entities.ContractStatusApproved); err != nil {
		return nil, err
	}
	if stats.ActiveContracts, err = u.contractRepo.Count(ctx, &id, entities.ContractStatusActive); err != nil {
		return nil, err
	}
	if stats.PendingDocuments, err = u.documentRepo.CountByStatus(ctx, &id, entities.DocumentStatusRejected, entities.DocumentStatusExpired); err != nil {
		return nil, err
	}
	now := u.now()
	expiring, err := u.documentRepo.ListExpiring(ctx, now, now.Add(u.expiryWindow), &id, 0)
	if err != nil {
		return nil, err
	}
	stats.ExpiringDocuments = int64(len(expiring))

	ids, err := ownContractIDs(ctx, u.contractRepo, id)
	if err != nil {
		return nil, err
	}
	if stats.PendingPayments, err = u.paymentRepo.Count(ctx, ids, pendingPaymentStatuses...); err != nil {
		return nil, err
	}
	return stats, nil
}

func (u *ReportUsecase) globalStats(ctx context.Context) (*entities.DashboardStats, error) {
	stats := &entities.DashboardStats{}
	var err error

	if stats.TotalContracts, err = u.contractRepo.Count(ctx, nil); err != nil {
		return nil, err
	}
	if stats.PendingContracts, err = u.contractRepo.Count(ctx, nil, entities.ContractStatusPendingDocuments, entities.ContractStatusUnderReview); err != nil {
		return nil, err
	}
	if stats.ActiveContracts, err = u.contractRepo.Count(ctx, nil, entities.ContractStatusActive); err != nil {
		return nil, err
	}
	if stats.PendingApprovals, err = u.contractRepo.Count(ctx, nil, entities.ContractStatusPendingApproval); err != nil {
		return nil, err
	}
	if stats.PendingDocuments, err = u.documentRepo.CountByStatus(ctx, nil, entities.DocumentStatusUploaded, entities.DocumentStatusUnderReview); err != nil {
		return nil, err
	}
	now := u.now()
	expiring, err := u.documentRepo.ListExpiring(ctx, now, now.Add(u.expiryWindow), nil, 0)
	if err != nil {
		return nil, err
	}
	stats.ExpiringDocuments = int64(len(expiring))
	if stats.PendingPayments, err = u.paymentRepo.Count(ctx, nil, pendingPaymentStatuses...); err != nil {
		return nil, err
	}
	if stats.TotalCollaborators, err = u.userRepo.CountByRole(ctx, entities.UserRoleCollaborator); err != nil {
		return nil, err
	}
	return stats, nil
}

// ContractsPendingSignature lists approved contracts waiting for the signed copy.
func (u *ReportUsecase) ContractsPendingSignature(ctx context.Context, actor entities.Actor) ([]*entities.Contract, error) {
	if !actor.HasRole(entities.UserRoleAdmin) {
		return nil, domainerrors.Unauthorized("only admins may view contract reports")
	}
	contracts, _, err := u.contractRepo.List(ctx, entities.ContractFilter{
		Statuses: []entities.ContractStatus{entities.ContractStatusApproved, entities.ContractStatusPendingSignature},
	})
	return contracts, err
}

func (u *ReportUsecase) ActiveContracts(ctx context.Context, actor entities.Actor) ([]*entities.Contract, error) {
	if !actor.HasRole(entities.UserRoleAdmin) {
		return nil, domainerrors.Unauthorized("only admins may view contract reports")
	}
	contracts, _, err := u.contractRepo.List(ctx, entities.ContractFilter{
		Statuses: []entities.ContractStatus{entities.ContractStatusActive},
	})
	return contracts, err
}

// PendingPayments lists payments awaiting approval or payout.
func (u *ReportUsecase) PendingPayments(ctx context.Context, actor entities.Actor) ([]*entities.Payment, error) {
	if !actor.HasRole(entities.UserRoleAccountant) {
		return nil, domainerrors.Unauthorized("only accountants may view payment reports")
	}
	payments, _, err := u.paymentRepo.List(ctx, entities.PaymentFilter{Statuses: pendingPaymentStatuses})
	return payments, err
}
