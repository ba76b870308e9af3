package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/internal/infrastructure/models"
)

// PaymentRepositoryImpl implements PaymentRepository
type PaymentRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepositoryImpl {
	return &PaymentRepositoryImpl{db: db}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, p *entities.Payment) error {
	m := &models.Payment{
		ID:              p.ID,
		ContractID:      p.ContractID,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
		Description:     p.Description,
		BillFileID:      p.BillFileID.Ptr(),
		VoucherFileID:   p.VoucherFileID.Ptr(),
		Status:          string(p.Status),
		RejectionReason: p.RejectionReason.Ptr(),
		CreatedBy:       p.CreatedBy,
		ApprovedBy:      p.ApprovedBy,
		RejectedBy:      p.RejectedBy,
		ConfirmedBy:     p.ConfirmedBy,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	return translate(GetDB(ctx, r.db).Create(m).Error)
}

func (r *PaymentRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error) {
	var m models.Payment
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return r.toEntity(&m), nil
}

func (r *PaymentRepositoryImpl) List(ctx context.Context, filter entities.PaymentFilter) ([]*entities.Payment, int64, error) {
	// An explicit empty contract set means the caller owns no contracts.
	if filter.ContractIDs != nil && len(filter.ContractIDs) == 0 {
		return []*entities.Payment{}, 0, nil
	}
	scope := paymentScope(filter.ContractIDs, filter.Statuses)

	var total int64
	if err := GetDB(ctx, r.db).Model(&models.Payment{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Payment
	query := GetDB(ctx, r.db).Scopes(scope).Order("payment_date DESC, created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	payments := make([]*entities.Payment, 0, len(ms))
	for i := range ms {
		payments = append(payments, r.toEntity(&ms[i]))
	}
	return payments, total, nil
}

// Transition writes the workflow fields guarded by the expected current status.
func (r *PaymentRepositoryImpl) Transition(ctx context.Context, p *entities.Payment, from entities.PaymentStatus) error {
	now := time.Now()
	result := GetDB(ctx, r.db).Model(&models.Payment{}).
		Where("id = ? AND status = ?", p.ID, string(from)).
		Updates(map[string]interface{}{
			"status":           string(p.Status),
			"bill_file_id":     p.BillFileID.Ptr(),
			"voucher_file_id":  p.VoucherFileID.Ptr(),
			"rejection_reason": p.RejectionReason.Ptr(),
			"approved_by":      p.ApprovedBy,
			"rejected_by":      p.RejectedBy,
			"confirmed_by":     p.ConfirmedBy,
			"updated_at":       now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		current, err := r.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		return domainerrors.InvalidTransition(fmt.Sprintf("payment moved from %s to %s concurrently", from, current.Status))
	}
	p.UpdatedAt = now
	return nil
}

func (r *PaymentRepositoryImpl) Count(ctx context.Context, contractIDs []uuid.UUID, statuses ...entities.PaymentStatus) (int64, error) {
	if contractIDs != nil && len(contractIDs) == 0 {
		return 0, nil
	}
	var total int64
	if err := GetDB(ctx, r.db).Model(&models.Payment{}).Scopes(paymentScope(contractIDs, statuses)).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func paymentScope(contractIDs []uuid.UUID, statuses []entities.PaymentStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(contractIDs) > 0 {
			db = db.Where("contract_id IN ?", contractIDs)
		}
		if len(statuses) > 0 {
			names := make([]string, len(statuses))
			for i, s := range statuses {
				names[i] = string(s)
			}
			db = db.Where("status IN ?", names)
		}
		return db
	}
}

func (r *PaymentRepositoryImpl) toEntity(m *models.Payment) *entities.Payment {
	return &entities.Payment{
		ID:              m.ID,
		ContractID:      m.ContractID,
		Amount:          m.Amount,
		PaymentDate:     m.PaymentDate,
		Description:     m.Description,
		BillFileID:      null.StringFromPtr(m.BillFileID),
		VoucherFileID:   null.StringFromPtr(m.VoucherFileID),
		Status:          entities.PaymentStatus(m.Status),
		RejectionReason: null.StringFromPtr(m.RejectionReason),
		CreatedBy:       m.CreatedBy,
		ApprovedBy:      m.ApprovedBy,
		RejectedBy:      m.RejectedBy,
		ConfirmedBy:     m.ConfirmedBy,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
