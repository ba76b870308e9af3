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

// ContractRepositoryImpl implements ContractRepository
type ContractRepositoryImpl struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepositoryImpl {
	return &ContractRepositoryImpl{db: db}
}

func (r *ContractRepositoryImpl) Create(ctx context.Context, c *entities.Contract) error {
	m := &models.Contract{
		ID:                c.ID,
		CollaboratorID:    c.CollaboratorID,
		ContractType:      string(c.ContractType),
		Title:             c.Title,
		Description:       c.Description,
		StartDate:         c.StartDate,
		EndDate:           c.EndDate.Ptr(),
		MonthlyPayment:    c.MonthlyPayment.Ptr(),
		PaymentPerSession: c.PaymentPerSession.Ptr(),
		Status:            string(c.Status),
		ContractFileID:    c.ContractFileID.Ptr(),
		SignedFileID:      c.SignedFileID.Ptr(),
		ApprovedBy:        c.ApprovedBy,
		Notes:             c.Notes,
		CreatedBy:         c.CreatedBy,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	return translate(GetDB(ctx, r.db).Create(m).Error)
}

func (r *ContractRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Contract, error) {
	var m models.Contract
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return r.toEntity(&m), nil
}

func (r *ContractRepositoryImpl) List(ctx context.Context, filter entities.ContractFilter) ([]*entities.Contract, int64, error) {
	scope := contractScope(filter.CollaboratorID, filter.Statuses)

	var total int64
	if err := GetDB(ctx, r.db).Model(&models.Contract{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Contract
	query := GetDB(ctx, r.db).Scopes(scope).Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	contracts := make([]*entities.Contract, 0, len(ms))
	for i := range ms {
		contracts = append(contracts, r.toEntity(&ms[i]))
	}
	return contracts, total, nil
}

// Transition writes the workflow fields guarded by the expected current status.
func (r *ContractRepositoryImpl) Transition(ctx context.Context, c *entities.Contract, from entities.ContractStatus) error {
	now := time.Now()
	result := GetDB(ctx, r.db).Model(&models.Contract{}).
		Where("id = ? AND status = ?", c.ID, string(from)).
		Updates(map[string]interface{}{
			"status":           string(c.Status),
			"contract_file_id": c.ContractFileID.Ptr(),
			"signed_file_id":   c.SignedFileID.Ptr(),
			"approved_by":      c.ApprovedBy,
			"updated_at":       now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missedTransition(ctx, c.ID, from)
	}
	c.UpdatedAt = now
	return nil
}

// UpdateDetails writes the editable fields. The status guard keeps an edit
// from landing on a contract that moved on meanwhile.
func (r *ContractRepositoryImpl) UpdateDetails(ctx context.Context, c *entities.Contract) error {
	now := time.Now()
	result := GetDB(ctx, r.db).Model(&models.Contract{}).
		Where("id = ? AND status = ?", c.ID, string(c.Status)).
		Updates(map[string]interface{}{
			"title":               c.Title,
			"description":         c.Description,
			"start_date":          c.StartDate,
			"end_date":            c.EndDate.Ptr(),
			"monthly_payment":     c.MonthlyPayment.Ptr(),
			"payment_per_session": c.PaymentPerSession.Ptr(),
			"notes":               c.Notes,
			"updated_at":          now,
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missedTransition(ctx, c.ID, c.Status)
	}
	c.UpdatedAt = now
	return nil
}

func (r *ContractRepositoryImpl) missedTransition(ctx context.Context, id uuid.UUID, from entities.ContractStatus) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return domainerrors.InvalidTransition(fmt.Sprintf("contract moved from %s to %s concurrently", from, current.Status))
}

func (r *ContractRepositoryImpl) Count(ctx context.Context, collaboratorID *uuid.UUID, statuses ...entities.ContractStatus) (int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&models.Contract{}).Scopes(contractScope(collaboratorID, statuses)).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ContractRepositoryImpl) toEntity(m *models.Contract) *entities.Contract {
	return &entities.Contract{
		ID:                m.ID,
		CollaboratorID:    m.CollaboratorID,
		ContractType:      entities.ContractType(m.ContractType),
		Title:             m.Title,
		Description:       m.Description,
		StartDate:         m.StartDate,
		EndDate:           null.TimeFromPtr(m.EndDate),
		MonthlyPayment:    null.Float64FromPtr(m.MonthlyPayment),
		PaymentPerSession: null.Float64FromPtr(m.PaymentPerSession),
		Status:            entities.ContractStatus(m.Status),
		ContractFileID:    null.StringFromPtr(m.ContractFileID),
		SignedFileID:      null.StringFromPtr(m.SignedFileID),
		ApprovedBy:        m.ApprovedBy,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func contractScope(collaboratorID *uuid.UUID, statuses []entities.ContractStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if collaboratorID != nil {
			db = db.Where("collaborator_id = ?", *collaboratorID)
		}
		if len(statuses) > 0 {
			db = db.Where("status IN ?", contractStatusStrings(statuses))
		}
		return db
	}
}

func contractStatusStrings(statuses []entities.ContractStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
