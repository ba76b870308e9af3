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

// DocumentRepositoryImpl implements DocumentRepository
type DocumentRepositoryImpl struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepositoryImpl {
	return &DocumentRepositoryImpl{db: db}
}

// Create inserts the first document of its type for the contract.
func (r *DocumentRepositoryImpl) Create(ctx context.Context, d *entities.Document) error {
	m := &models.Document{
		ID:           d.ID,
		ContractID:   d.ContractID,
		DocumentType: string(d.DocumentType),
		FileID:       d.FileID,
		FileName:     d.FileName,
		ExpiryDate:   d.ExpiryDate.Ptr(),
		Status:       string(d.Status),
		ReviewNotes:  d.ReviewNotes.Ptr(),
		UploadedBy:   d.UploadedBy,
		ReviewedBy:   d.ReviewedBy,
		ReviewedAt:   d.ReviewedAt.Ptr(),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	return translate(GetDB(ctx, r.db).Create(m).Error)
}

func (r *DocumentRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Document, error) {
	var m models.Document
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return r.toEntity(&m), nil
}

func (r *DocumentRepositoryImpl) GetByContractAndType(ctx context.Context, contractID uuid.UUID, docType entities.DocumentType) (*entities.Document, error) {
	var m models.Document
	err := GetDB(ctx, r.db).
		Where("contract_id = ? AND document_type = ?", contractID, string(docType)).
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return r.toEntity(&m), nil
}

func (r *DocumentRepositoryImpl) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*entities.Document, error) {
	var ms []models.Document
	if err := GetDB(ctx, r.db).
		Where("contract_id = ?", contractID).
		Order("document_type ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

// Transition overwrites the document guarded by the expected current status.
func (r *DocumentRepositoryImpl) Transition(ctx context.Context, d *entities.Document, from entities.DocumentStatus) error {
	now := time.Now()
	result := GetDB(ctx, r.db).Model(&models.Document{}).
		Where("id = ? AND status = ?", d.ID, string(from)).
		Updates(map[string]interface{}{
			"file_id":      d.FileID,
			"file_name":    d.FileName,
			"expiry_date":  d.ExpiryDate.Ptr(),
			"status":       string(d.Status),
			"review_notes": d.ReviewNotes.Ptr(),
			"uploaded_by":  d.UploadedBy,
			"reviewed_by":  d.ReviewedBy,
			"reviewed_at":  d.ReviewedAt.Ptr(),
			"updated_at":   now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		current, err := r.GetByID(ctx, d.ID)
		if err != nil {
			return err
		}
		return domainerrors.InvalidTransition(fmt.Sprintf("document moved from %s to %s concurrently", from, current.Status))
	}
	d.UpdatedAt = now
	return nil
}

func (r *DocumentRepositoryImpl) ListExpiring(ctx context.Context, from, to time.Time, collaboratorID *uuid.UUID, limit int) ([]*entities.Document, error) {
	query := GetDB(ctx, r.db).
		Model(&models.Document{}).
		Scopes(documentOwnerScope(collaboratorID), expiringScope(from, to)).
		Order("documents.expiry_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var ms []models.Document
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

func (r *DocumentRepositoryImpl) CountExpiring(ctx context.Context, from, to time.Time, collaboratorID *uuid.UUID) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).
		Model(&models.Document{}).
		Scopes(documentOwnerScope(collaboratorID), expiringScope(from, to)).
		Count(&total).Error
	return total, err
}

func expiringScope(from, to time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Where("documents.status = ? AND documents.expiry_date IS NOT NULL", string(entities.DocumentStatusApproved)).
			Where("documents.expiry_date >= ? AND documents.expiry_date <= ?", from, to)
	}
}

func (r *DocumentRepositoryImpl) CountByStatus(ctx context.Context, collaboratorID *uuid.UUID, statuses ...entities.DocumentStatus) (int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Document{}).Scopes(documentOwnerScope(collaboratorID))
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, s := range statuses {
			names[i] = string(s)
		}
		query = query.Where("documents.status IN ?", names)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func documentOwnerScope(collaboratorID *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if collaboratorID == nil {
			return db
		}
		return db.Joins("JOIN contracts ON contracts.id = documents.contract_id").
			Where("contracts.collaborator_id = ?", *collaboratorID)
	}
}

func (r *DocumentRepositoryImpl) toEntities(ms []models.Document) []*entities.Document {
	docs := make([]*entities.Document, 0, len(ms))
	for i := range ms {
		docs = append(docs, r.toEntity(&ms[i]))
	}
	return docs
}

func (r *DocumentRepositoryImpl) toEntity(m *models.Document) *entities.Document {
	return &entities.Document{
		ID:           m.ID,
		ContractID:   m.ContractID,
		DocumentType: entities.DocumentType(m.DocumentType),
		FileID:       m.FileID,
		FileName:     m.FileName,
		ExpiryDate:   null.TimeFromPtr(m.ExpiryDate),
		Status:       entities.DocumentStatus(m.Status),
		ReviewNotes:  null.StringFromPtr(m.ReviewNotes),
		UploadedBy:   m.UploadedBy,
		ReviewedBy:   m.ReviewedBy,
		ReviewedAt:   null.TimeFromPtr(m.ReviewedAt),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
