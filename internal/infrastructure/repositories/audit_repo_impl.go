package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sportsadmin.backend/internal/domain/entities"
	domainerrors "sportsadmin.backend/internal/domain/errors"
	"sportsadmin.backend/internal/infrastructure/models"
)

// AuditRepositoryImpl implements AuditRepository
type AuditRepositoryImpl struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepositoryImpl {
	return &AuditRepositoryImpl{db: db}
}

func (r *AuditRepositoryImpl) Append(ctx context.Context, e *entities.AuditEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	m := &models.AuditEntry{
		ID:         e.ID,
		ActorID:    e.ActorID,
		EntityType: string(e.EntityType),
		EntityID:   e.EntityID,
		Action:     e.Action,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		Timestamp:  e.Timestamp,
	}
	return translate(GetDB(ctx, r.db).Create(m).Error)
}

func (r *AuditRepositoryImpl) ListByEntity(ctx context.Context, entityType entities.EntityType, entityID uuid.UUID) ([]*entities.AuditEntry, error) {
	var ms []models.AuditEntry
	if err := GetDB(ctx, r.db).
		Where("entity_type = ? AND entity_id = ?", string(entityType), entityID).
		Order("occurred_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	entries := make([]*entities.AuditEntry, 0, len(ms))
	for _, m := range ms {
		entries = append(entries, &entities.AuditEntry{
			ID:         m.ID,
			ActorID:    m.ActorID,
			EntityType: entities.EntityType(m.EntityType),
			EntityID:   m.EntityID,
			Action:     m.Action,
			FromStatus: m.FromStatus,
			ToStatus:   m.ToStatus,
			Timestamp:  m.Timestamp,
		})
	}
	return entries, nil
}

// NotificationRepositoryImpl implements NotificationRepository
type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepositoryImpl {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, n *entities.Notification) error {
	m := &models.Notification{
		ID:         n.ID,
		UserID:     n.UserID,
		EventType:  string(n.EventType),
		Title:      n.Title,
		Message:    n.Message,
		EntityType: string(n.EntityType),
		EntityID:   n.EntityID,
		Read:       n.Read,
		CreatedAt:  n.CreatedAt,
	}
	return translate(GetDB(ctx, r.db).Create(m).Error)
}

func (r *NotificationRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entities.Notification, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", userID)
		if unreadOnly {
			db = db.Where("read = ?", false)
		}
		return db
	}

	var total int64
	if err := GetDB(ctx, r.db).Model(&models.Notification{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Notification
	query := GetDB(ctx, r.db).Scopes(scope).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*entities.Notification, 0, len(ms))
	for _, m := range ms {
		items = append(items, &entities.Notification{
			ID:         m.ID,
			UserID:     m.UserID,
			EventType:  entities.NotificationEventType(m.EventType),
			Title:      m.Title,
			Message:    m.Message,
			EntityType: entities.EntityType(m.EntityType),
			EntityID:   m.EntityID,
			Read:       m.Read,
			CreatedAt:  m.CreatedAt,
		})
	}
	return items, total, nil
}

// MarkRead marks one notification owned by userID as read
func (r *NotificationRepositoryImpl) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	result := GetDB(ctx, r.db).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *NotificationRepositoryImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}
