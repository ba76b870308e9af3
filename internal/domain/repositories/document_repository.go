package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sportsadmin.backend/internal/domain/entities"
)

// DocumentRepository defines document data operations
type DocumentRepository interface {
	Create(ctx context.Context, doc *entities.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Document, error)
	GetByContractAndType(ctx context.Context, contractID uuid.UUID, docType entities.DocumentType) (*entities.Document, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]*entities.Document, error)
	// Transition persists doc only if its stored status is still from.
	Transition(ctx context.Context, doc *entities.Document, from entities.DocumentStatus) error
	// ListExpiring returns approved documents whose expiry date falls in [from, to].
	ListExpiring(ctx context.Context, from, to time.Time, collaboratorID *uuid.UUID, limit int) ([]*entities.Document, error)
	// CountExpiring counts the documents ListExpiring would return without a limit.
	CountExpiring(ctx context.Context, from, to time.Time, collaboratorID *uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context, collaboratorID *uuid.UUID, statuses ...entities.DocumentStatus) (int64, error)
}
