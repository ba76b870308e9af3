package usecases

import (
	"context"
	"io"
	"time"

	"sportsadmin.backend/internal/domain/entities"
)

// BlobStore keeps uploaded files behind opaque ids
type BlobStore interface {
	Store(ctx context.Context, r io.Reader, size int64, contentType, name string) (string, error)
	Retrieve(ctx context.Context, fileID string) (io.ReadCloser, error)
	URL(ctx context.Context, fileID string) (string, error)
	Delete(ctx context.Context, fileID string) error
}

// Notifier delivers workflow events. Implementations must not block on failure.
type Notifier interface {
	Notify(ctx context.Context, event entities.NotificationEvent)
}

// EntityLocker serializes writers on a single workflow entity
type EntityLocker interface {
	Acquire(ctx context.Context, key string) (func(context.Context), error)
}

// TransitionObserver records workflow outcomes
type TransitionObserver interface {
	ObserveTransition(entity, action, outcome string, since time.Time)
}

// FileUpload is a file supplied with a workflow action
type FileUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Name        string
}
