package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sportsadmin.backend/internal/domain/entities"
	"sportsadmin.backend/pkg/logger"
)

const expiryScanLimit = 500

type expiringDocumentLister interface {
	ListExpiring(ctx context.Context, from, to time.Time, collaboratorID *uuid.UUID, limit int) ([]*entities.Document, error)
	CountExpiring(ctx context.Context, from, to time.Time, collaboratorID *uuid.UUID) (int64, error)
}

type expiryGauge interface {
	SetExpiringDocuments(n int)
}

// DocumentExpiryJob periodically reports approved documents about to expire.
// It never writes; lapsed documents are moved to expired when the workflow next loads them.
type DocumentExpiryJob struct {
	repo      expiringDocumentLister
	gauge     expiryGauge
	window    time.Duration
	interval  time.Duration
	scanLimit int
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewDocumentExpiryJob(repo expiringDocumentLister, gauge expiryGauge, window, interval time.Duration) *DocumentExpiryJob {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &DocumentExpiryJob{
		repo:      repo,
		gauge:     gauge,
		window:    window,
		interval:  interval,
		scanLimit: expiryScanLimit,
		now:       func() time.Time { return time.Now().UTC() },
		stop:      make(chan struct{}),
	}
}

// Start runs one scan immediately and then on every tick until ctx ends or Stop is called.
func (j *DocumentExpiryJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting document expiry job", zap.Duration("interval", j.interval), zap.Duration("window", j.window))

	j.scan(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Document expiry job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Document expiry job stopped")
			return
		case <-ticker.C:
			j.scan(ctx)
		}
	}
}

func (j *DocumentExpiryJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

func (j *DocumentExpiryJob) scan(ctx context.Context) int {
	now := j.now()
	to := now.Add(j.window)
	docs, err := j.repo.ListExpiring(ctx, now, to, nil, j.scanLimit)
	if err != nil {
		logger.Error(ctx, "Failed to list expiring documents", zap.Error(err))
		return -1
	}

	total := len(docs)
	if total >= j.scanLimit {
		// the listing is truncated; count the rest for the gauge
		n, err := j.repo.CountExpiring(ctx, now, to, nil)
		if err != nil {
			logger.Error(ctx, "Failed to count expiring documents", zap.Error(err))
			return -1
		}
		total = int(n)
		logger.Warn(ctx, "Expiring document scan truncated", zap.Int("listed", len(docs)), zap.Int("total", total))
	}

	if j.gauge != nil {
		j.gauge.SetExpiringDocuments(total)
	}
	for _, d := range docs {
		logger.Warn(ctx, "Document expiring soon",
			zap.String("document_id", d.ID.String()),
			zap.String("contract_id", d.ContractID.String()),
			zap.String("document_type", string(d.DocumentType)),
			zap.Time("expiry_date", d.ExpiryDate.Time),
		)
	}
	return total
}
