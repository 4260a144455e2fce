// Package audit implements the append-only audit trail. Writes are
// fire-and-forget: a privileged action never blocks on, or fails
// because of, its audit entry.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/catometrics/server/internal/model"
	"github.com/catometrics/server/internal/shared/metrics"
)

// Entry describes a privileged action to record.
type Entry struct {
	UserID     uuid.UUID
	Action     model.AuditAction
	EntityType string
	EntityID   *uuid.UUID
	Details    map[string]any
	IPAddress  string
}

// Repository persists audit log rows.
type Repository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, filter model.AuditLogFilter) ([]*model.AuditLog, int64, error)
}

// Recorder queues audit entries and persists them on a single writer
// goroutine. A full queue drops the entry and counts the drop; the
// primary action proceeds either way.
type Recorder struct {
	repo    Repository
	queue   chan *model.AuditLog
	metrics *metrics.Metrics
	logger  *zap.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewRecorder creates a recorder and starts its writer goroutine.
func NewRecorder(repo Repository, queueSize int, m *metrics.Metrics, logger *zap.Logger) *Recorder {
	if queueSize <= 0 {
		queueSize = 1024
	}
	r := &Recorder{
		repo:    repo,
		queue:   make(chan *model.AuditLog, queueSize),
		metrics: m,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues one audit entry. It never blocks and never returns an
// error; failures go to the operational log and metrics only.
func (r *Recorder) Record(_ context.Context, e Entry) {
	row := &model.AuditLog{
		ID:         uuid.New(),
		UserID:     e.UserID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		CreatedAt:  time.Now(),
	}
	if e.IPAddress != "" {
		ip := e.IPAddress
		row.IPAddress = &ip
	}
	if len(e.Details) > 0 {
		if encoded, err := json.Marshal(e.Details); err == nil {
			details := string(encoded)
			row.Details = &details
		} else {
			r.logger.Warn("audit details not serializable",
				zap.String("action", e.Action.String()),
				zap.Error(err),
			)
		}
	}

	select {
	case r.queue <- row:
	default:
		if r.metrics != nil {
			r.metrics.AuditDroppedTotal.Inc()
		}
		r.logger.Error("audit entry dropped, queue full",
			zap.String("action", e.Action.String()),
			zap.String("user_id", e.UserID.String()),
		)
	}
}

// List reads back audit entries, newest first.
func (r *Recorder) List(ctx context.Context, filter model.AuditLogFilter) ([]*model.AuditLog, int64, error) {
	return r.repo.List(ctx, filter)
}

// Close stops accepting entries and drains the queue.
func (r *Recorder) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		close(r.queue)
	})
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for row := range r.queue {
		// The request that triggered the entry may be long gone; writes
		// use a fresh timeout instead of the caller's context.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := r.repo.Create(ctx, row)
		cancel()
		if err != nil {
			if r.metrics != nil {
				r.metrics.AuditFailedTotal.Inc()
			}
			r.logger.Error("audit entry not persisted",
				zap.String("action", row.Action.String()),
				zap.String("user_id", row.UserID.String()),
				zap.Error(err),
			)
			continue
		}
		if r.metrics != nil {
			r.metrics.AuditRecordedTotal.Inc()
		}
	}
}
