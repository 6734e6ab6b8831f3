package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mindwell-care/scheduling-api/internal/models"
	"github.com/mindwell-care/scheduling-api/pkg/jobs"
)

type auditWriter interface {
	CreateEntry(ctx context.Context, entry *models.AuditEntry) error
}

// AuditService persists audit entries off the request path through a
// buffered worker queue. A full queue drops the entry with a warning rather
// than blocking the caller.
type AuditService struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAuditService builds the service and starts its queue.
func NewAuditService(ctx context.Context, repo auditWriter, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{logger: logger}
	s.queue = jobs.NewQueue("audit", func(ctx context.Context, job jobs.Job) error {
		entry, ok := job.Payload.(*models.AuditEntry)
		if !ok {
			return nil
		}
		return repo.CreateEntry(ctx, entry)
	}, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 256,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		Logger:     logger,
	})
	s.queue.Start(ctx)
	return s
}

// Record enqueues an entry for persistence.
func (s *AuditService) Record(ctx context.Context, entry *models.AuditEntry) error {
	err := s.queue.Enqueue(jobs.Job{Type: "audit.entry", Payload: entry})
	if err != nil {
		s.logger.Warn("dropping audit entry", zap.String("action", entry.Action), zap.Error(err))
	}
	return err
}

// Stop drains the queue workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}
