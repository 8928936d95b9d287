package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/pkg/metrics"
	"go.uber.org/zap"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

type AuditService struct {
	repo    AuditRepository
	log     *zap.Logger
	metrics *metrics.Collector
	entries chan *domain.AuditLog
	done    chan struct{}

	// mu guards entries against a send racing Shutdown's close.
	mu     sync.RWMutex
	closed bool
}

const auditBufferSize = 10_000

func NewAuditService(repo AuditRepository, m *metrics.Collector, log *zap.Logger) *AuditService {
	svc := &AuditService{
		repo:    repo,
		log:     log,
		metrics: m,
		entries: make(chan *domain.AuditLog, auditBufferSize),
		done:    make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// LogAsync enqueues an audit entry for async persistence.
// If the buffer is full or the service has shut down, the entry is dropped
// and a warning is emitted.
func (s *AuditService) LogAsync(_ context.Context, entry AuditEntry) {
	changes := "{}"
	if len(entry.Changes) > 0 {
		if raw, err := json.Marshal(entry.Changes); err == nil {
			changes = string(raw)
		} else {
			s.log.Warn("audit changes not serializable", zap.String("resource", entry.ResourceType), zap.Error(err))
		}
	}
	al := &domain.AuditLog{
		UserID:       entry.UserID,
		UserRole:     entry.UserRole,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		IPAddress:    entry.IPAddress,
		RequestID:    entry.RequestID,
		StatusCode:   entry.StatusCode,
		Changes:      changes,
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.metrics.AuditDropped()
		s.log.Warn("audit service stopped, dropping entry",
			zap.String("action", string(entry.Action)),
			zap.String("resource", entry.ResourceType),
		)
		return
	}
	select {
	case s.entries <- al:
	default:
		s.metrics.AuditDropped()
		s.log.Warn("audit log buffer full, dropping entry",
			zap.String("action", string(entry.Action)),
			zap.String("resource", entry.ResourceType),
		)
	}
}

// Shutdown drains the buffer. Entries logged afterwards are dropped; calling
// it again is a no-op.
func (s *AuditService) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.entries)
	s.mu.Unlock()

	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		s.log.Warn("audit service shutdown timed out; some entries may be lost")
	}
}

func (s *AuditService) worker() {
	defer close(s.done)
	for entry := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, entry); err != nil {
			s.log.Error("failed to persist audit log", zap.Error(err))
		} else {
			s.metrics.AuditWritten()
		}
		cancel()
	}
}
