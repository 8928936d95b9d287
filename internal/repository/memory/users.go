package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain"
	"github.com/google/uuid"
)

// UserStore keeps accounts outside the unit-of-work state; logins never
// share a transaction with dispensing.
type UserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: map[uuid.UUID]domain.User{}}
}

func (s *UserStore) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) || strings.EqualFold(existing.Username, u.Username) {
			return domain.ErrUserExists
		}
	}
	u.ID = newID(u.ID)
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	return nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (s *UserStore) UpdateLoginAttempt(_ context.Context, id uuid.UUID, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RecordLogin(success, time.Now().UTC())
	s.users[id] = u
	return nil
}

func (s *UserStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.PasswordChangedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}

// AuditStore is an append-only audit log.
type AuditStore struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Create(_ context.Context, entry *domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = newID(entry.ID)
	entry.OccurredAt = time.Now().UTC()
	s.entries = append(s.entries, *entry)
	return nil
}

// Entries returns a copy of everything written so far, oldest first.
func (s *AuditStore) Entries() []domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditLog(nil), s.entries...)
}
