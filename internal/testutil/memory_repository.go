// Package testutil provides in-memory implementations of the domain ports and
// fixture factories for tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/user-directory/internal/domain/apperror"
	"github.com/oksasatya/user-directory/internal/domain/entity"
	"github.com/oksasatya/user-directory/internal/domain/repository"
)

// UserRepository is a mutex-guarded in-memory user store with the same
// uniqueness semantics as the users table.
type UserRepository struct {
	mu    sync.Mutex
	users map[string]*entity.User
	now   func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User), now: time.Now}
}

func clone(u *entity.User) *entity.User {
	c := *u
	return &c
}

// conflict must be called with mu held. Email is checked across all users
// before username, so the reported field does not depend on map order.
func (r *UserRepository) conflict(u *entity.User) error {
	for id, other := range r.users {
		if id != u.ID && other.Email == u.Email {
			return apperror.Conflict("email", nil)
		}
	}
	for id, other := range r.users {
		if id != u.ID && other.Username == u.Username {
			return apperror.Conflict("username", nil)
		}
	}
	return nil
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conflict(u); err != nil {
		return err
	}
	now := r.now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = clone(u)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	return clone(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[u.ID]
	if !ok {
		return apperror.NotFound("user")
	}
	if err := r.conflict(u); err != nil {
		return err
	}
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = r.now().UTC()
	r.users[u.ID] = clone(u)
	return nil
}

// Len returns the number of stored users.
func (r *UserRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// AuditRepository records audit logs in memory.
type AuditRepository struct {
	mu   sync.Mutex
	Logs []entity.AuditLog
}

func (r *AuditRepository) Insert(_ context.Context, l *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now().UTC()
	r.Logs = append(r.Logs, *l)
	return nil
}

// Actions returns the recorded actions in insertion order.
func (r *AuditRepository) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Logs))
	for _, l := range r.Logs {
		out = append(out, l.Action)
	}
	return out
}

var (
	_ repository.UserRepository  = (*UserRepository)(nil)
	_ repository.AuditRepository = (*AuditRepository)(nil)
)
