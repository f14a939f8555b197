package repository

import (
	"context"

	"github.com/oksasatya/user-directory/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
//
// Create and Update must enforce email and username uniqueness atomically with the
// write and report a violation as an apperror conflict naming the field.
// Lookups of a missing user return an apperror not-found.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}

// AuditRepository stores audit records for user writes.
type AuditRepository interface {
	Insert(ctx context.Context, l *entity.AuditLog) error
}
