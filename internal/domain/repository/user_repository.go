package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// CreateWithAudit inserts u and the audit entry in one transaction.
	// On success u.ID, u.CreatedAt and u.UpdatedAt are filled in.
	CreateWithAudit(ctx context.Context, u *entity.User, audit *entity.AuditLog) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// AuditLogRepository appends audit entries. Entries are never updated or removed.
type AuditLogRepository interface {
	Insert(ctx context.Context, entry *entity.AuditLog) error
}
