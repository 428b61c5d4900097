package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/entity"
	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/repository"
)

type AuditLogRepository struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepository(pool *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{pool: pool}
}

func (r *AuditLogRepository) Insert(ctx context.Context, entry *entity.AuditLog) error {
	return insertAuditLog(ctx, r.pool, entry)
}

func insertAuditLog(ctx context.Context, db DBTX, e *entity.AuditLog) error {
	err := db.QueryRow(ctx, `
		INSERT INTO audit_logs (action, ip_address, user_agent, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, e.Action, e.IPAddress, e.UserAgent, e.UserID).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", mapError(err))
	}
	return nil
}

var _ repository.AuditLogRepository = (*AuditLogRepository)(nil)
