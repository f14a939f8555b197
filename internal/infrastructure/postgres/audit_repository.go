package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/user-directory/internal/domain/entity"
	"github.com/oksasatya/user-directory/internal/domain/repository"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, l *entity.AuditLog) error {
	meta := []byte("{}")
	if len(l.Metadata) > 0 {
		b, err := json.Marshal(l.Metadata)
		if err != nil {
			return err
		}
		meta = b
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO user_audit_logs (user_id, email, action, ip, user_agent, metadata)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
		RETURNING id, created_at
	`, l.UserID, l.Email, l.Action, l.IP, l.UserAgent, meta)
	return row.Scan(&l.ID, &l.CreatedAt)
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
