package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"echopub/internal/core/domain"
)

// ActivityRepository stores audit records. It is used as a sink by the
// activity dispatcher and never by the use cases directly.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) SaveActivity(ctx context.Context, a domain.Activity) error {
	metadata := a.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO activities
    (id, type, title, user_id, campaign_id, transaction_id, publication_id, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.Type, a.Title, nullable(a.UserID), nullable(a.CampaignID), nullable(a.TransactionID),
		nullable(a.PublicationID), metadata, a.CreatedAt)
	return err
}
