package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"echopub/internal/core/domain"
	"echopub/internal/core/port"
)

const campaignColumns = `id, advertiser_id, title, description, media_url, target_link, location_type,
    target_location, budget, cpv, cpv_ambassador, expected_views, number_views_assigned,
    campaign_test, status, start_date, end_date, completed_at, created_at, updated_at`

// CampaignRepository implements port.CampaignRepository using pgxpool.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

func scanCampaign(row scanner) (domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(
		&c.ID,
		&c.AdvertiserID,
		&c.Title,
		&c.Description,
		&c.MediaURL,
		&c.TargetLink,
		&c.LocationType,
		&c.TargetLocation,
		&c.Budget,
		&c.CPV,
		&c.CPVAmbassador,
		&c.ExpectedViews,
		&c.NumberViewsAssigned,
		&c.CampaignTest,
		&c.Status,
		&c.StartDate,
		&c.EndDate,
		&c.CompletedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (r *CampaignRepository) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO campaigns (`+campaignColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		c.ID, c.AdvertiserID, c.Title, c.Description, c.MediaURL, c.TargetLink, c.LocationType,
		c.TargetLocation, c.Budget, c.CPV, c.CPVAmbassador, c.ExpectedViews, c.NumberViewsAssigned,
		c.CampaignTest, c.Status, c.StartDate, c.EndDate, c.CompletedAt, c.CreatedAt, c.UpdatedAt)
	if hasCode(err, uniqueViolation) {
		return fmt.Errorf("%w: campaign %s exists", port.ErrInvalidInput, c.ID)
	}
	return err
}

func (r *CampaignRepository) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCampaignStatus is a compare-and-set on the status column.
func (r *CampaignRepository) UpdateCampaignStatus(ctx context.Context, id string, from, to domain.CampaignStatus, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE campaigns
SET status = $3,
    updated_at = $4,
    completed_at = CASE WHEN $3 = 'completed' THEN $4 ELSE completed_at END
WHERE id = $1 AND status = $2`, id, from, to, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err = r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM campaigns WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return port.ErrCampaignNotFound
	}
	return port.ErrInvalidTransition
}

func (r *CampaignRepository) ListActiveCampaigns(ctx context.Context, now time.Time) ([]domain.Campaign, error) {
	return r.list(ctx, `SELECT `+campaignColumns+` FROM campaigns
WHERE status = 'active' AND (end_date IS NULL OR end_date > $1)
ORDER BY created_at DESC, id`, now)
}

func (r *CampaignRepository) FindTrialCampaign(ctx context.Context) (*domain.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns
WHERE campaign_test ORDER BY created_at, id LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) ListExpiredCampaigns(ctx context.Context, now time.Time, limit int) ([]domain.Campaign, error) {
	return r.list(ctx, `SELECT `+campaignColumns+` FROM campaigns
WHERE status IN ('active', 'paused') AND NOT campaign_test
  AND end_date IS NOT NULL AND end_date <= $1
ORDER BY end_date, id
LIMIT $2`, now, limit)
}

func (r *CampaignRepository) list(ctx context.Context, query string, args ...any) ([]domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		return scanCampaign(row)
	})
}
