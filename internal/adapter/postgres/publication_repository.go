package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"echopub/internal/core/domain"
	"echopub/internal/core/port"
)

const publicationColumns = `id, ambassador_id, campaign_id, stage, screenshot_url, screenshot_url2,
    screenshot_path, screenshot_path2, views_count, ocr_views1, ocr_views2, hash_distance,
    proofs_consistent, clicks_count, amount_earned, target_views, comment, proof1_at,
    submitted_at, validated_at, validated_by, created_at, updated_at`

// PublicationRepository implements port.PublicationRepository using pgxpool.
// Stage changes lock the publication row; capacity reservation additionally
// locks the campaign row.
type PublicationRepository struct {
	pool *pgxpool.Pool
}

func NewPublicationRepository(pool *pgxpool.Pool) *PublicationRepository {
	return &PublicationRepository{pool: pool}
}

func scanPublication(row scanner) (domain.Publication, error) {
	var p domain.Publication
	err := row.Scan(
		&p.ID,
		&p.AmbassadorID,
		&p.CampaignID,
		&p.Stage,
		&p.ScreenshotURL,
		&p.ScreenshotURL2,
		&p.ScreenshotPath,
		&p.ScreenshotPath2,
		&p.ViewsCount,
		&p.OCRViews1,
		&p.OCRViews2,
		&p.HashDistance,
		&p.ProofsConsistent,
		&p.ClicksCount,
		&p.AmountEarned,
		&p.TargetViews,
		&p.Comment,
		&p.Proof1At,
		&p.SubmittedAt,
		&p.ValidatedAt,
		&p.ValidatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *PublicationRepository) CreatePublication(ctx context.Context, p *domain.Publication) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO publications
    (id, ambassador_id, campaign_id, stage, amount_earned, target_views, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.AmbassadorID, p.CampaignID, p.Stage, p.AmountEarned, p.TargetViews, p.CreatedAt, p.UpdatedAt)
	if hasCode(err, uniqueViolation) {
		return port.ErrAlreadyAttributed
	}
	return err
}

func (r *PublicationRepository) GetPublication(ctx context.Context, id string) (*domain.Publication, error) {
	p, err := scanPublication(r.pool.QueryRow(ctx, `SELECT `+publicationColumns+` FROM publications WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrPublicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PublicationRepository) FindActivePublication(ctx context.Context, ambassadorID, campaignID string) (*domain.Publication, error) {
	p, err := scanPublication(r.pool.QueryRow(ctx, `SELECT `+publicationColumns+` FROM publications
WHERE ambassador_id = $1 AND campaign_id = $2 AND stage NOT IN ('validated', 'rejected')`, ambassadorID, campaignID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PublicationRepository) ListAmbassadorPublications(ctx context.Context, ambassadorID string) ([]domain.Publication, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+publicationColumns+` FROM publications
WHERE ambassador_id = $1 ORDER BY created_at DESC, id`, ambassadorID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Publication, error) {
		return scanPublication(row)
	})
}

// lockPublication reads the stage guard columns under FOR UPDATE.
func lockPublication(ctx context.Context, tx pgx.Tx, id string) (stage domain.Stage, proof1 string, campaignID string, err error) {
	err = tx.QueryRow(ctx, `SELECT stage, screenshot_url, campaign_id FROM publications WHERE id = $1 FOR UPDATE`, id).
		Scan(&stage, &proof1, &campaignID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = port.ErrPublicationNotFound
	}
	return stage, proof1, campaignID, err
}

func (r *PublicationRepository) AttachProof1(ctx context.Context, p *domain.Publication, allocate port.Allocator) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		stage, proof1, campaignID, err := lockPublication(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if proof1 != "" {
			return port.ErrProofAlreadyAttached
		}
		if stage != domain.StageNoProof {
			return port.ErrInvalidPublicationState
		}
		// lock campaign
		var expected, assigned int64
		err = tx.QueryRow(ctx, `SELECT expected_views, number_views_assigned FROM campaigns WHERE id = $1 FOR UPDATE`, campaignID).
			Scan(&expected, &assigned)
		if errors.Is(err, pgx.ErrNoRows) {
			return port.ErrCampaignNotFound
		}
		if err != nil {
			return err
		}
		remaining := expected - assigned
		if remaining <= 0 {
			return port.ErrCapacityExhausted
		}
		target := allocate(remaining)
		if target <= 0 || target > remaining {
			return port.ErrCapacityExhausted
		}
		_, err = tx.Exec(ctx, `UPDATE campaigns SET number_views_assigned = number_views_assigned + $2, updated_at = $3 WHERE id = $1`,
			campaignID, target, p.UpdatedAt)
		if hasCode(err, checkViolation) {
			return port.ErrCapacityExhausted
		}
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE publications
SET stage = $2, screenshot_url = $3, screenshot_path = $4, proof1_at = $5, target_views = $6, updated_at = $7
WHERE id = $1`, p.ID, p.Stage, p.ScreenshotURL, p.ScreenshotPath, p.Proof1At, target, p.UpdatedAt)
		if err != nil {
			return err
		}
		p.TargetViews = target
		return nil
	})
}

func (r *PublicationRepository) AttachProof2(ctx context.Context, p *domain.Publication) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		stage, proof1, _, err := lockPublication(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if proof1 == "" {
			return port.ErrProofMissing
		}
		if stage != domain.StageProof1Attached {
			return port.ErrInvalidPublicationState
		}
		_, err = tx.Exec(ctx, `UPDATE publications
SET stage = $2, screenshot_url2 = $3, screenshot_path2 = $4, submitted_at = $5,
    ocr_views1 = $6, ocr_views2 = $7, hash_distance = $8, proofs_consistent = $9, updated_at = $10
WHERE id = $1`, p.ID, p.Stage, p.ScreenshotURL2, p.ScreenshotPath2, p.SubmittedAt,
			p.OCRViews1, p.OCRViews2, p.HashDistance, p.ProofsConsistent, p.UpdatedAt)
		return err
	})
}

// SettleValidation marks the publication validated, credits the ambassador
// and writes the ledger row in one transaction.
func (r *PublicationRepository) SettleValidation(ctx context.Context, p *domain.Publication, ledger *domain.Transaction) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		stage, _, _, err := lockPublication(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		switch stage {
		case domain.StageValidated:
			return port.ErrAlreadyValidated
		case domain.StageProof2Attached:
		default:
			return port.ErrInvalidPublicationState
		}
		_, err = tx.Exec(ctx, `UPDATE publications
SET stage = $2, views_count = $3, amount_earned = $4, validated_at = $5, validated_by = $6, updated_at = $7
WHERE id = $1`, p.ID, p.Stage, p.ViewsCount, p.AmountEarned, p.ValidatedAt, p.ValidatedBy, p.UpdatedAt)
		if err != nil {
			return err
		}
		err = tx.QueryRow(ctx, `UPDATE users SET balance = balance + $2, updated_at = $3 WHERE id = $1 RETURNING balance`,
			p.AmbassadorID, p.AmountEarned, p.UpdatedAt).Scan(&balance)
		if errors.Is(err, pgx.ErrNoRows) {
			return port.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if err = insertTransaction(ctx, tx, ledger); err != nil {
			return fmt.Errorf("insert ledger row: %w", err)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (r *PublicationRepository) RejectPublication(ctx context.Context, p *domain.Publication) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		stage, _, _, err := lockPublication(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		switch stage {
		case domain.StageValidated:
			return port.ErrAlreadyValidated
		case domain.StageRejected:
			return port.ErrInvalidPublicationState
		}
		_, err = tx.Exec(ctx, `UPDATE publications
SET stage = $2, comment = $3, validated_at = $4, validated_by = $5, updated_at = $6
WHERE id = $1`, p.ID, p.Stage, p.Comment, p.ValidatedAt, p.ValidatedBy, p.UpdatedAt)
		return err
	})
}

func (r *PublicationRepository) ValidatedViews(ctx context.Context, ambassadorID string) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT views_count FROM publications
WHERE ambassador_id = $1 AND stage = 'validated' AND views_count IS NOT NULL`, ambassadorID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// RecordClick inserts the event and bumps the counter; it never touches
// balances.
func (r *PublicationRepository) RecordClick(ctx context.Context, click domain.ClickEvent) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE publications SET clicks_count = clicks_count + 1 WHERE id = $1`, click.PublicationID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return port.ErrPublicationNotFound
		}
		_, err = tx.Exec(ctx, `INSERT INTO click_events (id, publication_id, ip, user_agent, referer, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`, click.ID, click.PublicationID, click.IP, click.UserAgent, click.Referer, click.CreatedAt)
		return err
	})
}
