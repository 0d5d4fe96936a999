package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Seed accounts. The identity service issues tokens for these subjects in
// local setups.
const (
	SeedAdminID      = "seed-admin"
	SeedAdvertiserID = "seed-advertiser"
	SeedAmbassadorID = "seed-ambassador"
	SeedTrialID      = "seed-trial-campaign"
)

// Seed inserts demo accounts and an active trial campaign. Rows that already
// exist are left untouched.
func Seed(ctx context.Context, db *pgxpool.Pool, cpv, cpvAmbassador decimal.Decimal) error {
	return pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		users := []struct {
			id, name, role, city string
		}{
			{SeedAdminID, "Admin", "admin", ""},
			{SeedAdvertiserID, "Demo Advertiser", "advertiser", "Douala"},
			{SeedAmbassadorID, "Demo Ambassador", "ambassador", "Douala"},
		}
		for _, u := range users {
			_, err := tx.Exec(ctx, `INSERT INTO users (id, name, role, city, region)
VALUES ($1, $2, $3, $4, 'Littoral') ON CONFLICT (id) DO NOTHING`, u.id, u.name, u.role, u.city)
			if err != nil {
				return err
			}
		}

		budget := decimal.NewFromInt(14000)
		expected := budget.Div(cpv).Floor().IntPart()
		start := time.Now().UTC()
		_, err := tx.Exec(ctx, `INSERT INTO campaigns
    (id, advertiser_id, title, description, target_link, location_type, target_location,
     budget, cpv, cpv_ambassador, expected_views, campaign_test, status, start_date)
VALUES ($1, $2, 'Trial campaign', 'Practice run for new ambassadors', 'https://example.com',
        'city', $3, $4, $5, $6, $7, true, 'active', $8)
ON CONFLICT (id) DO NOTHING`,
			SeedTrialID, SeedAdvertiserID, []string{"Douala", "Yaounde"},
			budget, cpv, cpvAmbassador, expected, start)
		return err
	})
}
