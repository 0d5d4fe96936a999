package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"echopub/internal/core/domain"
	"echopub/internal/core/port"
)

// Pricing holds the platform rates and workflow constants.
type Pricing struct {
	// CPV is charged to the advertiser per view.
	CPV decimal.Decimal
	// CPVAmbassador is paid to the ambassador per view.
	CPVAmbassador decimal.Decimal
	// OverDeliveryFactor discounts the payout when reported views exceed the
	// frozen target.
	OverDeliveryFactor decimal.Decimal
	// ProofWindow bounds the time between publication creation and the
	// second proof.
	ProofWindow time.Duration
	// BaselineTargetViews is offered to ambassadors without history and on
	// the trial campaign.
	BaselineTargetViews int64
	// HashDistanceThreshold is the largest perceptual hash distance at which
	// two proofs are considered to show the same post.
	HashDistanceThreshold int
	Currency              string
}

// DefaultPricing returns the platform defaults.
func DefaultPricing() Pricing {
	return Pricing{
		CPV:                   decimal.NewFromInt(14),
		CPVAmbassador:         decimal.NewFromInt(10),
		OverDeliveryFactor:    decimal.RequireFromString("0.8"),
		ProofWindow:           24 * time.Hour,
		BaselineTargetViews:   100,
		HashDistanceThreshold: 10,
		Currency:              "XAF",
	}
}

// Earnings computes allocations and payouts and maintains the ambassador
// view average.
type Earnings struct {
	pricing      Pricing
	publications port.PublicationRepository
	users        port.UserRepository
	logger       *slog.Logger
}

func NewEarnings(pricing Pricing, publications port.PublicationRepository, users port.UserRepository, logger *slog.Logger) *Earnings {
	return &Earnings{pricing: pricing, publications: publications, users: users, logger: logger}
}

// AmountEarned returns the payout for reportedViews. Views up to the frozen
// target are paid at the full ambassador rate; above it, the target is paid
// at the discounted rate. Trial campaigns pay nothing.
func (e *Earnings) AmountEarned(c domain.Campaign, p domain.Publication, reportedViews int64) decimal.Decimal {
	if c.CampaignTest || reportedViews <= 0 {
		return decimal.Zero
	}
	if reportedViews > p.TargetViews {
		return decimal.NewFromInt(p.TargetViews).
			Mul(c.CPVAmbassador).
			Mul(e.pricing.OverDeliveryFactor)
	}
	return decimal.NewFromInt(reportedViews).Mul(c.CPVAmbassador)
}

// Offer is the allocation an ambassador asks for before capacity is taken
// into account.
func (e *Earnings) Offer(c domain.Campaign, viewAverage int64) int64 {
	if c.CampaignTest || viewAverage <= 0 {
		return e.pricing.BaselineTargetViews
	}
	return viewAverage
}

// TargetViews caps the offer by the remaining campaign capacity.
func (e *Earnings) TargetViews(offer, remaining int64) int64 {
	if remaining <= 0 || offer <= 0 {
		return 0
	}
	return min(offer, remaining)
}

// ViewAverage is the mean of views rounded half up, 0 for no views.
func ViewAverage(views []int64) int64 {
	if len(views) == 0 {
		return 0
	}
	var sum int64
	for _, v := range views {
		sum += v
	}
	n := int64(len(views))
	return (sum + n/2) / n
}

// RecomputeViewAverage recomputes the ambassador's average over validated
// publications and persists it.
func (e *Earnings) RecomputeViewAverage(ctx context.Context, ambassadorID string) (int64, error) {
	views, err := e.publications.ValidatedViews(ctx, ambassadorID)
	if err != nil {
		return 0, fmt.Errorf("load validated views: %w", err)
	}
	avg := ViewAverage(views)
	if err = e.users.SetViewAverage(ctx, ambassadorID, avg); err != nil {
		return 0, fmt.Errorf("set view average: %w", err)
	}
	e.logger.Debug("view average recomputed",
		slog.String("ambassador_id", ambassadorID),
		slog.Int64("view_average", avg),
		slog.Int("validated", len(views)))
	return avg, nil
}
