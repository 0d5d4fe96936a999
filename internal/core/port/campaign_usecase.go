package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"echopub/internal/core/domain"
)

// CampaignUseCase owns the campaign lifecycle.
type CampaignUseCase interface {
	// Create stores a draft campaign priced with the platform rates.
	Create(ctx context.Context, p domain.Principal, req NewCampaign) (*domain.Campaign, error)
	Get(ctx context.Context, id string) (*domain.Campaign, error)
	// ChangeStatus applies one edge of the transition table if the principal
	// is allowed to take it.
	ChangeStatus(ctx context.Context, p domain.Principal, campaignID string, to domain.CampaignStatus) (*domain.Campaign, error)
	// CompleteExpired completes active or paused campaigns past their end
	// date and returns how many were completed.
	CompleteExpired(ctx context.Context) (int, error)
}

// NewCampaign holds the advertiser-supplied campaign fields.
type NewCampaign struct {
	Title          string
	Description    string
	MediaURL       string
	TargetLink     string
	LocationType   string
	TargetLocation []string
	Budget         decimal.Decimal
	StartDate      *time.Time
	EndDate        *time.Time
}
