package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignSubmitted CampaignStatus = "submitted"
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
	CampaignStopped   CampaignStatus = "stopped"
)

// Campaign is a promotional campaign funded by an advertiser.
// Monetary values are expressed in the platform currency (XAF).
type Campaign struct {
	ID                  string
	AdvertiserID        string
	Title               string
	Description         string
	MediaURL            string
	TargetLink          string
	LocationType        string // city or region
	TargetLocation      []string
	Budget              decimal.Decimal
	CPV                 decimal.Decimal // charged to the advertiser
	CPVAmbassador       decimal.Decimal // paid to the ambassador
	ExpectedViews       int64
	NumberViewsAssigned int64
	CampaignTest        bool
	Status              CampaignStatus
	StartDate           *time.Time
	EndDate             *time.Time
	CompletedAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RemainingViews returns the view capacity that has not been allocated yet.
func (c Campaign) RemainingViews() int64 {
	remaining := c.ExpectedViews - c.NumberViewsAssigned
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TargetsLocation reports whether the ambassador's city or region is one of
// the campaign target locations. Comparison ignores case and surrounding
// whitespace.
func (c Campaign) TargetsLocation(city, region string) bool {
	city = strings.TrimSpace(city)
	region = strings.TrimSpace(region)
	for _, loc := range c.TargetLocation {
		loc = strings.TrimSpace(loc)
		if loc == "" {
			continue
		}
		if (city != "" && strings.EqualFold(loc, city)) || (region != "" && strings.EqualFold(loc, region)) {
			return true
		}
	}
	return false
}

// Ended reports whether the campaign end date is not in the future. A
// campaign without end date never ends on its own.
func (c Campaign) Ended(now time.Time) bool {
	return c.EndDate != nil && !c.EndDate.After(now)
}

// ExpectedViews derives the purchasable view count: floor(budget / cpv).
func ExpectedViews(budget, cpv decimal.Decimal) int64 {
	if !cpv.IsPositive() || !budget.IsPositive() {
		return 0
	}
	return budget.Div(cpv).Floor().IntPart()
}
