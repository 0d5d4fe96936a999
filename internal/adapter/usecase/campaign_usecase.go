package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"echopub/internal/core/domain"
	"echopub/internal/core/port"
	"echopub/internal/metrics"
)

// CampaignUseCase implements port.CampaignUseCase.
type CampaignUseCase struct {
	campaigns  port.CampaignRepository
	activity   port.ActivityLogger
	clock      port.Clock
	pricing    Pricing
	sweepBatch int
	logger     *slog.Logger
}

func NewCampaignUseCase(
	campaigns port.CampaignRepository,
	activity port.ActivityLogger,
	clock port.Clock,
	pricing Pricing,
	sweepBatch int,
	logger *slog.Logger,
) *CampaignUseCase {
	if sweepBatch <= 0 {
		sweepBatch = 100
	}
	return &CampaignUseCase{
		campaigns:  campaigns,
		activity:   activity,
		clock:      clock,
		pricing:    pricing,
		sweepBatch: sweepBatch,
		logger:     logger,
	}
}

// Create stores a draft campaign. Rates are copied from the platform pricing
// so later pricing changes do not affect funded campaigns.
func (u *CampaignUseCase) Create(ctx context.Context, p domain.Principal, req port.NewCampaign) (*domain.Campaign, error) {
	if p.Role != domain.RoleAdvertiser {
		return nil, port.ErrForbidden
	}
	if err := validateNewCampaign(req); err != nil {
		return nil, err
	}
	now := u.clock.Now()
	locations := make([]string, 0, len(req.TargetLocation))
	for _, loc := range req.TargetLocation {
		if loc = strings.TrimSpace(loc); loc != "" {
			locations = append(locations, loc)
		}
	}
	c := &domain.Campaign{
		ID:             uuid.NewString(),
		AdvertiserID:   p.ID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		MediaURL:       req.MediaURL,
		TargetLink:     req.TargetLink,
		LocationType:   req.LocationType,
		TargetLocation: locations,
		Budget:         req.Budget,
		CPV:            u.pricing.CPV,
		CPVAmbassador:  u.pricing.CPVAmbassador,
		ExpectedViews:  domain.ExpectedViews(req.Budget, u.pricing.CPV),
		Status:         domain.CampaignDraft,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := u.campaigns.CreateCampaign(ctx, c); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	u.activity.Log(ctx, domain.Activity{
		Type:       domain.ActivityCampaignCreated,
		Title:      "Campaign created",
		UserID:     p.ID,
		CampaignID: c.ID,
		Metadata:   map[string]any{"expected_views": c.ExpectedViews, "budget": c.Budget.String()},
	})
	return c, nil
}

func validateNewCampaign(req port.NewCampaign) error {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return fmt.Errorf("%w: title is required", port.ErrInvalidInput)
	case strings.TrimSpace(req.TargetLink) == "":
		return fmt.Errorf("%w: target link is required", port.ErrInvalidInput)
	case !req.Budget.IsPositive():
		return fmt.Errorf("%w: budget must be positive", port.ErrInvalidInput)
	case !req.Budget.IsInteger():
		return fmt.Errorf("%w: budget must be a whole amount", port.ErrInvalidInput)
	case req.StartDate != nil && req.EndDate != nil && !req.EndDate.After(*req.StartDate):
		return fmt.Errorf("%w: end date must follow start date", port.ErrInvalidInput)
	}
	for _, loc := range req.TargetLocation {
		if strings.TrimSpace(loc) != "" {
			return nil
		}
	}
	return fmt.Errorf("%w: at least one target location is required", port.ErrInvalidInput)
}

func (u *CampaignUseCase) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	return u.campaigns.GetCampaign(ctx, id)
}

// ChangeStatus applies one guarded edge of the transition table. The update
// is conditional on the status read, so two racing transitions cannot both
// win.
func (u *CampaignUseCase) ChangeStatus(ctx context.Context, p domain.Principal, campaignID string, to domain.CampaignStatus) (*domain.Campaign, error) {
	c, err := u.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !domain.TransitionAllowed(c.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", port.ErrInvalidTransition, c.Status, to)
	}
	if !c.MayTransition(p, to) {
		return nil, port.ErrForbidden
	}
	now := u.clock.Now()
	from := c.Status
	if err = u.campaigns.UpdateCampaignStatus(ctx, c.ID, from, to, now); err != nil {
		return nil, err
	}
	c.Status = to
	c.UpdatedAt = now
	if to == domain.CampaignCompleted {
		c.CompletedAt = &now
	}
	u.logger.Info("campaign status changed",
		slog.String("event", "campaign_status_changed"),
		slog.String("campaign_id", c.ID),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.String("by", string(p.Role)))
	if a, ok := statusActivity(from, to); ok {
		a.UserID = p.ID
		a.CampaignID = c.ID
		a.Metadata = map[string]any{"from": string(from), "to": string(to)}
		u.activity.Log(ctx, a)
	}
	return c, nil
}

func statusActivity(from, to domain.CampaignStatus) (domain.Activity, bool) {
	switch to {
	case domain.CampaignSubmitted:
		return domain.Activity{Type: domain.ActivityCampaignSubmitted, Title: "Campaign submitted"}, true
	case domain.CampaignActive:
		if from == domain.CampaignPaused {
			return domain.Activity{Type: domain.ActivityCampaignApproved, Title: "Campaign resumed"}, true
		}
		return domain.Activity{Type: domain.ActivityCampaignApproved, Title: "Campaign approved"}, true
	case domain.CampaignPaused:
		return domain.Activity{Type: domain.ActivityCampaignPaused, Title: "Campaign paused"}, true
	case domain.CampaignCompleted:
		return domain.Activity{Type: domain.ActivityCampaignCompleted, Title: "Campaign completed"}, true
	case domain.CampaignStopped:
		return domain.Activity{Type: domain.ActivityCampaignStopped, Title: "Campaign stopped"}, true
	}
	return domain.Activity{}, false
}

// CompleteExpired completes one batch of campaigns past their end date. A
// campaign that cannot be completed is logged and skipped; it is picked up
// again by the next run.
func (u *CampaignUseCase) CompleteExpired(ctx context.Context) (int, error) {
	expired, err := u.campaigns.ListExpiredCampaigns(ctx, u.clock.Now(), u.sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("list expired campaigns: %w", err)
	}
	completed := 0
	for _, c := range expired {
		if ctx.Err() != nil {
			return completed, ctx.Err()
		}
		if _, err = u.ChangeStatus(ctx, domain.SystemPrincipal, c.ID, domain.CampaignCompleted); err != nil {
			level := slog.LevelError
			if errors.Is(err, port.ErrInvalidTransition) {
				// status moved since the listing
				level = slog.LevelWarn
			}
			u.logger.Log(ctx, level, "auto-complete failed",
				slog.String("event", "campaign_sweep"),
				slog.String("campaign_id", c.ID),
				slog.Any("error", err))
			continue
		}
		metrics.CampaignsCompleted.Inc()
		completed++
	}
	return completed, nil
}
