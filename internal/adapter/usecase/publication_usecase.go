package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"echopub/internal/core/domain"
	"echopub/internal/core/port"
	"echopub/internal/metrics"
)

// PublicationUseCase implements port.PublicationUseCase.
type PublicationUseCase struct {
	campaigns    port.CampaignRepository
	users        port.UserRepository
	publications port.PublicationRepository
	verifier     port.ProofVerifier
	earnings     *Earnings
	activity     port.ActivityLogger
	clock        port.Clock
	pricing      Pricing
	logger       *slog.Logger
}

func NewPublicationUseCase(
	repos port.Repositories,
	verifier port.ProofVerifier,
	earnings *Earnings,
	activity port.ActivityLogger,
	clock port.Clock,
	pricing Pricing,
	logger *slog.Logger,
) *PublicationUseCase {
	return &PublicationUseCase{
		campaigns:    repos.Campaigns,
		users:        repos.Users,
		publications: repos.Publications,
		verifier:     verifier,
		earnings:     earnings,
		activity:     activity,
		clock:        clock,
		pricing:      pricing,
		logger:       logger,
	}
}

// Create attributes the ambassador to the campaign. Guards are checked in a
// fixed order so the first failing one determines the reason.
func (u *PublicationUseCase) Create(ctx context.Context, p domain.Principal, campaignID string) (*domain.Publication, error) {
	if p.Role != domain.RoleAmbassador {
		return nil, port.ErrForbidden
	}
	user, err := u.users.GetUser(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	c, err := u.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	now := u.clock.Now()
	if err = u.checkJoinable(c, user, now); err != nil {
		return nil, err
	}
	existing, err := u.publications.FindActivePublication(ctx, p.ID, c.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, port.ErrAlreadyAttributed
	}
	pub := &domain.Publication{
		ID:           uuid.NewString(),
		AmbassadorID: p.ID,
		CampaignID:   c.ID,
		Stage:        domain.StageNoProof,
		AmountEarned: decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err = u.publications.CreatePublication(ctx, pub); err != nil {
		return nil, err
	}
	metrics.Publications.WithLabelValues("created").Inc()
	u.logger.Info("publication created",
		slog.String("publication_id", pub.ID),
		slog.String("campaign_id", c.ID),
		slog.String("ambassador_id", p.ID))
	return pub, nil
}

func (u *PublicationUseCase) checkJoinable(c *domain.Campaign, user *domain.User, now time.Time) error {
	if c.Status != domain.CampaignActive {
		return port.ErrCampaignNotActive
	}
	if c.Ended(now) {
		return port.ErrCampaignEnded
	}
	if c.RemainingViews() <= 0 {
		return port.ErrCapacityExhausted
	}
	// the trial campaign is open to every ambassador
	if !c.CampaignTest && !c.TargetsLocation(user.City, user.Region) {
		return port.ErrOutsideTargetZone
	}
	return nil
}

func (u *PublicationUseCase) ownedPublication(ctx context.Context, p domain.Principal, id string) (*domain.Publication, error) {
	if p.Role != domain.RoleAmbassador {
		return nil, port.ErrForbidden
	}
	pub, err := u.publications.GetPublication(ctx, id)
	if err != nil {
		return nil, err
	}
	if pub.AmbassadorID != p.ID {
		return nil, port.ErrForbidden
	}
	return pub, nil
}

// verify runs the verifier and applies the soft-pass policy: a verifier
// that cannot run never blocks a proof.
func (u *PublicationUseCase) verify(ctx context.Context, pub *domain.Publication, path string) (domain.ConformityReport, error) {
	report, err := u.verifier.Verify(ctx, path)
	if err != nil {
		if !errors.Is(err, port.ErrVerificationUnavailable) {
			return report, err
		}
		u.logger.Warn("proof verification unavailable, accepting proof",
			slog.String("publication_id", pub.ID),
			slog.String("path", path),
			slog.Any("error", err))
		return domain.ConformityReport{Unavailable: true}, nil
	}
	return report, nil
}

func validUpload(proof port.ProofUpload) error {
	if proof.Path == "" || proof.URL == "" {
		return fmt.Errorf("%w: proof path and url are required", port.ErrInvalidInput)
	}
	return nil
}

// AttachProof1 vets the first proof and reserves capacity for it. The
// target is frozen from the ambassador's current average and whatever
// capacity is left at that instant.
func (u *PublicationUseCase) AttachProof1(ctx context.Context, p domain.Principal, publicationID string, proof port.ProofUpload) (*port.ProofOutcome, error) {
	if err := validUpload(proof); err != nil {
		return nil, err
	}
	pub, err := u.ownedPublication(ctx, p, publicationID)
	if err != nil {
		return nil, err
	}
	if pub.ScreenshotURL != "" {
		return nil, port.ErrProofAlreadyAttached
	}
	if pub.Stage != domain.StageNoProof {
		return nil, port.ErrInvalidPublicationState
	}
	c, err := u.campaigns.GetCampaign(ctx, pub.CampaignID)
	if err != nil {
		return nil, err
	}
	now := u.clock.Now()
	if c.Status != domain.CampaignActive {
		return nil, port.ErrCampaignNotActive
	}
	if c.Ended(now) {
		return nil, port.ErrCampaignEnded
	}

	report, err := u.verify(ctx, pub, proof.Path)
	if err != nil {
		return nil, err
	}
	if !report.Unavailable && !report.Affirmative() {
		return nil, port.ErrProofNotConforming
	}

	user, err := u.users.GetUser(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	offer := u.earnings.Offer(*c, user.ViewAverage)

	pub.ScreenshotURL = proof.URL
	pub.ScreenshotPath = proof.Path
	pub.Stage = domain.StageProof1Attached
	pub.Proof1At = &now
	pub.UpdatedAt = now
	err = u.publications.AttachProof1(ctx, pub, func(remaining int64) int64 {
		return u.earnings.TargetViews(offer, remaining)
	})
	if err != nil {
		return nil, err
	}
	metrics.Publications.WithLabelValues("proof1_attached").Inc()
	u.logger.Info("first proof attached",
		slog.String("publication_id", pub.ID),
		slog.Int64("target_views", pub.TargetViews),
		slog.Bool("soft_pass", report.Unavailable))
	return &port.ProofOutcome{Publication: pub, Report: report}, nil
}

// AttachProof2 stores the second proof within the proof window. The
// verifier result and the proof comparison are advisory for the admin.
func (u *PublicationUseCase) AttachProof2(ctx context.Context, p domain.Principal, publicationID string, proof port.ProofUpload) (*port.ProofOutcome, error) {
	if err := validUpload(proof); err != nil {
		return nil, err
	}
	pub, err := u.ownedPublication(ctx, p, publicationID)
	if err != nil {
		return nil, err
	}
	if pub.ScreenshotURL == "" {
		return nil, port.ErrProofMissing
	}
	if pub.ScreenshotURL2 != "" {
		return nil, port.ErrProofAlreadyAttached
	}
	if pub.Stage != domain.StageProof1Attached {
		return nil, port.ErrInvalidPublicationState
	}
	now := u.clock.Now()
	if now.Sub(pub.CreatedAt) > u.pricing.ProofWindow {
		return nil, port.ErrProofWindowExpired
	}

	report, err := u.verify(ctx, pub, proof.Path)
	if err != nil {
		return nil, err
	}
	if !report.Unavailable && !report.Affirmative() {
		u.logger.Info("second proof matched no heuristic",
			slog.String("publication_id", pub.ID))
	}

	var cmp *domain.ProofComparison
	if pub.ScreenshotPath != "" {
		res, cerr := u.verifier.Compare(ctx, pub.ScreenshotPath, proof.Path)
		if cerr != nil {
			u.logger.Warn("proof comparison unavailable",
				slog.String("publication_id", pub.ID),
				slog.Any("error", cerr))
		} else {
			cmp = &res
			consistent := res.Consistent(u.pricing.HashDistanceThreshold)
			distance := res.HashDistance
			pub.HashDistance = &distance
			pub.OCRViews1 = res.Views1
			pub.OCRViews2 = res.Views2
			pub.ProofsConsistent = &consistent
		}
	}

	pub.ScreenshotURL2 = proof.URL
	pub.ScreenshotPath2 = proof.Path
	pub.Stage = domain.StageProof2Attached
	pub.SubmittedAt = &now
	pub.UpdatedAt = now
	if err = u.publications.AttachProof2(ctx, pub); err != nil {
		return nil, err
	}
	metrics.Publications.WithLabelValues("proof2_attached").Inc()
	u.logger.Info("second proof attached",
		slog.String("publication_id", pub.ID),
		slog.Bool("soft_pass", report.Unavailable))
	return &port.ProofOutcome{Publication: pub, Report: report, Comparison: cmp}, nil
}

// Validate settles the publication. The publication update, the balance
// credit and the ledger row are one storage unit; the view average is
// recomputed afterwards and its failure does not undo the payout.
func (u *PublicationUseCase) Validate(ctx context.Context, p domain.Principal, publicationID string, views *int64) (*domain.Publication, error) {
	if p.Role != domain.RoleAdmin {
		return nil, port.ErrForbidden
	}
	if views == nil {
		return nil, port.ErrViewsRequired
	}
	if *views < 0 {
		return nil, fmt.Errorf("%w: views count must not be negative", port.ErrInvalidInput)
	}
	pub, err := u.publications.GetPublication(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	if pub.Stage == domain.StageValidated {
		return nil, port.ErrAlreadyValidated
	}
	if pub.Stage != domain.StageProof2Attached || !pub.HasBothProofs() {
		return nil, port.ErrInvalidPublicationState
	}
	c, err := u.campaigns.GetCampaign(ctx, pub.CampaignID)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()
	reported := *views
	pub.ViewsCount = &reported
	pub.AmountEarned = u.earnings.AmountEarned(*c, *pub, reported)
	pub.Stage = domain.StageValidated
	pub.ValidatedAt = &now
	pub.ValidatedBy = p.ID
	pub.UpdatedAt = now

	ledger := &domain.Transaction{
		ID:            uuid.NewString(),
		Reference:     newReference(paymentPrefix, now),
		UserID:        pub.AmbassadorID,
		Type:          domain.TransactionPayment,
		Amount:        pub.AmountEarned,
		Currency:      u.pricing.Currency,
		Status:        domain.TransactionConfirmed,
		Method:        domain.MethodPlatform,
		CampaignID:    pub.CampaignID,
		AmbassadorID:  pub.AmbassadorID,
		PublicationID: pub.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	balance, err := u.publications.SettleValidation(ctx, pub, ledger)
	if err != nil {
		return nil, err
	}
	metrics.Publications.WithLabelValues("validated").Inc()
	metrics.Transactions.WithLabelValues(string(ledger.Type), string(ledger.Status)).Inc()
	u.logger.Info("publication validated",
		slog.String("publication_id", pub.ID),
		slog.String("ambassador_id", pub.AmbassadorID),
		slog.Int64("views", reported),
		slog.Int64("target_views", pub.TargetViews),
		slog.String("amount", pub.AmountEarned.String()),
		slog.String("balance", balance.String()))

	if _, err = u.earnings.RecomputeViewAverage(ctx, pub.AmbassadorID); err != nil {
		u.logger.Error("view average recompute failed",
			slog.String("ambassador_id", pub.AmbassadorID),
			slog.Any("error", err))
	}
	u.activity.Log(ctx, domain.Activity{
		Type:          domain.ActivityPublicationValidated,
		Title:         "Publication validated",
		UserID:        pub.AmbassadorID,
		CampaignID:    pub.CampaignID,
		PublicationID: pub.ID,
		TransactionID: ledger.ID,
		Metadata: map[string]any{
			"views_count":   reported,
			"amount_earned": pub.AmountEarned.String(),
			"validated_by":  p.ID,
		},
	})
	return pub, nil
}

// Reject closes a non-terminal publication. Capacity reserved by the first
// proof stays assigned.
func (u *PublicationUseCase) Reject(ctx context.Context, p domain.Principal, publicationID, comment string) (*domain.Publication, error) {
	if p.Role != domain.RoleAdmin {
		return nil, port.ErrForbidden
	}
	pub, err := u.publications.GetPublication(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	switch pub.Stage {
	case domain.StageValidated:
		return nil, port.ErrAlreadyValidated
	case domain.StageRejected:
		return nil, port.ErrInvalidPublicationState
	}
	now := u.clock.Now()
	pub.Stage = domain.StageRejected
	pub.Comment = comment
	pub.ValidatedAt = &now
	pub.ValidatedBy = p.ID
	pub.UpdatedAt = now
	if err = u.publications.RejectPublication(ctx, pub); err != nil {
		return nil, err
	}
	metrics.Publications.WithLabelValues("rejected").Inc()
	u.activity.Log(ctx, domain.Activity{
		Type:          domain.ActivityPublicationRejected,
		Title:         "Publication rejected",
		UserID:        pub.AmbassadorID,
		CampaignID:    pub.CampaignID,
		PublicationID: pub.ID,
		Metadata:      map[string]any{"comment": comment, "rejected_by": p.ID},
	})
	return pub, nil
}

func (u *PublicationUseCase) Get(ctx context.Context, p domain.Principal, publicationID string) (*domain.Publication, error) {
	pub, err := u.publications.GetPublication(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	if p.Role != domain.RoleAdmin && pub.AmbassadorID != p.ID {
		return nil, port.ErrForbidden
	}
	return pub, nil
}

func (u *PublicationUseCase) ListMine(ctx context.Context, p domain.Principal) ([]domain.Publication, error) {
	if p.Role != domain.RoleAmbassador {
		return nil, port.ErrForbidden
	}
	return u.publications.ListAmbassadorPublications(ctx, p.ID)
}

// RegisterClick records the visit and returns the campaign target link.
func (u *PublicationUseCase) RegisterClick(ctx context.Context, publicationID string, meta port.ClickMeta) (string, error) {
	if publicationID == "" {
		return "", fmt.Errorf("%w: empty publication id", port.ErrInvalidInput)
	}
	pub, err := u.publications.GetPublication(ctx, publicationID)
	if err != nil {
		return "", err
	}
	c, err := u.campaigns.GetCampaign(ctx, pub.CampaignID)
	if err != nil {
		return "", err
	}
	click := domain.ClickEvent{
		ID:            uuid.NewString(),
		PublicationID: pub.ID,
		IP:            meta.IP,
		UserAgent:     meta.UserAgent,
		Referer:       meta.Referer,
		CreatedAt:     u.clock.Now(),
	}
	if err = u.publications.RecordClick(ctx, click); err != nil {
		// the visitor is still redirected
		u.logger.Error("record click failed",
			slog.String("publication_id", pub.ID),
			slog.Any("error", err))
	}
	return c.TargetLink, nil
}

// ListAvailableCampaigns returns the ambassador's feed. Ambassadors without
// a validated publication are only offered the trial campaign when one
// exists.
func (u *PublicationUseCase) ListAvailableCampaigns(ctx context.Context, p domain.Principal) (*port.AvailableCampaigns, error) {
	if p.Role != domain.RoleAmbassador {
		return nil, port.ErrForbidden
	}
	user, err := u.users.GetUser(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	pubs, err := u.publications.ListAmbassadorPublications(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(pubs))
	validated, inProgress := false, false
	for _, pub := range pubs {
		switch {
		case pub.Stage == domain.StageValidated:
			validated = true
			taken[pub.CampaignID] = true
		case !pub.Stage.Terminal():
			inProgress = true
			taken[pub.CampaignID] = true
		}
	}
	now := u.clock.Now()

	if !validated {
		trial, terr := u.campaigns.FindTrialCampaign(ctx)
		switch {
		case terr == nil:
			out := &port.AvailableCampaigns{Trial: true, Campaigns: []port.AvailableCampaign{}}
			if inProgress {
				out.TrialOngoing = true
				return out, nil
			}
			if trial.Status == domain.CampaignActive && !trial.Ended(now) && trial.RemainingViews() > 0 {
				out.Campaigns = append(out.Campaigns, port.AvailableCampaign{
					Campaign:         *trial,
					OfferedViews:     u.earnings.TargetViews(u.earnings.Offer(*trial, user.ViewAverage), trial.RemainingViews()),
					ExpectedEarnings: decimal.Zero,
				})
			}
			return out, nil
		case !errors.Is(terr, port.ErrCampaignNotFound):
			return nil, terr
		}
	}

	active, err := u.campaigns.ListActiveCampaigns(ctx, now)
	if err != nil {
		return nil, err
	}
	out := &port.AvailableCampaigns{Campaigns: make([]port.AvailableCampaign, 0, len(active))}
	for _, c := range active {
		if c.CampaignTest || taken[c.ID] || c.Ended(now) {
			continue
		}
		remaining := c.RemainingViews()
		if remaining <= 0 || !c.TargetsLocation(user.City, user.Region) {
			continue
		}
		offered := u.earnings.TargetViews(u.earnings.Offer(c, user.ViewAverage), remaining)
		out.Campaigns = append(out.Campaigns, port.AvailableCampaign{
			Campaign:         c,
			OfferedViews:     offered,
			ExpectedEarnings: decimal.NewFromInt(offered).Mul(c.CPVAmbassador),
		})
	}
	return out, nil
}
