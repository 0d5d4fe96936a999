package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"echopub/internal/adapter/memory"
	"echopub/internal/core/domain"
	"echopub/internal/core/port"
	"echopub/internal/core/port/mocks"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeSleeper moves the fake clock instead of sleeping.
type fakeSleeper struct {
	clock *fakeClock
	mu    sync.Mutex
	calls int
}

func (s *fakeSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	s.clock.Advance(d)
	return nil
}

func (s *fakeSleeper) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	adminPrincipal      = domain.Principal{ID: "admin-1", Role: domain.RoleAdmin}
	advertiserPrincipal = domain.Principal{ID: "adv-1", Role: domain.RoleAdvertiser}
)

type fixture struct {
	store        *memory.Store
	clock        *fakeClock
	sleeper      *fakeSleeper
	verifier     *mocks.MockProofVerifier
	gateway      *mocks.MockPaymentGateway
	activity     *mocks.MockActivityLogger
	pricing      Pricing
	earnings     *Earnings
	campaigns    *CampaignUseCase
	publications *PublicationUseCase
	settlement   *SettlementUseCase

	mu     sync.Mutex
	logged []domain.Activity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	f := &fixture{
		store:    memory.New(memory.WithClock(clock)),
		clock:    clock,
		verifier: mocks.NewMockProofVerifier(t),
		gateway:  mocks.NewMockPaymentGateway(t),
		activity: mocks.NewMockActivityLogger(t),
		pricing:  DefaultPricing(),
	}
	f.sleeper = &fakeSleeper{clock: f.clock}
	f.activity.EXPECT().Log(mock.Anything, mock.Anything).
		Run(func(_ context.Context, a domain.Activity) {
			f.mu.Lock()
			f.logged = append(f.logged, a)
			f.mu.Unlock()
		}).Maybe()

	repos := f.store.Repositories()
	logger := discardLogger()
	f.earnings = NewEarnings(f.pricing, repos.Publications, repos.Users, logger)
	f.campaigns = NewCampaignUseCase(repos.Campaigns, f.activity, f.clock, f.pricing, 100, logger)
	f.publications = NewPublicationUseCase(repos, f.verifier, f.earnings, f.activity, f.clock, f.pricing, logger)
	f.settlement = NewSettlementUseCase(SettlementDeps{
		Repos:     repos,
		Lifecycle: f.campaigns,
		Gateway:   f.gateway,
		Activity:  f.activity,
		Clock:     f.clock,
		Sleeper:   f.sleeper,
		Retry:     DefaultRetryPolicy(),
		Currency:  "XAF",
		Logger:    logger,
	})
	f.store.PutUser(domain.User{ID: advertiserPrincipal.ID, Role: domain.RoleAdvertiser, Balance: decimal.Zero})
	f.store.PutUser(domain.User{ID: adminPrincipal.ID, Role: domain.RoleAdmin, Balance: decimal.Zero})
	return f
}

// activities counts the logged activities of one type.
func (f *fixture) activities(typ domain.ActivityType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.logged {
		if a.Type == typ {
			n++
		}
	}
	return n
}

func (f *fixture) ambassador(id, city string, viewAverage int64) domain.Principal {
	f.store.PutUser(domain.User{
		ID:          id,
		Role:        domain.RoleAmbassador,
		City:        city,
		Region:      "Littoral",
		ViewAverage: viewAverage,
		Balance:     decimal.Zero,
	})
	return domain.Principal{ID: id, Role: domain.RoleAmbassador}
}

func (f *fixture) activeCampaign(id string, budget int64, locations ...string) domain.Campaign {
	end := f.clock.Now().Add(30 * 24 * time.Hour)
	c := domain.Campaign{
		ID:             id,
		AdvertiserID:   advertiserPrincipal.ID,
		Title:          "campaign " + id,
		TargetLink:     "https://example.com/" + id,
		TargetLocation: locations,
		Budget:         decimal.NewFromInt(budget),
		CPV:            f.pricing.CPV,
		CPVAmbassador:  f.pricing.CPVAmbassador,
		ExpectedViews:  domain.ExpectedViews(decimal.NewFromInt(budget), f.pricing.CPV),
		Status:         domain.CampaignActive,
		EndDate:        &end,
		CreatedAt:      f.clock.Now(),
	}
	f.store.PutCampaign(c)
	return c
}

func (f *fixture) conforming(path string) {
	f.verifier.EXPECT().Verify(mock.Anything, path).
		Return(domain.ConformityReport{StatusMarker: true, ViewsMarker: true}, nil)
}

// submitted drives a fresh publication through both proofs.
func (f *fixture) submitted(t *testing.T, amb domain.Principal, campaignID string) *domain.Publication {
	t.Helper()
	ctx := context.Background()
	pub, err := f.publications.Create(ctx, amb, campaignID)
	if err != nil {
		t.Fatalf("create publication: %v", err)
	}
	p1 := "/proofs/" + pub.ID + "-1.png"
	p2 := "/proofs/" + pub.ID + "-2.png"
	f.conforming(p1)
	f.conforming(p2)
	f.verifier.EXPECT().Compare(mock.Anything, p1, p2).
		Return(domain.ProofComparison{HashDistance: 3}, nil).Maybe()
	if _, err = f.publications.AttachProof1(ctx, amb, pub.ID, proof(p1)); err != nil {
		t.Fatalf("attach proof 1: %v", err)
	}
	f.clock.Advance(2 * time.Hour)
	out, err := f.publications.AttachProof2(ctx, amb, pub.ID, proof(p2))
	if err != nil {
		t.Fatalf("attach proof 2: %v", err)
	}
	return out.Publication
}

func proof(path string) port.ProofUpload {
	return port.ProofUpload{Path: path, URL: "https://cdn.example.com" + path}
}

func int64p(v int64) *int64 { return &v }
