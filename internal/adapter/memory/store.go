package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"echopub/internal/core/domain"
	"echopub/internal/core/port"
)

// Store keeps every aggregate in process memory. A single mutex makes each
// method one atomic unit, which gives the same guarantees as the row locks
// and conditional updates of the postgres repositories.
type Store struct {
	mu           sync.Mutex
	campaigns    map[string]domain.Campaign
	users        map[string]domain.User
	publications map[string]domain.Publication
	transactions map[string]domain.Transaction
	clicks       []domain.ClickEvent
	activities   []domain.Activity
	clock        port.Clock
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to stamp rows the store updates itself.
func WithClock(clock port.Clock) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		campaigns:    make(map[string]domain.Campaign),
		users:        make(map[string]domain.User),
		publications: make(map[string]domain.Publication),
		transactions: make(map[string]domain.Transaction),
		clock:        systemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repositories exposes the store through the persistence ports.
func (s *Store) Repositories() port.Repositories {
	return port.Repositories{
		Campaigns:    s,
		Users:        s,
		Publications: s,
		Transactions: s,
	}
}

// PutUser inserts or replaces a user.
func (s *Store) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// PutCampaign inserts or replaces a campaign.
func (s *Store) PutCampaign(c domain.Campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[c.ID] = cloneCampaign(c)
}

func cloneCampaign(c domain.Campaign) domain.Campaign {
	c.TargetLocation = slices.Clone(c.TargetLocation)
	return c
}

// campaigns

func (s *Store) CreateCampaign(_ context.Context, c *domain.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[c.ID]; ok {
		return port.ErrInvalidInput
	}
	s.campaigns[c.ID] = cloneCampaign(*c)
	return nil
}

func (s *Store) GetCampaign(_ context.Context, id string) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, port.ErrCampaignNotFound
	}
	c = cloneCampaign(c)
	return &c, nil
}

func (s *Store) UpdateCampaignStatus(_ context.Context, id string, from, to domain.CampaignStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return port.ErrCampaignNotFound
	}
	if c.Status != from {
		return port.ErrInvalidTransition
	}
	c.Status = to
	c.UpdatedAt = at
	if to == domain.CampaignCompleted {
		c.CompletedAt = &at
	}
	s.campaigns[id] = c
	return nil
}

func (s *Store) sortedCampaigns(keep func(domain.Campaign) bool) []domain.Campaign {
	out := make([]domain.Campaign, 0)
	for _, c := range s.campaigns {
		if keep(c) {
			out = append(out, cloneCampaign(c))
		}
	}
	slices.SortFunc(out, func(a, b domain.Campaign) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (s *Store) ListActiveCampaigns(_ context.Context, now time.Time) ([]domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedCampaigns(func(c domain.Campaign) bool {
		return c.Status == domain.CampaignActive && !c.Ended(now)
	}), nil
}

func (s *Store) FindTrialCampaign(_ context.Context) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trials := s.sortedCampaigns(func(c domain.Campaign) bool { return c.CampaignTest })
	if len(trials) == 0 {
		return nil, port.ErrCampaignNotFound
	}
	return &trials[0], nil
}

func (s *Store) ListExpiredCampaigns(_ context.Context, now time.Time, limit int) ([]domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.sortedCampaigns(func(c domain.Campaign) bool {
		return (c.Status == domain.CampaignActive || c.Status == domain.CampaignPaused) &&
			!c.CampaignTest && c.Ended(now)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// users

func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, port.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) SetViewAverage(_ context.Context, userID string, average int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return port.ErrUserNotFound
	}
	u.ViewAverage = average
	s.users[userID] = u
	return nil
}

// publications

func (s *Store) activePublication(ambassadorID, campaignID string) (domain.Publication, bool) {
	for _, p := range s.publications {
		if p.AmbassadorID == ambassadorID && p.CampaignID == campaignID && !p.Stage.Terminal() {
			return p, true
		}
	}
	return domain.Publication{}, false
}

func (s *Store) CreatePublication(_ context.Context, p *domain.Publication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activePublication(p.AmbassadorID, p.CampaignID); ok {
		return port.ErrAlreadyAttributed
	}
	s.publications[p.ID] = *p
	return nil
}

func (s *Store) GetPublication(_ context.Context, id string) (*domain.Publication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.publications[id]
	if !ok {
		return nil, port.ErrPublicationNotFound
	}
	return &p, nil
}

func (s *Store) FindActivePublication(_ context.Context, ambassadorID, campaignID string) (*domain.Publication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.activePublication(ambassadorID, campaignID)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) ListAmbassadorPublications(_ context.Context, ambassadorID string) ([]domain.Publication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Publication, 0)
	for _, p := range s.publications {
		if p.AmbassadorID == ambassadorID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Publication) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) AttachProof1(_ context.Context, p *domain.Publication, allocate port.Allocator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.publications[p.ID]
	if !ok {
		return port.ErrPublicationNotFound
	}
	if stored.ScreenshotURL != "" {
		return port.ErrProofAlreadyAttached
	}
	if stored.Stage != domain.StageNoProof {
		return port.ErrInvalidPublicationState
	}
	c, ok := s.campaigns[stored.CampaignID]
	if !ok {
		return port.ErrCampaignNotFound
	}
	remaining := c.RemainingViews()
	if remaining <= 0 {
		return port.ErrCapacityExhausted
	}
	target := allocate(remaining)
	if target <= 0 || target > remaining {
		return port.ErrCapacityExhausted
	}
	c.NumberViewsAssigned += target
	s.campaigns[c.ID] = c
	p.TargetViews = target
	p.ClicksCount = stored.ClicksCount
	s.publications[p.ID] = *p
	return nil
}

func (s *Store) AttachProof2(_ context.Context, p *domain.Publication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.publications[p.ID]
	if !ok {
		return port.ErrPublicationNotFound
	}
	if stored.ScreenshotURL == "" {
		return port.ErrProofMissing
	}
	if stored.Stage != domain.StageProof1Attached {
		return port.ErrInvalidPublicationState
	}
	p.ClicksCount = stored.ClicksCount
	s.publications[p.ID] = *p
	return nil
}

func (s *Store) SettleValidation(_ context.Context, p *domain.Publication, ledger *domain.Transaction) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.publications[p.ID]
	if !ok {
		return decimal.Zero, port.ErrPublicationNotFound
	}
	switch stored.Stage {
	case domain.StageValidated:
		return decimal.Zero, port.ErrAlreadyValidated
	case domain.StageProof2Attached:
	default:
		return decimal.Zero, port.ErrInvalidPublicationState
	}
	u, ok := s.users[p.AmbassadorID]
	if !ok {
		return decimal.Zero, port.ErrUserNotFound
	}
	if s.referenceTaken(ledger.Reference) {
		return decimal.Zero, port.ErrDuplicateTransaction
	}
	u.Balance = u.Balance.Add(p.AmountEarned)
	s.users[u.ID] = u
	s.transactions[ledger.ID] = *ledger
	p.ClicksCount = stored.ClicksCount
	s.publications[p.ID] = *p
	return u.Balance, nil
}

func (s *Store) RejectPublication(_ context.Context, p *domain.Publication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.publications[p.ID]
	if !ok {
		return port.ErrPublicationNotFound
	}
	switch stored.Stage {
	case domain.StageValidated:
		return port.ErrAlreadyValidated
	case domain.StageRejected:
		return port.ErrInvalidPublicationState
	}
	p.ClicksCount = stored.ClicksCount
	s.publications[p.ID] = *p
	return nil
}

func (s *Store) ValidatedViews(_ context.Context, ambassadorID string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := make([]int64, 0)
	for _, p := range s.publications {
		if p.AmbassadorID == ambassadorID && p.Stage == domain.StageValidated && p.ViewsCount != nil {
			views = append(views, *p.ViewsCount)
		}
	}
	return views, nil
}

func (s *Store) RecordClick(_ context.Context, click domain.ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.publications[click.PublicationID]
	if !ok {
		return port.ErrPublicationNotFound
	}
	p.ClicksCount++
	s.publications[p.ID] = p
	s.clicks = append(s.clicks, click)
	return nil
}

// Clicks returns the recorded click events.
func (s *Store) Clicks() []domain.ClickEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.clicks)
}

// transactions

func (s *Store) referenceTaken(ref string) bool {
	for _, t := range s.transactions {
		if t.Reference == ref {
			return true
		}
	}
	return false
}

func (s *Store) CreateTransaction(_ context.Context, t *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.referenceTaken(t.Reference) {
		return port.ErrDuplicateTransaction
	}
	for _, other := range s.transactions {
		switch {
		case t.Type == domain.TransactionDeposit && other.HoldsDepositSlot() && other.CampaignID == t.CampaignID:
			return port.ErrDuplicateTransaction
		case t.Type == domain.TransactionWithdrawal && other.Type == domain.TransactionWithdrawal &&
			other.UserID == t.UserID && other.Status == domain.TransactionPending:
			return port.ErrDuplicateTransaction
		}
	}
	s.transactions[t.ID] = *t
	return nil
}

func (s *Store) FindActiveDeposit(_ context.Context, campaignID string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.HoldsDepositSlot() && t.CampaignID == campaignID {
			return &t, nil
		}
	}
	return nil, nil
}

func (s *Store) FindPendingWithdrawal(_ context.Context, userID string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.Type == domain.TransactionWithdrawal && t.UserID == userID && t.Status == domain.TransactionPending {
			return &t, nil
		}
	}
	return nil, nil
}

func (s *Store) GetTransactionByReference(_ context.Context, ref string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ref == "" {
		return nil, port.ErrTransactionNotFound
	}
	for _, t := range s.transactions {
		if t.Reference == ref || t.ExternalReference == ref || t.GatewayReference == ref {
			return &t, nil
		}
	}
	return nil, port.ErrTransactionNotFound
}

func (s *Store) SetGatewayReference(_ context.Context, id, gatewayRef, ussdCode, operator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return port.ErrTransactionNotFound
	}
	t.GatewayReference = gatewayRef
	t.USSDCode = ussdCode
	t.Operator = operator
	t.UpdatedAt = s.clock.Now()
	s.transactions[id] = t
	return nil
}

func (s *Store) AcceptWithdrawal(_ context.Context, id, gatewayRef string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return decimal.Zero, port.ErrTransactionNotFound
	}
	u, ok := s.users[t.UserID]
	if !ok {
		return decimal.Zero, port.ErrUserNotFound
	}
	if t.Type != domain.TransactionWithdrawal {
		return decimal.Zero, port.ErrInvalidInput
	}
	// the gateway verdict may overtake its acknowledgement: a failed row was
	// never debited and a confirmed one was debited by the confirmation
	if t.GatewayReference != "" || t.Status == domain.TransactionFailed {
		return u.Balance, nil
	}
	if t.Status == domain.TransactionPending {
		if u.Balance.LessThan(t.Amount) {
			return decimal.Zero, port.ErrInsufficientBalance
		}
		u.Balance = u.Balance.Sub(t.Amount)
		s.users[u.ID] = u
	}
	t.GatewayReference = gatewayRef
	t.UpdatedAt = s.clock.Now()
	s.transactions[id] = t
	return u.Balance, nil
}

func (s *Store) ConfirmTransaction(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return false, port.ErrTransactionNotFound
	}
	if t.Status != domain.TransactionPending && !(t.Status == domain.TransactionFailed && t.TimedOut) {
		return false, nil
	}
	if t.Type == domain.TransactionWithdrawal && !t.Debited() {
		u, ok := s.users[t.UserID]
		if !ok {
			return false, port.ErrUserNotFound
		}
		if u.Balance.LessThan(t.Amount) {
			return false, port.ErrInsufficientBalance
		}
		u.Balance = u.Balance.Sub(t.Amount)
		s.users[u.ID] = u
	}
	t.Status = domain.TransactionConfirmed
	t.TimedOut = false
	t.ErrorMessage = ""
	t.UpdatedAt = s.clock.Now()
	s.transactions[id] = t
	return true, nil
}

// FailTransaction fails a pending transaction, or settles a timed-out one
// when the gateway reports a definitive failure.
func (s *Store) FailTransaction(_ context.Context, id, reason string, timedOut bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return false, port.ErrTransactionNotFound
	}
	if t.Status != domain.TransactionPending && !(t.Status == domain.TransactionFailed && t.TimedOut && !timedOut) {
		return false, nil
	}
	if t.Status == domain.TransactionPending && t.Debited() {
		u, ok := s.users[t.UserID]
		if !ok {
			return false, port.ErrUserNotFound
		}
		u.Balance = u.Balance.Add(t.Amount)
		s.users[u.ID] = u
	}
	t.Status = domain.TransactionFailed
	t.ErrorMessage = reason
	t.TimedOut = timedOut
	t.UpdatedAt = s.clock.Now()
	s.transactions[id] = t
	return true, nil
}

func (s *Store) ListUserTransactions(_ context.Context, userID string) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Transaction, 0)
	for _, t := range s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b domain.Transaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// activities

// SaveActivity appends an activity record.
func (s *Store) SaveActivity(_ context.Context, a domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, a)
	return nil
}

// Activities returns the stored activity records.
func (s *Store) Activities() []domain.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.activities)
}
