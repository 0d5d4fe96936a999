package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"echopub/internal/core/domain"
)

// CampaignRepository persists campaigns. Implementations must apply status
// changes as conditional updates so that concurrent transitions cannot both
// succeed.
type CampaignRepository interface {
	CreateCampaign(ctx context.Context, c *domain.Campaign) error
	// GetCampaign returns ErrCampaignNotFound for unknown ids.
	GetCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	// UpdateCampaignStatus moves the campaign from -> to. It returns
	// ErrInvalidTransition when the stored status is no longer from.
	UpdateCampaignStatus(ctx context.Context, id string, from, to domain.CampaignStatus, at time.Time) error
	// ListActiveCampaigns returns active campaigns whose end date is unset or
	// after now.
	ListActiveCampaigns(ctx context.Context, now time.Time) ([]domain.Campaign, error)
	// FindTrialCampaign returns the trial campaign or ErrCampaignNotFound.
	FindTrialCampaign(ctx context.Context) (*domain.Campaign, error)
	// ListExpiredCampaigns returns active or paused, non-trial campaigns whose
	// end date is at or before now.
	ListExpiredCampaigns(ctx context.Context, now time.Time, limit int) ([]domain.Campaign, error)
}

// UserRepository reads users and maintains derived ambassador figures.
// Balance credits happen inside PublicationRepository.SettleValidation and
// debits inside TransactionRepository.AcceptWithdrawal and
// ConfirmTransaction only.
type UserRepository interface {
	// GetUser returns ErrUserNotFound for unknown ids.
	GetUser(ctx context.Context, id string) (*domain.User, error)
	SetViewAverage(ctx context.Context, userID string, average int64) error
}

// Allocator returns the target views granted for the given remaining
// campaign capacity.
type Allocator func(remaining int64) int64

// PublicationRepository persists publications and their settlement.
type PublicationRepository interface {
	// CreatePublication returns ErrAlreadyAttributed when a non-terminal
	// publication exists for the same ambassador and campaign.
	CreatePublication(ctx context.Context, p *domain.Publication) error
	// GetPublication returns ErrPublicationNotFound for unknown ids.
	GetPublication(ctx context.Context, id string) (*domain.Publication, error)
	// FindActivePublication returns the non-terminal publication of the pair
	// or nil.
	FindActivePublication(ctx context.Context, ambassadorID, campaignID string) (*domain.Publication, error)
	ListAmbassadorPublications(ctx context.Context, ambassadorID string) ([]domain.Publication, error)
	// AttachProof1 atomically reserves campaign capacity and stores the first
	// proof. The campaign row is locked while allocate computes the grant;
	// a zero grant or zero remaining capacity yields ErrCapacityExhausted.
	// The stored publication must still be at StageNoProof.
	AttachProof1(ctx context.Context, p *domain.Publication, allocate Allocator) error
	// AttachProof2 stores the second proof if the publication is still at
	// StageProof1Attached, otherwise ErrInvalidPublicationState.
	AttachProof2(ctx context.Context, p *domain.Publication) error
	// SettleValidation atomically marks the publication validated (only from
	// StageProof2Attached), credits the ambassador balance with
	// p.AmountEarned and inserts the ledger transaction. It returns the new
	// balance, or ErrAlreadyValidated if the publication was validated
	// concurrently.
	SettleValidation(ctx context.Context, p *domain.Publication, ledger *domain.Transaction) (decimal.Decimal, error)
	// RejectPublication marks a non-terminal publication rejected.
	RejectPublication(ctx context.Context, p *domain.Publication) error
	// ValidatedViews lists views_count of the ambassador's validated
	// publications.
	ValidatedViews(ctx context.Context, ambassadorID string) ([]int64, error)
	// RecordClick stores the event and increments clicks_count.
	RecordClick(ctx context.Context, click domain.ClickEvent) error
}

// TransactionRepository persists settlement transactions.
type TransactionRepository interface {
	// CreateTransaction returns ErrDuplicateTransaction when the reference is
	// taken or another deposit for the campaign (or another withdrawal for
	// the user) is still in flight.
	CreateTransaction(ctx context.Context, t *domain.Transaction) error
	// FindActiveDeposit returns the deposit holding the funding slot of the
	// campaign (pending, confirmed or timed out), or nil.
	FindActiveDeposit(ctx context.Context, campaignID string) (*domain.Transaction, error)
	// FindPendingWithdrawal returns the user's pending withdrawal, or nil.
	FindPendingWithdrawal(ctx context.Context, userID string) (*domain.Transaction, error)
	// GetTransactionByReference matches the internal, external or gateway
	// reference. It returns ErrTransactionNotFound when nothing matches.
	GetTransactionByReference(ctx context.Context, ref string) (*domain.Transaction, error)
	// SetGatewayReference records the gateway acknowledgement of a collect.
	SetGatewayReference(ctx context.Context, id, gatewayRef, ussdCode, operator string) error
	// AcceptWithdrawal records the gateway acknowledgement and debits the
	// balance in one unit. It returns ErrInsufficientBalance and changes
	// nothing if the balance no longer covers the amount. A withdrawal already
	// settled by the gateway is never debited again.
	AcceptWithdrawal(ctx context.Context, id, gatewayRef string) (decimal.Decimal, error)
	// ConfirmTransaction moves a pending transaction (or a timed-out failed
	// one) to confirmed. changed is false when it already was confirmed. A
	// withdrawal not yet debited is debited in the same unit.
	ConfirmTransaction(ctx context.Context, id string) (changed bool, err error)
	// FailTransaction moves a pending transaction, or a timed-out one given a
	// definitive failure, to failed. When the transaction is a debited
	// withdrawal, the amount is credited back in the same unit of work.
	FailTransaction(ctx context.Context, id, reason string, timedOut bool) (changed bool, err error)
	ListUserTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
}

// Repositories bundles the persistence ports used by the use cases.
type Repositories struct {
	Campaigns    CampaignRepository
	Users        UserRepository
	Publications PublicationRepository
	Transactions TransactionRepository
}
