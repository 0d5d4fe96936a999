package port

import (
	"context"

	"github.com/shopspring/decimal"

	"echopub/internal/core/domain"
)

// PublicationUseCase drives one ambassador-campaign attribution from
// creation to admin review. Every guard violation is returned as one of the
// sentinel errors of this package.
type PublicationUseCase interface {
	// Create attributes the ambassador to an active campaign with capacity
	// left and matching target location.
	Create(ctx context.Context, p domain.Principal, campaignID string) (*domain.Publication, error)

	// AttachProof1 stores the first proof once it passes first vetting and
	// freezes target views against the remaining campaign capacity.
	AttachProof1(ctx context.Context, p domain.Principal, publicationID string, proof ProofUpload) (*ProofOutcome, error)

	// AttachProof2 stores the second proof within the proof window and moves
	// the publication to review.
	AttachProof2(ctx context.Context, p domain.Principal, publicationID string, proof ProofUpload) (*ProofOutcome, error)

	// Validate settles a submitted publication with admin-entered views and
	// credits the ambassador exactly once.
	Validate(ctx context.Context, p domain.Principal, publicationID string, views *int64) (*domain.Publication, error)

	// Reject closes a non-terminal publication without balance effect.
	Reject(ctx context.Context, p domain.Principal, publicationID, comment string) (*domain.Publication, error)

	Get(ctx context.Context, p domain.Principal, publicationID string) (*domain.Publication, error)
	ListMine(ctx context.Context, p domain.Principal) ([]domain.Publication, error)

	// RegisterClick records a tracked visit and returns the campaign target
	// link to redirect to.
	RegisterClick(ctx context.Context, publicationID string, meta ClickMeta) (string, error)

	// ListAvailableCampaigns returns the campaigns the ambassador may join.
	ListAvailableCampaigns(ctx context.Context, p domain.Principal) (*AvailableCampaigns, error)
}

// ProofUpload references an already stored proof file.
type ProofUpload struct {
	Path string // local path handed to the verifier
	URL  string // public URL recorded on the publication
}

// ProofOutcome is returned by both proof steps.
type ProofOutcome struct {
	Publication *domain.Publication
	Report      domain.ConformityReport
	// Comparison is set by the second step when both proofs could be
	// analysed.
	Comparison *domain.ProofComparison
}

// ClickMeta describes the visitor of a tracked link.
type ClickMeta struct {
	IP        string
	UserAgent string
	Referer   string
}

// AvailableCampaign is one campaign offered to an ambassador.
type AvailableCampaign struct {
	Campaign         domain.Campaign
	OfferedViews     int64
	ExpectedEarnings decimal.Decimal
}

// AvailableCampaigns is the ambassador's campaign feed.
type AvailableCampaigns struct {
	Campaigns []AvailableCampaign
	// Trial is set when the ambassador has no validated publication yet and
	// is only offered the trial campaign.
	Trial bool
	// TrialOngoing is set when the trial publication is still in progress.
	TrialOngoing bool
}
