package port

import "errors"

// Validation errors.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrViewsRequired = errors.New("views count is required")
	ErrForbidden     = errors.New("operation not permitted for principal")
)

// Not-found errors.
var (
	ErrNotFound            = errors.New("not found")
	ErrCampaignNotFound    = errors.New("campaign not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrPublicationNotFound = errors.New("publication not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// State-guard errors.
var (
	ErrCampaignNotActive       = errors.New("campaign is not active")
	ErrCampaignEnded           = errors.New("campaign has ended")
	ErrCapacityExhausted       = errors.New("campaign view capacity exhausted")
	ErrOutsideTargetZone       = errors.New("ambassador outside campaign target zone")
	ErrAlreadyAttributed       = errors.New("ambassador already attributed to campaign")
	ErrProofAlreadyAttached    = errors.New("proof already attached")
	ErrProofMissing            = errors.New("first proof missing")
	ErrProofWindowExpired      = errors.New("second proof window expired")
	ErrProofNotConforming      = errors.New("proof does not look like a published status")
	ErrAlreadyValidated        = errors.New("publication already validated")
	ErrInvalidPublicationState = errors.New("publication is not in a valid state for this operation")
	ErrInvalidTransition       = errors.New("invalid campaign status transition")
	ErrDuplicateTransaction    = errors.New("a transaction is already in flight")
	ErrInsufficientBalance     = errors.New("insufficient balance")
)

// Collaborator errors.
var (
	ErrVerificationUnavailable = errors.New("proof verification unavailable")
	ErrGateway                 = errors.New("payment gateway error")
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrViewsRequired, "views_required"},
	{ErrInvalidInput, "invalid_input"},
	{ErrForbidden, "forbidden"},
	{ErrCampaignNotFound, "campaign_not_found"},
	{ErrUserNotFound, "user_not_found"},
	{ErrPublicationNotFound, "publication_not_found"},
	{ErrTransactionNotFound, "transaction_not_found"},
	{ErrNotFound, "not_found"},
	{ErrCampaignNotActive, "campaign_not_active"},
	{ErrCampaignEnded, "campaign_ended"},
	{ErrCapacityExhausted, "capacity_exhausted"},
	{ErrOutsideTargetZone, "outside_target_zone"},
	{ErrAlreadyAttributed, "already_attributed"},
	{ErrProofAlreadyAttached, "proof_already_attached"},
	{ErrProofMissing, "proof_missing"},
	{ErrProofWindowExpired, "proof_window_expired"},
	{ErrProofNotConforming, "proof_not_conforming"},
	{ErrAlreadyValidated, "already_validated"},
	{ErrInvalidPublicationState, "invalid_publication_state"},
	{ErrInvalidTransition, "invalid_transition"},
	{ErrDuplicateTransaction, "duplicate_transaction"},
	{ErrInsufficientBalance, "insufficient_balance"},
	{ErrVerificationUnavailable, "verification_unavailable"},
	{ErrGateway, "gateway_error"},
}

// Reason returns the machine-readable reason code for err, or "internal"
// when err is not one of the sentinels above.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "internal"
}
