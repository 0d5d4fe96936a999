package port

import (
	"context"

	"github.com/shopspring/decimal"

	"echopub/internal/core/domain"
)

// SettlementUseCase moves money between users and the mobile-money gateway.
type SettlementUseCase interface {
	// InitiateDeposit funds a campaign. It blocks while polling the gateway
	// for a bounded time; a poll that runs out of budget fails the
	// transaction and returns the gateway instructions so the payer can
	// still complete out of band.
	InitiateDeposit(ctx context.Context, p domain.Principal, req DepositRequest) (*SettlementResult, error)

	// InitiateWithdrawal pays an ambassador out. The balance is debited only
	// once the gateway acknowledged the payout.
	InitiateWithdrawal(ctx context.Context, p domain.Principal, req WithdrawalRequest) (*SettlementResult, error)

	// HandleWebhook reconciles a gateway notification. It is idempotent.
	HandleWebhook(ctx context.Context, ev WebhookEvent) (*domain.Transaction, error)

	// CheckStatus re-polls the gateway once for the transaction matching ref
	// (internal, external or gateway reference) and persists any change.
	// The principal must own the transaction or be an admin.
	CheckStatus(ctx context.Context, p domain.Principal, ref string) (*SettlementResult, error)

	GetBalance(ctx context.Context, p domain.Principal) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, p domain.Principal) ([]domain.Transaction, error)
}

// DepositRequest funds a campaign with its full budget.
type DepositRequest struct {
	CampaignID string
	Method     domain.PaymentMethod
	Phone      string
}

// WithdrawalRequest cashes out part of an ambassador balance.
type WithdrawalRequest struct {
	Amount decimal.Decimal
	Method domain.PaymentMethod
	Phone  string
}

// WebhookEvent is a gateway notification.
type WebhookEvent struct {
	ExternalReference string
	GatewayReference  string
	Status            GatewayStatus
	Reason            string
	Operator          string
}

// GatewayInstructions lets the payer finish a payment on the handset.
type GatewayInstructions struct {
	USSDCode string
	Operator string
}

// SettlementResult is the transaction after the operation, with the gateway
// instructions when the gateway provided any.
type SettlementResult struct {
	Transaction  *domain.Transaction
	Instructions *GatewayInstructions
}
