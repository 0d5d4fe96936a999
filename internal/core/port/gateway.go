package port

import (
	"context"

	"github.com/shopspring/decimal"
)

// GatewayStatus is the gateway's status vocabulary.
type GatewayStatus string

const (
	GatewaySuccessful GatewayStatus = "SUCCESSFUL"
	GatewayFailed     GatewayStatus = "FAILED"
	GatewayPending    GatewayStatus = "PENDING"
)

// CollectRequest asks the gateway to pull money from a payer.
type CollectRequest struct {
	Amount            decimal.Decimal
	Currency          string
	Phone             string
	Description       string
	ExternalReference string
}

// CollectResponse is the gateway acknowledgement of a collect.
type CollectResponse struct {
	Reference string
	USSDCode  string
	Operator  string
}

// WithdrawRequest asks the gateway to push money to a payee.
type WithdrawRequest struct {
	Amount            decimal.Decimal
	Currency          string
	Phone             string
	Description       string
	ExternalReference string
}

// WithdrawResponse is the gateway acknowledgement of a payout.
type WithdrawResponse struct {
	Reference string
}

// StatusResponse is the gateway view of one transaction.
type StatusResponse struct {
	Reference         string
	ExternalReference string
	Status            GatewayStatus
	Reason            string
	Operator          string
}

// PaymentGateway is the external mobile-money processor. It is unreliable:
// any error means the outcome is unknown.
type PaymentGateway interface {
	Collect(ctx context.Context, req CollectRequest) (CollectResponse, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (WithdrawResponse, error)
	Status(ctx context.Context, gatewayReference string) (StatusResponse, error)
}
