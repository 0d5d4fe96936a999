package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies ledger movements.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionPayment    TransactionType = "payment"
	TransactionCommission TransactionType = "commission"
)

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionConfirmed TransactionStatus = "confirmed"
	TransactionFailed    TransactionStatus = "failed"
)

// Terminal reports whether the status is final.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionConfirmed || s == TransactionFailed
}

// PaymentMethod is the mobile-money channel.
type PaymentMethod string

const (
	MethodOrange   PaymentMethod = "cm.orange"
	MethodMTN      PaymentMethod = "cm.mtn"
	MethodPlatform PaymentMethod = "platform" // internal ledger entries
)

// Valid reports whether the method is a supported mobile-money channel.
func (m PaymentMethod) Valid() bool {
	return m == MethodOrange || m == MethodMTN
}

// Transaction is a ledger row, optionally correlated with a gateway
// operation.
type Transaction struct {
	ID                string
	Reference         string // internal, unique
	ExternalReference string // correlation key sent to the gateway
	GatewayReference  string // gateway-side transaction id
	UserID            string
	Type              TransactionType
	Amount            decimal.Decimal
	Currency          string
	Status            TransactionStatus
	Method            PaymentMethod
	Phone             string
	CampaignID        string
	AmbassadorID      string
	PublicationID     string
	ErrorMessage      string
	// TimedOut marks a deposit failed by poll budget exhaustion; gateway
	// confirmation may still promote it.
	TimedOut  bool
	USSDCode  string
	Operator  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Debited reports whether a withdrawal has been charged to the balance. The
// debit happens together with recording the gateway acknowledgement, or with
// the confirmation when the gateway verdict overtakes its acknowledgement.
func (t Transaction) Debited() bool {
	return t.Type == TransactionWithdrawal && (t.GatewayReference != "" || t.Status == TransactionConfirmed)
}

// HoldsDepositSlot reports whether a deposit still occupies the single
// funding slot of its campaign. A timed-out deposit keeps the slot until the
// gateway gives a definitive verdict.
func (t Transaction) HoldsDepositSlot() bool {
	return t.Type == TransactionDeposit && (t.Status != TransactionFailed || t.TimedOut)
}
