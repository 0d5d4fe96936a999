package configs

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pricing holds the platform rates. Amounts are in the gateway currency.
type Pricing struct {
	CPV                 decimal.Decimal `env:"CPV" envDefault:"14"`
	CPVAmbassador       decimal.Decimal `env:"CPV_AMBASSADOR" envDefault:"10"`
	OverDeliveryFactor  decimal.Decimal `env:"OVER_DELIVERY_FACTOR" envDefault:"0.8"`
	ProofWindow         time.Duration   `env:"PROOF_WINDOW" envDefault:"24h"`
	BaselineTargetViews int64           `env:"BASELINE_TARGET_VIEWS" envDefault:"100"`
	// HashDistance is the largest perceptual hash distance between two
	// proofs of the same post.
	HashDistance int `env:"HASH_DISTANCE" envDefault:"10"`
}
