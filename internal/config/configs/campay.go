package configs

import "time"

// CamPay configures the mobile-money gateway client.
type CamPay struct {
	BaseURL  string `env:"BASE_URL" envDefault:"https://demo.campay.net"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	Currency string `env:"CURRENCY" envDefault:"XAF"`
	// WebhookKey verifies the signature attached to gateway notifications.
	WebhookKey string        `env:"WEBHOOK_KEY,required,notEmpty"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"15s"`
	// RequestsPerSecond and Burst shape outgoing calls.
	RequestsPerSecond float64 `env:"RPS" envDefault:"5"`
	Burst             int     `env:"BURST" envDefault:"10"`
	// PollInterval and PollBudget bound the synchronous status polling
	// after a collection request.
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`
	PollBudget   time.Duration `env:"POLL_BUDGET" envDefault:"35s"`
}
