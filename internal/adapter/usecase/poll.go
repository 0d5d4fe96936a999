package usecase

import (
	"context"
	"log/slog"
	"time"

	"echopub/internal/core/port"
	"echopub/internal/metrics"
)

// RetryPolicy bounds the deposit confirmation wait.
type RetryPolicy struct {
	Interval time.Duration
	Budget   time.Duration
}

// DefaultRetryPolicy polls every 5s for 35s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Interval: 5 * time.Second, Budget: 35 * time.Second}
}

// Attempts is the number of status checks that fit into the budget, at
// least one.
func (p RetryPolicy) Attempts() int {
	if p.Interval <= 0 {
		return 1
	}
	n := int(p.Budget / p.Interval)
	if n < 1 {
		return 1
	}
	return n
}

type pollOutcome int

const (
	pollTimeout pollOutcome = iota
	pollSucceeded
	pollFailed
)

// pollStatus waits for a terminal gateway status. Gateway errors during the
// poll are treated as transient and only logged. The last status seen is
// returned together with the outcome.
func (u *SettlementUseCase) pollStatus(ctx context.Context, gatewayRef string) (port.StatusResponse, pollOutcome) {
	var last port.StatusResponse
	attempts := u.retry.Attempts()
	for i := 0; i < attempts; i++ {
		if err := u.sleeper.Sleep(ctx, u.retry.Interval); err != nil {
			u.logger.Warn("deposit poll interrupted",
				slog.String("gateway_reference", gatewayRef),
				slog.Any("error", err))
			break
		}
		st, err := u.gateway.Status(ctx, gatewayRef)
		if err != nil {
			u.logger.Warn("deposit status check failed",
				slog.String("gateway_reference", gatewayRef),
				slog.Int("attempt", i+1),
				slog.Any("error", err))
			continue
		}
		last = st
		switch st.Status {
		case port.GatewaySuccessful:
			metrics.PollOutcomes.WithLabelValues("confirmed").Inc()
			return st, pollSucceeded
		case port.GatewayFailed:
			metrics.PollOutcomes.WithLabelValues("failed").Inc()
			return st, pollFailed
		}
	}
	metrics.PollOutcomes.WithLabelValues("timeout").Inc()
	return last, pollTimeout
}
