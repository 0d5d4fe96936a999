package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"echopub/internal/core/domain"
	"echopub/internal/core/port"
	"echopub/internal/metrics"
)

// Sink persists or forwards one activity record.
type Sink interface {
	SaveActivity(ctx context.Context, a domain.Activity) error
}

// Dispatcher implements port.ActivityLogger. Log never blocks the caller:
// records are queued and written to every sink by Run. A full queue or a
// failing sink drops the record after logging it.
type Dispatcher struct {
	events       chan domain.Activity
	sinks        []Sink
	clock        port.Clock
	writeTimeout time.Duration
	logger       *slog.Logger
}

func NewDispatcher(clock port.Clock, bufferSize int, writeTimeout time.Duration, logger *slog.Logger, sinks ...Sink) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Dispatcher{
		events:       make(chan domain.Activity, bufferSize),
		sinks:        sinks,
		clock:        clock,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

func (d *Dispatcher) Log(_ context.Context, a domain.Activity) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = d.clock.Now()
	}
	select {
	case d.events <- a:
	default:
		metrics.ActivitiesDropped.Inc()
		d.logger.Warn("activity queue is full, dropping record",
			slog.String("event", "activity_dropped"),
			slog.String("type", string(a.Type)))
	}
}

// Run writes queued records until ctx is cancelled, then flushes what is
// still buffered.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case a := <-d.events:
			d.write(ctx, a)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case a := <-d.events:
			d.write(context.Background(), a)
		default:
			return
		}
	}
}

func (d *Dispatcher) write(ctx context.Context, a domain.Activity) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.writeTimeout)
	defer cancel()
	for _, sink := range d.sinks {
		if err := sink.SaveActivity(ctx, a); err != nil {
			metrics.ActivitiesDropped.Inc()
			d.logger.Error("activity sink error",
				slog.String("event", "activity_sink_failed"),
				slog.String("activity_id", a.ID),
				slog.String("type", string(a.Type)),
				slog.Any("error", err))
		}
	}
}
