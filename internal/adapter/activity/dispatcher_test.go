package activity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echopub/internal/adapter/memory"
	"echopub/internal/core/domain"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type failingSink struct {
	mu    sync.Mutex
	calls int
}

func (s *failingSink) SaveActivity(context.Context, domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return errors.New("broker down")
}

func (s *failingSink) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcherWritesToEverySink(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	store := memory.New()
	failing := &failingSink{}
	d := NewDispatcher(fixedClock{now}, 8, time.Second, discard(), failing, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	d.Log(ctx, domain.Activity{Type: domain.ActivityCampaignCreated, CampaignID: "c1"})
	d.Log(ctx, domain.Activity{Type: domain.ActivityPaymentReceived, CampaignID: "c1"})

	require.Eventually(t, func() bool { return len(store.Activities()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	got := store.Activities()
	assert.Equal(t, domain.ActivityCampaignCreated, got[0].Type)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, now, got[0].CreatedAt)
	assert.Equal(t, 2, failing.Calls(), "a failing sink does not stop the others")
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	store := memory.New()
	d := NewDispatcher(fixedClock{time.Now()}, 1, time.Second, discard(), store)

	d.Log(context.Background(), domain.Activity{Type: domain.ActivityCampaignCreated})
	d.Log(context.Background(), domain.Activity{Type: domain.ActivityCampaignSubmitted})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	got := store.Activities()
	require.Len(t, got, 1)
	assert.Equal(t, domain.ActivityCampaignCreated, got[0].Type)
}
