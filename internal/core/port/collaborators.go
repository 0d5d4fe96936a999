package port

import (
	"context"
	"time"

	"echopub/internal/core/domain"
)

// ProofVerifier analyses proof images. Both methods wrap
// ErrVerificationUnavailable when the tooling itself fails (unreadable
// file, OCR failure); a report with all heuristics false is not an error.
type ProofVerifier interface {
	Verify(ctx context.Context, imagePath string) (domain.ConformityReport, error)
	Compare(ctx context.Context, firstPath, secondPath string) (domain.ProofComparison, error)
}

// ActivityLogger records audit events. Log must not block and never fails
// the calling operation.
type ActivityLogger interface {
	Log(ctx context.Context, activity domain.Activity)
}

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

// Sleeper waits between gateway polls. It returns early with ctx.Err() if
// the context is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}
