package verifier

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/rwcarlsen/goexif/exif"

	"echopub/internal/core/domain"
	"echopub/internal/core/port"
	"echopub/internal/metrics"
)

// Verifier implements port.ProofVerifier with OCR heuristics, EXIF capture
// time and perceptual hashing.
type Verifier struct {
	ocr     TextExtractor
	timeout time.Duration
	logger  *slog.Logger
}

func New(ocr TextExtractor, timeout time.Duration, logger *slog.Logger) *Verifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Verifier{ocr: ocr, timeout: timeout, logger: logger}
}

func (v *Verifier) Verify(ctx context.Context, imagePath string) (domain.ConformityReport, error) {
	text, err := v.extract(ctx, imagePath)
	if err != nil {
		metrics.ProofChecks.WithLabelValues("unavailable").Inc()
		return domain.ConformityReport{}, err
	}
	report := Inspect(text)
	report.CapturedAt = capturedAt(imagePath)

	result := "non_conforming"
	if report.Affirmative() {
		result = "conforming"
	}
	metrics.ProofChecks.WithLabelValues(result).Inc()
	v.logger.Debug("proof inspected",
		slog.String("path", imagePath),
		slog.Bool("status_marker", report.StatusMarker),
		slog.Bool("views_marker", report.ViewsMarker),
		slog.Bool("time_marker", report.RelativeTimeMarker))
	return report, nil
}

// Compare hashes both images and reads the view counts. Unreadable text only
// leaves the counts empty; an unreadable image is an error.
func (v *Verifier) Compare(ctx context.Context, firstPath, secondPath string) (domain.ProofComparison, error) {
	h1, err := perceptionHash(firstPath)
	if err != nil {
		return domain.ProofComparison{}, err
	}
	h2, err := perceptionHash(secondPath)
	if err != nil {
		return domain.ProofComparison{}, err
	}
	distance, err := h1.Distance(h2)
	if err != nil {
		return domain.ProofComparison{}, fmt.Errorf("%w: %v", port.ErrVerificationUnavailable, err)
	}
	cmp := domain.ProofComparison{
		Hash1:        h1.ToString(),
		Hash2:        h2.ToString(),
		HashDistance: distance,
	}
	if text, err := v.extract(ctx, firstPath); err == nil {
		cmp.Views1 = ExtractViews(text)
	} else {
		v.logger.Warn("proof text unavailable", slog.String("path", firstPath), slog.Any("error", err))
	}
	if text, err := v.extract(ctx, secondPath); err == nil {
		cmp.Views2 = ExtractViews(text)
	} else {
		v.logger.Warn("proof text unavailable", slog.String("path", secondPath), slog.Any("error", err))
	}
	return cmp, nil
}

func (v *Verifier) extract(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	text, err := v.ocr.Extract(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", port.ErrVerificationUnavailable, err)
	}
	return text, nil
}

func perceptionHash(path string) (*goimagehash.ImageHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrVerificationUnavailable, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", port.ErrVerificationUnavailable, path, err)
	}
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("%w: hash %s: %v", port.ErrVerificationUnavailable, path, err)
	}
	return h, nil
}

// capturedAt reads the EXIF DateTime tag. Screenshots rarely carry one, so a
// missing tag is not an error.
func capturedAt(path string) *time.Time {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	x, err := exif.Decode(f)
	if err != nil {
		return nil
	}
	t, err := x.DateTime()
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
