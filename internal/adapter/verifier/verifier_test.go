package verifier

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echopub/internal/core/port"
	"echopub/internal/metrics"
)

type stubOCR map[string]string

func (s stubOCR) Extract(_ context.Context, path string) (string, error) {
	text, ok := s[path]
	if !ok {
		return "", errors.New("no text")
	}
	return text, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writePNG(t *testing.T, name string, fill func(x, y int) uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: fill(x, y)})
		}
	}
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name                 string
		text                 string
		status, views, timed bool
	}{
		{"french status", "Mon statut\n12 vues\nil y a 5 min", true, true, true},
		{"english status", "Status · Views 30 · 2 min", true, true, true},
		{"seen by", "vu par 40", false, true, false},
		{"hour marker only", "1 heure", false, false, true},
		{"nothing", "hello world", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Inspect(tt.text)
			assert.Equal(t, tt.status, r.StatusMarker)
			assert.Equal(t, tt.views, r.ViewsMarker)
			assert.Equal(t, tt.timed, r.RelativeTimeMarker)
		})
	}
}

func TestExtractViews(t *testing.T) {
	require.NotNil(t, ExtractViews("Statut 12 vues"))
	assert.Equal(t, int64(12), *ExtractViews("Statut 12 vues"))
	assert.Equal(t, int64(340), *ExtractViews("340 VU PAR"))
	assert.Nil(t, ExtractViews("vu par personne"))
	assert.Nil(t, ExtractViews(""))
}

func TestVerifyUnavailable(t *testing.T) {
	v := New(stubOCR{}, 0, discard())
	before := testutil.ToFloat64(metrics.ProofChecks.WithLabelValues("unavailable"))
	_, err := v.Verify(context.Background(), "/missing.png")
	require.ErrorIs(t, err, port.ErrVerificationUnavailable)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ProofChecks.WithLabelValues("unavailable")))
}

func TestVerifyReport(t *testing.T) {
	path := writePNG(t, "p1.png", func(x, _ int) uint8 { return uint8(x * 4) })
	v := New(stubOCR{path: "Statut\n25 vues\nil y a 3 min"}, 0, discard())

	before := testutil.ToFloat64(metrics.ProofChecks.WithLabelValues("conforming"))
	r, err := v.Verify(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, r.Affirmative())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ProofChecks.WithLabelValues("conforming")))
	assert.True(t, r.StatusMarker && r.ViewsMarker && r.RelativeTimeMarker)
	assert.Nil(t, r.CapturedAt, "png screenshots carry no exif")
}

func TestCompare(t *testing.T) {
	horizontal := func(x, _ int) uint8 { return uint8(x * 4) }
	first := writePNG(t, "a.png", horizontal)
	same := writePNG(t, "b.png", horizontal)
	other := writePNG(t, "c.png", func(x, y int) uint8 {
		if (x/16+y/16)%2 == 0 {
			return 255
		}
		return 0
	})
	v := New(stubOCR{first: "12 vues", same: "vu par 58"}, 0, discard())

	cmp, err := v.Compare(context.Background(), first, same)
	require.NoError(t, err)
	assert.Zero(t, cmp.HashDistance)
	assert.Equal(t, cmp.Hash1, cmp.Hash2)
	require.NotNil(t, cmp.Views1)
	require.NotNil(t, cmp.Views2)
	assert.Equal(t, int64(12), *cmp.Views1)
	assert.Equal(t, int64(58), *cmp.Views2)
	assert.True(t, cmp.Consistent(10))

	cmp, err = v.Compare(context.Background(), first, other)
	require.NoError(t, err)
	assert.Positive(t, cmp.HashDistance)
	assert.Nil(t, cmp.Views2, "missing text leaves the count empty")

	_, err = v.Compare(context.Background(), first, filepath.Join(t.TempDir(), "gone.png"))
	require.ErrorIs(t, err, port.ErrVerificationUnavailable)
}
