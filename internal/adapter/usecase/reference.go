package usecase

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	depositPrefix    = "TXECHO"
	withdrawalPrefix = "WDECHO"
	paymentPrefix    = "PAYECHO"
)

// newReference builds "<prefix>-<unix millis>-<random hex>". The random part
// comes from a v4 uuid; the storage layer still enforces uniqueness.
func newReference(prefix string, now time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), strings.ToUpper(hex.EncodeToString(id[:6])))
}
