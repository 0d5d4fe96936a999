package domain

import (
	"time"
)

// ClickEvent is a record of a visit through an ambassador's tracking link.
// Visitor details are kept as received and are not used for billing.
type ClickEvent struct {
	ID            string
	PublicationID string
	IP            string
	UserAgent     string
	Referer       string
	CreatedAt     time.Time
}
