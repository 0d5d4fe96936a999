package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stage is the position of a publication in the proof workflow. It replaces
// the overloaded status field: proof progress and review outcome are
// distinct stages, so no state is ambiguous.
type Stage string

const (
	StageNoProof        Stage = "no_proof"
	StageProof1Attached Stage = "proof1_attached"
	StageProof2Attached Stage = "proof2_attached"
	StageValidated      Stage = "validated"
	StageRejected       Stage = "rejected"
)

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool {
	return s == StageValidated || s == StageRejected
}

// PublicationStatus is the coarse status exposed to clients.
type PublicationStatus string

const (
	PublicationPublished PublicationStatus = "published"
	PublicationSubmitted PublicationStatus = "submitted"
	PublicationValidated PublicationStatus = "validated"
	PublicationRejected  PublicationStatus = "rejected"
)

// Status maps the stage onto the client-facing status.
func (s Stage) Status() PublicationStatus {
	switch s {
	case StageProof2Attached:
		return PublicationSubmitted
	case StageValidated:
		return PublicationValidated
	case StageRejected:
		return PublicationRejected
	default:
		return PublicationPublished
	}
}

// Publication is one ambassador's attempt to fulfil a campaign.
type Publication struct {
	ID               string
	AmbassadorID     string
	CampaignID       string
	Stage            Stage
	ScreenshotURL    string
	ScreenshotURL2   string
	ScreenshotPath   string
	ScreenshotPath2  string
	ViewsCount       *int64 // admin-entered, final
	OCRViews1        *int64 // advisory
	OCRViews2        *int64 // advisory
	HashDistance     *int
	ProofsConsistent *bool
	ClicksCount      int64
	AmountEarned     decimal.Decimal
	TargetViews      int64
	Comment          string
	Proof1At         *time.Time
	SubmittedAt      *time.Time
	ValidatedAt      *time.Time
	ValidatedBy      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Status returns the client-facing status.
func (p Publication) Status() PublicationStatus {
	return p.Stage.Status()
}

// HasBothProofs reports whether both screenshot slots are filled.
func (p Publication) HasBothProofs() bool {
	return p.ScreenshotURL != "" && p.ScreenshotURL2 != ""
}
