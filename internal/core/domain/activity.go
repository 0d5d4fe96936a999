package domain

import "time"

// ActivityType names an auditable platform event.
type ActivityType string

const (
	ActivityCampaignCreated      ActivityType = "campaign_created"
	ActivityCampaignSubmitted    ActivityType = "campaign_submitted"
	ActivityCampaignApproved     ActivityType = "campaign_approved"
	ActivityCampaignPaused       ActivityType = "campaign_paused"
	ActivityCampaignCompleted    ActivityType = "campaign_completed"
	ActivityCampaignStopped      ActivityType = "campaign_stopped"
	ActivityPaymentReceived      ActivityType = "payment_received"
	ActivityWithdrawalRequested  ActivityType = "withdrawal_requested"
	ActivityPublicationValidated ActivityType = "publication_validated"
	ActivityPublicationRejected  ActivityType = "publication_rejected"
)

// Activity is a fire-and-forget audit record.
type Activity struct {
	ID            string         `json:"id"`
	Type          ActivityType   `json:"type"`
	Title         string         `json:"title"`
	UserID        string         `json:"user_id,omitempty"`
	CampaignID    string         `json:"campaign_id,omitempty"`
	TransactionID string         `json:"transaction_id,omitempty"`
	PublicationID string         `json:"publication_id,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
