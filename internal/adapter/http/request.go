package httpadapter

import (
	"time"

	"github.com/shopspring/decimal"

	"echopub/internal/core/domain"
	"echopub/internal/core/port"
)

type createCampaignRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	MediaURL       string          `json:"media_url"`
	TargetLink     string          `json:"target_link"`
	LocationType   string          `json:"location_type"`
	TargetLocation []string        `json:"target_location"`
	Budget         decimal.Decimal `json:"budget"`
	StartDate      *time.Time      `json:"start_date"`
	EndDate        *time.Time      `json:"end_date"`
}

func (r createCampaignRequest) toPort() port.NewCampaign {
	return port.NewCampaign{
		Title:          r.Title,
		Description:    r.Description,
		MediaURL:       r.MediaURL,
		TargetLink:     r.TargetLink,
		LocationType:   r.LocationType,
		TargetLocation: r.TargetLocation,
		Budget:         r.Budget,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
	}
}

type changeStatusRequest struct {
	Status domain.CampaignStatus `json:"status"`
}

type validateRequest struct {
	Views *int64 `json:"views_count"`
}

type rejectRequest struct {
	Comment string `json:"comment"`
}

type depositRequest struct {
	CampaignID string               `json:"campaign_id"`
	Method     domain.PaymentMethod `json:"method"`
	Phone      string               `json:"phone"`
}

type withdrawalRequest struct {
	Amount decimal.Decimal      `json:"amount"`
	Method domain.PaymentMethod `json:"method"`
	Phone  string               `json:"phone"`
}

// webhookRequest accepts both the JSON body and the query-string form of a
// gateway notification.
type webhookRequest struct {
	Status            string `json:"status"`
	Reference         string `json:"reference"`
	ExternalReference string `json:"external_reference"`
	Reason            string `json:"reason"`
	Operator          string `json:"operator"`
	Signature         string `json:"signature"`
}

type campaignResponse struct {
	ID                  string                `json:"id"`
	AdvertiserID        string                `json:"advertiser_id"`
	Title               string                `json:"title"`
	Description         string                `json:"description,omitempty"`
	MediaURL            string                `json:"media_url,omitempty"`
	TargetLink          string                `json:"target_link"`
	LocationType        string                `json:"location_type,omitempty"`
	TargetLocation      []string              `json:"target_location"`
	Budget              decimal.Decimal       `json:"budget"`
	CPV                 decimal.Decimal       `json:"cpv"`
	CPVAmbassador       decimal.Decimal       `json:"cpv_ambassador"`
	ExpectedViews       int64                 `json:"expected_views"`
	NumberViewsAssigned int64                 `json:"number_views_assigned"`
	CampaignTest        bool                  `json:"campaign_test"`
	Status              domain.CampaignStatus `json:"status"`
	StartDate           *time.Time            `json:"start_date,omitempty"`
	EndDate             *time.Time            `json:"end_date,omitempty"`
	CompletedAt         *time.Time            `json:"completed_at,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
}

func newCampaignResponse(c domain.Campaign) campaignResponse {
	return campaignResponse{
		ID:                  c.ID,
		AdvertiserID:        c.AdvertiserID,
		Title:               c.Title,
		Description:         c.Description,
		MediaURL:            c.MediaURL,
		TargetLink:          c.TargetLink,
		LocationType:        c.LocationType,
		TargetLocation:      c.TargetLocation,
		Budget:              c.Budget,
		CPV:                 c.CPV,
		CPVAmbassador:       c.CPVAmbassador,
		ExpectedViews:       c.ExpectedViews,
		NumberViewsAssigned: c.NumberViewsAssigned,
		CampaignTest:        c.CampaignTest,
		Status:              c.Status,
		StartDate:           c.StartDate,
		EndDate:             c.EndDate,
		CompletedAt:         c.CompletedAt,
		CreatedAt:           c.CreatedAt,
	}
}

type availableCampaignResponse struct {
	Campaign         campaignResponse `json:"campaign"`
	OfferedViews     int64            `json:"offered_views"`
	ExpectedEarnings decimal.Decimal  `json:"expected_earnings"`
}

type availableCampaignsResponse struct {
	Campaigns    []availableCampaignResponse `json:"campaigns"`
	Trial        bool                        `json:"trial"`
	TrialOngoing bool                        `json:"trial_ongoing"`
}

func newAvailableCampaignsResponse(a port.AvailableCampaigns) availableCampaignsResponse {
	out := availableCampaignsResponse{
		Campaigns:    make([]availableCampaignResponse, 0, len(a.Campaigns)),
		Trial:        a.Trial,
		TrialOngoing: a.TrialOngoing,
	}
	for _, c := range a.Campaigns {
		out.Campaigns = append(out.Campaigns, availableCampaignResponse{
			Campaign:         newCampaignResponse(c.Campaign),
			OfferedViews:     c.OfferedViews,
			ExpectedEarnings: c.ExpectedEarnings,
		})
	}
	return out
}

type publicationResponse struct {
	ID               string                   `json:"id"`
	AmbassadorID     string                   `json:"ambassador_id"`
	CampaignID       string                   `json:"campaign_id"`
	Status           domain.PublicationStatus `json:"status"`
	Stage            domain.Stage             `json:"stage"`
	ScreenshotURL    string                   `json:"screenshot_url,omitempty"`
	ScreenshotURL2   string                   `json:"screenshot_url2,omitempty"`
	ViewsCount       *int64                   `json:"views_count,omitempty"`
	OCRViews1        *int64                   `json:"ocr_views1,omitempty"`
	OCRViews2        *int64                   `json:"ocr_views2,omitempty"`
	HashDistance     *int                     `json:"hash_distance,omitempty"`
	ProofsConsistent *bool                    `json:"proofs_consistent,omitempty"`
	ClicksCount      int64                    `json:"clicks_count"`
	AmountEarned     decimal.Decimal          `json:"amount_earned"`
	TargetViews      int64                    `json:"target_views"`
	Comment          string                   `json:"comment,omitempty"`
	SubmittedAt      *time.Time               `json:"submitted_at,omitempty"`
	ValidatedAt      *time.Time               `json:"validated_at,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
}

func newPublicationResponse(p domain.Publication) publicationResponse {
	return publicationResponse{
		ID:               p.ID,
		AmbassadorID:     p.AmbassadorID,
		CampaignID:       p.CampaignID,
		Status:           p.Status(),
		Stage:            p.Stage,
		ScreenshotURL:    p.ScreenshotURL,
		ScreenshotURL2:   p.ScreenshotURL2,
		ViewsCount:       p.ViewsCount,
		OCRViews1:        p.OCRViews1,
		OCRViews2:        p.OCRViews2,
		HashDistance:     p.HashDistance,
		ProofsConsistent: p.ProofsConsistent,
		ClicksCount:      p.ClicksCount,
		AmountEarned:     p.AmountEarned,
		TargetViews:      p.TargetViews,
		Comment:          p.Comment,
		SubmittedAt:      p.SubmittedAt,
		ValidatedAt:      p.ValidatedAt,
		CreatedAt:        p.CreatedAt,
	}
}

type proofResponse struct {
	Publication publicationResponse     `json:"publication"`
	Report      domain.ConformityReport `json:"report"`
	Comparison  *domain.ProofComparison `json:"comparison,omitempty"`
}

type transactionResponse struct {
	ID                string                   `json:"id"`
	Reference         string                   `json:"reference"`
	ExternalReference string                   `json:"external_reference"`
	Type              domain.TransactionType   `json:"type"`
	Amount            decimal.Decimal          `json:"amount"`
	Currency          string                   `json:"currency"`
	Status            domain.TransactionStatus `json:"status"`
	Method            domain.PaymentMethod     `json:"method"`
	CampaignID        string                   `json:"campaign_id,omitempty"`
	PublicationID     string                   `json:"publication_id,omitempty"`
	ErrorMessage      string                   `json:"error_message,omitempty"`
	TimedOut          bool                     `json:"timed_out,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
}

func newTransactionResponse(t domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:                t.ID,
		Reference:         t.Reference,
		ExternalReference: t.ExternalReference,
		Type:              t.Type,
		Amount:            t.Amount,
		Currency:          t.Currency,
		Status:            t.Status,
		Method:            t.Method,
		CampaignID:        t.CampaignID,
		PublicationID:     t.PublicationID,
		ErrorMessage:      t.ErrorMessage,
		TimedOut:          t.TimedOut,
		CreatedAt:         t.CreatedAt,
	}
}

type instructionsResponse struct {
	USSDCode string `json:"ussd_code,omitempty"`
	Operator string `json:"operator,omitempty"`
}

type settlementResponse struct {
	Transaction  transactionResponse   `json:"transaction"`
	Instructions *instructionsResponse `json:"instructions,omitempty"`
}

func newSettlementResponse(res port.SettlementResult) settlementResponse {
	out := settlementResponse{Transaction: newTransactionResponse(*res.Transaction)}
	if res.Instructions != nil {
		out.Instructions = &instructionsResponse{USSDCode: res.Instructions.USSDCode, Operator: res.Instructions.Operator}
	}
	return out
}

type balanceResponse struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}
