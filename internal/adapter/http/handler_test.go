package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"echopub/internal/adapter/memory"
	"echopub/internal/adapter/usecase"
	"echopub/internal/core/domain"
	"echopub/internal/core/port"
	"echopub/internal/core/port/mocks"
)

const (
	testSecret     = "test-secret"
	testIssuer     = "echopub-test"
	testWebhookKey = "webhook-key"
)

type testServer struct {
	store    *memory.Store
	verifier *mocks.MockProofVerifier
	gateway  *mocks.MockPaymentGateway
	handler  http.Handler
	uploads  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithKey(t, testWebhookKey)
}

func newTestServerWithKey(t *testing.T, webhookKey string) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := &testServer{
		store:    memory.New(),
		verifier: mocks.NewMockProofVerifier(t),
		gateway:  mocks.NewMockPaymentGateway(t),
		uploads:  t.TempDir(),
	}
	activity := mocks.NewMockActivityLogger(t)
	activity.EXPECT().Log(mock.Anything, mock.Anything).Maybe()

	repos := s.store.Repositories()
	pricing := usecase.DefaultPricing()
	clock := usecase.SystemClock{}
	earnings := usecase.NewEarnings(pricing, repos.Publications, repos.Users, logger)
	campaigns := usecase.NewCampaignUseCase(repos.Campaigns, activity, clock, pricing, 100, logger)
	publications := usecase.NewPublicationUseCase(repos, s.verifier, earnings, activity, clock, pricing, logger)
	settlement := usecase.NewSettlementUseCase(usecase.SettlementDeps{
		Repos:     repos,
		Lifecycle: campaigns,
		Gateway:   s.gateway,
		Activity:  activity,
		Clock:     clock,
		Sleeper:   usecase.TimerSleeper{},
		Retry:     usecase.DefaultRetryPolicy(),
		Currency:  "XAF",
		Logger:    logger,
	})
	s.handler = NewHandler(Deps{
		Campaigns:    campaigns,
		Publications: publications,
		Settlement:   settlement,
		Auth:         NewAuthenticator(testSecret, testIssuer),
		Uploads:      Uploads{Dir: s.uploads, PublicURL: "http://localhost:8080", MaxBytes: 1 << 20},
		WebhookKey:   webhookKey,
		Currency:     "XAF",
		Logger:       logger,
	}).Router()

	s.store.PutUser(domain.User{ID: "adv-1", Role: domain.RoleAdvertiser, Balance: decimal.Zero})
	s.store.PutUser(domain.User{ID: "amb-1", Role: domain.RoleAmbassador, City: "Douala", Balance: decimal.NewFromInt(250)})
	return s
}

func token(t *testing.T, subject string, role domain.Role) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: string(role),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/balance", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/balance", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "amb-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             "ambassador",
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	rec = s.do(t, http.MethodGet, "/api/v1/balance", other, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticatorRejectsUnknownRole(t *testing.T) {
	a := NewAuthenticator(testSecret, "")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             string(domain.RoleSystem),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = a.Principal(tok)
	require.Error(t, err)
}

func TestBalance(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/balance", token(t, "amb-1", domain.RoleAmbassador), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[balanceResponse](t, rec)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "XAF", got.Currency)
}

func TestCreateCampaignEndpoint(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{
		"title":           "Launch",
		"target_link":     "https://shop.example.com",
		"target_location": []string{"Douala"},
		"budget":          "10000",
	}

	rec := s.do(t, http.MethodPost, "/api/v1/campaigns", token(t, "adv-1", domain.RoleAdvertiser), body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[campaignResponse](t, rec)
	assert.Equal(t, int64(714), created.ExpectedViews)
	assert.Equal(t, domain.CampaignDraft, created.Status)

	rec = s.do(t, http.MethodGet, "/api/v1/campaigns/"+created.ID, token(t, "adv-1", domain.RoleAdvertiser), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/campaigns", token(t, "amb-1", domain.RoleAmbassador), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body["unexpected"] = true
	rec = s.do(t, http.MethodPost, "/api/v1/campaigns", token(t, "adv-1", domain.RoleAdvertiser), body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/campaigns/missing", token(t, "adv-1", domain.RoleAdvertiser), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "campaign_not_found", decodeBody[errorResponse](t, rec).Reason)
}

func TestChangeStatusConflict(t *testing.T) {
	s := newTestServer(t)
	s.store.PutCampaign(domain.Campaign{
		ID: "c1", AdvertiserID: "adv-1", Status: domain.CampaignCompleted,
		Budget: decimal.NewFromInt(1000), CPV: decimal.NewFromInt(14), CPVAmbassador: decimal.NewFromInt(10),
	})

	rec := s.do(t, http.MethodPatch, "/api/v1/campaigns/c1/status", token(t, "adm-1", domain.RoleAdmin),
		map[string]string{"status": "active"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func seedPublication(t *testing.T, s *testServer) {
	t.Helper()
	s.store.PutCampaign(domain.Campaign{
		ID:             "c1",
		AdvertiserID:   "adv-1",
		TargetLink:     "https://shop.example.com/landing",
		TargetLocation: []string{"Douala"},
		Status:         domain.CampaignActive,
		Budget:         decimal.NewFromInt(10000),
		CPV:            decimal.NewFromInt(14),
		CPVAmbassador:  decimal.NewFromInt(10),
		ExpectedViews:  714,
	})
	require.NoError(t, s.store.CreatePublication(context.Background(), &domain.Publication{
		ID: "p1", AmbassadorID: "amb-1", CampaignID: "c1", Stage: domain.StageNoProof,
	}))
}

func TestClickRedirect(t *testing.T) {
	s := newTestServer(t)
	seedPublication(t, s)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/click/p1", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.7, 172.16.0.1")
	req.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://shop.example.com/landing", rec.Header().Get("Location"))
	clicks := s.store.Clicks()
	require.Len(t, clicks, 1)
	assert.Equal(t, "10.0.0.7", clicks[0].IP)
	assert.Equal(t, "test-agent", clicks[0].UserAgent)

	rec = s.do(t, http.MethodGet, "/api/v1/click/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProofUpload(t *testing.T) {
	s := newTestServer(t)
	seedPublication(t, s)
	s.verifier.EXPECT().Verify(mock.Anything, mock.Anything).
		Return(domain.ConformityReport{StatusMarker: true, ViewsMarker: true}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "screen.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/publications/p1/proof1", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token(t, "amb-1", domain.RoleAmbassador))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decodeBody[proofResponse](t, rec)
	assert.Equal(t, domain.StageProof1Attached, got.Publication.Stage)
	assert.True(t, got.Report.Affirmative())

	entries, err := os.ReadDir(s.uploads)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".png", filepath.Ext(entries[0].Name()))
}

func TestProofUploadRejectsUnsupportedType(t *testing.T) {
	s := newTestServer(t)
	seedPublication(t, s)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/publications/p1/proof1", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token(t, "amb-1", domain.RoleAmbassador))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func seedDeposit(t *testing.T, s *testServer) {
	t.Helper()
	s.store.PutCampaign(domain.Campaign{
		ID: "c1", AdvertiserID: "adv-1", Status: domain.CampaignDraft,
		Budget: decimal.NewFromInt(10000), CPV: decimal.NewFromInt(14), CPVAmbassador: decimal.NewFromInt(10),
		ExpectedViews: 714,
	})
	require.NoError(t, s.store.CreateTransaction(context.Background(), &domain.Transaction{
		ID:                "tx-1",
		Reference:         "DEP-1",
		ExternalReference: "ext-1",
		UserID:            "adv-1",
		CampaignID:        "c1",
		Type:              domain.TransactionDeposit,
		Amount:            decimal.NewFromInt(10000),
		Currency:          "XAF",
		Status:            domain.TransactionPending,
		Method:            domain.MethodMTN,
	}))
}

func webhookSignature(t *testing.T, key string) string {
	t.Helper()
	sig, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iat": time.Now().Unix()}).
		SignedString([]byte(key))
	require.NoError(t, err)
	return sig
}

func TestWebhookConfirmsDeposit(t *testing.T) {
	s := newTestServer(t)
	seedDeposit(t, s)

	q := url.Values{
		"status":             {"successful"},
		"reference":          {"gw-9"},
		"external_reference": {"ext-1"},
		"operator":           {"MTN"},
		"signature":          {webhookSignature(t, testWebhookKey)},
	}
	rec := s.do(t, http.MethodGet, "/api/v1/payments/webhook?"+q.Encode(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[transactionResponse](t, rec)
	assert.Equal(t, domain.TransactionConfirmed, got.Status)

	c, err := s.store.GetCampaign(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignSubmitted, c.Status)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	s := newTestServer(t)
	seedDeposit(t, s)

	rec := s.do(t, http.MethodPost, "/api/v1/payments/webhook", "", webhookRequest{
		Status:            "SUCCESSFUL",
		ExternalReference: "ext-1",
		Signature:         webhookSignature(t, "wrong-key"),
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/payments/webhook", "", webhookRequest{
		Status:            "SUCCESSFUL",
		ExternalReference: "ext-1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tx, err := s.store.GetTransactionByReference(context.Background(), "DEP-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionPending, tx.Status)
}

func TestWebhookWithoutKeyRejectsEverything(t *testing.T) {
	s := newTestServerWithKey(t, "")
	ctx := context.Background()
	seedDeposit(t, s)
	require.NoError(t, s.store.CreateTransaction(ctx, &domain.Transaction{
		ID:                "tx-2",
		Reference:         "WD-1",
		ExternalReference: "WD-1",
		UserID:            "amb-1",
		AmbassadorID:      "amb-1",
		Type:              domain.TransactionWithdrawal,
		Amount:            decimal.NewFromInt(100),
		Currency:          "XAF",
		Status:            domain.TransactionPending,
		Method:            domain.MethodOrange,
	}))
	_, err := s.store.AcceptWithdrawal(ctx, "tx-2", "gw-2")
	require.NoError(t, err)

	for _, q := range []url.Values{
		{"status": {"FAILED"}, "external_reference": {"WD-1"}},
		{"status": {"SUCCESSFUL"}, "external_reference": {"ext-1"}},
		{"status": {"SUCCESSFUL"}, "external_reference": {"ext-1"}, "signature": {webhookSignature(t, "guessed-key")}},
	} {
		rec := s.do(t, http.MethodGet, "/api/v1/payments/webhook?"+q.Encode(), "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, q.Encode())
	}

	rec := s.do(t, http.MethodGet, "/api/v1/balance", token(t, "amb-1", domain.RoleAmbassador), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[balanceResponse](t, rec)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(150)), "balance %s", got.Balance)

	wd, err := s.store.GetTransactionByReference(ctx, "WD-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionPending, wd.Status)
	dep, err := s.store.GetTransactionByReference(ctx, "DEP-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionPending, dep.Status)
}

func TestCheckStatusOwnerOnly(t *testing.T) {
	s := newTestServer(t)
	seedDeposit(t, s)

	rec := s.do(t, http.MethodGet, "/api/v1/transactions/status/DEP-1", token(t, "amb-1", domain.RoleAmbassador), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/transactions/status/DEP-1", token(t, "adv-1", domain.RoleAdvertiser), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{port.ErrInvalidInput, http.StatusBadRequest},
		{port.ErrForbidden, http.StatusForbidden},
		{port.ErrPublicationNotFound, http.StatusNotFound},
		{port.ErrAlreadyAttributed, http.StatusConflict},
		{port.ErrOutsideTargetZone, http.StatusUnprocessableEntity},
		{port.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{port.ErrVerificationUnavailable, http.StatusServiceUnavailable},
		{port.ErrGateway, http.StatusBadGateway},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "%v", tt.err)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	_ = s.do(t, http.MethodGet, "/api/v1/balance", token(t, "amb-1", domain.RoleAmbassador), nil)

	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_request_duration_seconds")
}
