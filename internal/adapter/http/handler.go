package httpadapter

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"echopub/internal/core/port"
	"echopub/internal/metrics"
)

// Deps are the collaborators of the HTTP adapter.
type Deps struct {
	Campaigns    port.CampaignUseCase
	Publications port.PublicationUseCase
	Settlement   port.SettlementUseCase
	Auth         *Authenticator
	Uploads      Uploads
	// WebhookKey verifies the signature of gateway notifications. Empty
	// rejects every notification.
	WebhookKey string
	Currency   string
	Logger     *slog.Logger
}

// Handler contains dependencies and routes. It is an inbound adapter for HTTP.
type Handler struct {
	campaigns    port.CampaignUseCase
	publications port.PublicationUseCase
	settlement   port.SettlementUseCase
	uploads      Uploads
	webhookKey   []byte
	currency     string
	logger       *slog.Logger
	router       chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(d Deps) *Handler {
	h := &Handler{
		campaigns:    d.Campaigns,
		publications: d.Publications,
		settlement:   d.Settlement,
		uploads:      d.Uploads,
		webhookKey:   []byte(d.WebhookKey),
		currency:     d.Currency,
		logger:       d.Logger,
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observeResponseTime)

	r.Handle("/metrics", promhttp.Handler())
	if h.uploads.Dir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.uploads.Dir))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/click/{publicationID}", h.handleClick)
		r.Get("/payments/webhook", h.handleWebhook)
		r.Post("/payments/webhook", h.handleWebhook)

		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Middleware)

			r.Post("/campaigns", h.handleCreateCampaign)
			r.Get("/campaigns/available", h.handleAvailableCampaigns)
			r.Get("/campaigns/{campaignID}", h.handleGetCampaign)
			r.Patch("/campaigns/{campaignID}/status", h.handleChangeStatus)
			r.Post("/campaigns/{campaignID}/publications", h.handleCreatePublication)

			r.Get("/publications", h.handleListPublications)
			r.Get("/publications/{publicationID}", h.handleGetPublication)
			r.Post("/publications/{publicationID}/proof1", h.handleProof1)
			r.Post("/publications/{publicationID}/proof2", h.handleProof2)
			r.Post("/publications/{publicationID}/validate", h.handleValidate)
			r.Post("/publications/{publicationID}/reject", h.handleReject)

			r.Post("/transactions/deposit", h.handleDeposit)
			r.Post("/transactions/withdraw", h.handleWithdraw)
			r.Get("/transactions", h.handleListTransactions)
			r.Get("/transactions/status/{reference}", h.handleCheckStatus)
			r.Get("/balance", h.handleBalance)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

// observeResponseTime records request latency by route pattern.
func observeResponseTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.ResponseTime.WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
