package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"echopub/internal/core/port"
)

// handleWebhook reconciles a gateway notification. The gateway sends either
// query parameters (GET) or a JSON body (POST). The signature parameter must
// be a token signed with the webhook key; without a key every notification
// is rejected.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req = webhookRequest{
			Status:            q.Get("status"),
			Reference:         q.Get("reference"),
			ExternalReference: q.Get("external_reference"),
			Reason:            q.Get("reason"),
			Operator:          q.Get("operator"),
			Signature:         q.Get("signature"),
		}
	} else if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.verifySignature(req.Signature); err != nil {
		h.logger.Warn("webhook signature rejected",
			slog.String("event", "webhook_rejected"),
			slog.String("reference", req.Reference),
			slog.Any("error", err))
		writeJSONError(w, http.StatusUnauthorized, "invalid_signature", "invalid webhook signature")
		return
	}
	tx, err := h.settlement.HandleWebhook(r.Context(), port.WebhookEvent{
		ExternalReference: req.ExternalReference,
		GatewayReference:  req.Reference,
		Status:            port.GatewayStatus(strings.ToUpper(req.Status)),
		Reason:            req.Reason,
		Operator:          req.Operator,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newTransactionResponse(*tx))
}

func (h *Handler) verifySignature(signature string) error {
	if len(h.webhookKey) == 0 {
		return errors.New("webhook key not configured")
	}
	if signature == "" {
		return errors.New("missing signature")
	}
	_, err := jwt.Parse(signature, func(*jwt.Token) (any, error) {
		return h.webhookKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return err
}
