package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"echopub/internal/core/port"
)

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, port.ErrInvalidInput), errors.Is(err, port.ErrViewsRequired):
		return http.StatusBadRequest
	case errors.Is(err, port.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, port.ErrCampaignNotFound), errors.Is(err, port.ErrUserNotFound),
		errors.Is(err, port.ErrPublicationNotFound), errors.Is(err, port.ErrTransactionNotFound),
		errors.Is(err, port.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, port.ErrAlreadyAttributed), errors.Is(err, port.ErrProofAlreadyAttached),
		errors.Is(err, port.ErrAlreadyValidated), errors.Is(err, port.ErrDuplicateTransaction),
		errors.Is(err, port.ErrInvalidTransition), errors.Is(err, port.ErrInvalidPublicationState),
		errors.Is(err, port.ErrCapacityExhausted):
		return http.StatusConflict
	case errors.Is(err, port.ErrProofNotConforming), errors.Is(err, port.ErrProofMissing),
		errors.Is(err, port.ErrProofWindowExpired), errors.Is(err, port.ErrOutsideTargetZone),
		errors.Is(err, port.ErrCampaignNotActive), errors.Is(err, port.ErrCampaignEnded),
		errors.Is(err, port.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, port.ErrVerificationUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, port.ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a use-case error onto a status code and a reason. Internal
// errors are logged and their text is not returned.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		msg = "internal error"
	}
	writeJSONError(w, status, port.Reason(err), msg)
}

func writeJSONError(w http.ResponseWriter, status int, reason, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg, Reason: reason})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; log and move on
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(port.ErrInvalidInput, err)
	}
	return nil
}
