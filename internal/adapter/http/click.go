package httpadapter

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"echopub/internal/core/port"
)

// handleClick records a visit through an ambassador link and redirects to
// the campaign target link. Unknown publications result in HTTP 404.
func (h *Handler) handleClick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "publicationID")
	if id == "" {
		http.Error(w, "missing publication", http.StatusBadRequest)
		return
	}
	target, err := h.publications.RegisterClick(r.Context(), id, port.ClickMeta{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
	})
	if err != nil {
		if !errors.Is(err, port.ErrPublicationNotFound) && !errors.Is(err, port.ErrCampaignNotFound) {
			h.writeError(w, r, err)
			return
		}
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(ip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
