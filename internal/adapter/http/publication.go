package httpadapter

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"echopub/internal/core/domain"
	"echopub/internal/core/port"
)

func (h *Handler) handleCreatePublication(w http.ResponseWriter, r *http.Request) {
	p, err := h.publications.Create(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "campaignID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, newPublicationResponse(*p))
}

func (h *Handler) handleListPublications(w http.ResponseWriter, r *http.Request) {
	pubs, err := h.publications.ListMine(r.Context(), principalFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]publicationResponse, 0, len(pubs))
	for _, p := range pubs {
		out = append(out, newPublicationResponse(p))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetPublication(w http.ResponseWriter, r *http.Request) {
	p, err := h.publications.Get(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "publicationID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newPublicationResponse(*p))
}

type attachFunc func(ctx context.Context, p domain.Principal, publicationID string, proof port.ProofUpload) (*port.ProofOutcome, error)

func (h *Handler) handleProof1(w http.ResponseWriter, r *http.Request) {
	h.attachProof(w, r, h.publications.AttachProof1)
}

func (h *Handler) handleProof2(w http.ResponseWriter, r *http.Request) {
	h.attachProof(w, r, h.publications.AttachProof2)
}

// attachProof stores the uploaded screenshot and hands it to the use case.
// A rejected proof is removed again.
func (h *Handler) attachProof(w http.ResponseWriter, r *http.Request, attach attachFunc) {
	upload, err := h.uploads.Save(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := attach(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "publicationID"), upload)
	if err != nil {
		h.uploads.Remove(upload)
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, proofResponse{
		Publication: newPublicationResponse(*out.Publication),
		Report:      out.Report,
		Comparison:  out.Comparison,
	})
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.publications.Validate(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "publicationID"), req.Views)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newPublicationResponse(*p))
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.publications.Reject(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "publicationID"), req.Comment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newPublicationResponse(*p))
}
