package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"echopub/internal/core/port"
)

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.settlement.InitiateDeposit(r.Context(), principalFrom(r.Context()), port.DepositRequest{
		CampaignID: req.CampaignID,
		Method:     req.Method,
		Phone:      req.Phone,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, newSettlementResponse(*res))
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.settlement.InitiateWithdrawal(r.Context(), principalFrom(r.Context()), port.WithdrawalRequest{
		Amount: req.Amount,
		Method: req.Method,
		Phone:  req.Phone,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, newSettlementResponse(*res))
}

func (h *Handler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.settlement.ListTransactions(r.Context(), principalFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, newTransactionResponse(t))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCheckStatus(w http.ResponseWriter, r *http.Request) {
	res, err := h.settlement.CheckStatus(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "reference"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newSettlementResponse(*res))
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.settlement.GetBalance(r.Context(), principalFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, balanceResponse{Balance: balance, Currency: h.currency})
}
