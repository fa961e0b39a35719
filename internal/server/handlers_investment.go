package server

import (
	"net/http"

	"github.com/bobmcallan/budgeter/internal/models"
)

// handleTransactions handles GET (list) and POST (create) on /api/investments/transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodGet {
		page, ok := PageParams(w, r)
		if !ok {
			return
		}
		txs, err := s.app.InvestmentService.ListTransactions(ctx, page)
		if err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, txs)
		return
	}

	var req models.InvestmentTransactionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	tx, err := s.app.InvestmentService.CreateTransaction(ctx, req)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, tx)
}

// handleTransaction handles GET, PUT and DELETE on /api/investments/transactions/{id}.
func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		tx, err := s.app.InvestmentService.GetTransaction(ctx, id)
		if err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, tx)

	case http.MethodPut:
		var req models.InvestmentTransactionRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		tx, err := s.app.InvestmentService.UpdateTransaction(ctx, id, req)
		if err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, tx)

	case http.MethodDelete:
		if err := s.app.InvestmentService.DeleteTransaction(ctx, id); err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleInvestmentList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	page, ok := PageParams(w, r)
	if !ok {
		return
	}
	invs, err := s.app.InvestmentService.ListInvestments(r.Context(), page)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, invs)
}

func (s *Server) handleInvestmentGet(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	inv, err := s.app.InvestmentService.GetInvestment(r.Context(), id)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, inv)
}

func (s *Server) handleAssetList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	assets, err := s.app.InvestmentService.ListAssets(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"assets": assets, "count": len(assets)})
}
