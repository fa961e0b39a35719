package server

import (
	"net/http"

	"github.com/bobmcallan/budgeter/internal/models"
)

// handleExpenses handles GET (list) and POST (create) on /api/expenses.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodGet {
		page, ok := PageParams(w, r)
		if !ok {
			return
		}
		list, err := s.app.BudgetService.ListExpenses(ctx, page)
		if err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, list)
		return
	}

	var req models.BudgetEntryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	e, err := s.app.BudgetService.CreateExpense(ctx, req)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, e)
}

func (s *Server) handleExpense(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		e, err := s.app.BudgetService.GetExpense(ctx, id)
		if err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, e)
	case http.MethodPut:
		var req models.BudgetEntryRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		e, err := s.app.BudgetService.UpdateExpense(ctx, id, req)
		if err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, e)
	case http.MethodDelete:
		if err := s.app.BudgetService.DeleteExpense(ctx, id); err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleIncomes handles GET (list) and POST (create) on /api/incomes.
func (s *Server) handleIncomes(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodGet {
		page, ok := PageParams(w, r)
		if !ok {
			return
		}
		list, err := s.app.BudgetService.ListIncomes(ctx, page)
		if err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, list)
		return
	}

	var req models.BudgetEntryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	inc, err := s.app.BudgetService.CreateIncome(ctx, req)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, inc)
}

func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		inc, err := s.app.BudgetService.GetIncome(ctx, id)
		if err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, inc)
	case http.MethodPut:
		var req models.BudgetEntryRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		inc, err := s.app.BudgetService.UpdateIncome(ctx, id, req)
		if err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, inc)
	case http.MethodDelete:
		if err := s.app.BudgetService.DeleteIncome(ctx, id); err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
