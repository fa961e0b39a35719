package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/budgeter/internal/common"
)

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Investments
	limiter := newImportLimiter(s.app.Config.Server.ImportRateLimit, s.app.Config.Server.ImportBurst)
	mux.Handle("/api/investments/import", rateLimitMiddleware(limiter)(http.HandlerFunc(s.handleImport)))
	mux.HandleFunc("/api/investments/transactions/", s.routeTransactions)
	mux.HandleFunc("/api/investments/transactions", s.handleTransactions)
	mux.HandleFunc("/api/investments/", s.routeInvestments)
	mux.HandleFunc("/api/investments", s.handleInvestmentList)
	mux.HandleFunc("/api/assets", s.handleAssetList)

	// Budget
	mux.HandleFunc("/api/expenses/", s.routeExpenses)
	mux.HandleFunc("/api/expenses", s.handleExpenses)
	mux.HandleFunc("/api/incomes/", s.routeIncomes)
	mux.HandleFunc("/api/incomes", s.handleIncomes)
}

// routeTransactions dispatches /api/investments/transactions/{id}.
func (s *Server) routeTransactions(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/investments/transactions/")
	if id == "" {
		s.handleTransactions(w, r)
		return
	}
	if strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handleTransaction(w, r, id)
}

// routeInvestments dispatches /api/investments/{id}.
func (s *Server) routeInvestments(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/investments/")
	if id == "" {
		s.handleInvestmentList(w, r)
		return
	}
	if strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handleInvestmentGet(w, r, id)
}

func (s *Server) routeExpenses(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/expenses/", "")
	if id == "" {
		s.handleExpenses(w, r)
		return
	}
	s.handleExpense(w, r, id)
}

func (s *Server) routeIncomes(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/incomes/", "")
	if id == "" {
		s.handleIncomes(w, r)
		return
	}
	s.handleIncome(w, r, id)
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	resp := map[string]string{"status": "ok"}
	if s.app.Storage != nil {
		resp["storage"] = s.app.Storage.Backend()
	}
	if !s.app.StartupTime.IsZero() {
		resp["uptime"] = time.Since(s.app.StartupTime).Round(time.Second).String()
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}
