package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenses_CRUD(t *testing.T) {
	s, deps := newTestServer(nil)

	rr := serve(s, http.MethodPost, "/api/expenses", `{"amount":"12.50","name":"Lunch","category":"needs","tags":["food"]}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"category":"NEEDS"`)
	assert.Len(t, deps.budget.expenses, 1)

	rr = serve(s, http.MethodPut, "/api/expenses/exp-1", `{"amount":"15","name":"Dinner","category":"WANTS"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "Dinner")

	rr = serve(s, http.MethodGet, "/api/expenses", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total_items":1`)

	rr = serve(s, http.MethodDelete, "/api/expenses/exp-1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(s, http.MethodGet, "/api/expenses/exp-1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestExpenses_InvalidEntryIs400(t *testing.T) {
	s, _ := newTestServer(nil)
	rr := serve(s, http.MethodPost, "/api/expenses", `{"amount":"12.50","name":"Lunch","category":"LUXURY"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(s, http.MethodPost, "/api/expenses", `{"amount":"12.50","name":"Lunch","category":"NEEDS","tags":["YACHTS"]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestIncomes_Routes(t *testing.T) {
	s, _ := newTestServer(nil)

	rr := serve(s, http.MethodPost, "/api/incomes", `{"amount":"3000","name":"Salary","category":"SALARY"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = serve(s, http.MethodGet, "/api/incomes", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(s, http.MethodGet, "/api/incomes/inc-9", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(s, http.MethodPatch, "/api/incomes/inc-9", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
