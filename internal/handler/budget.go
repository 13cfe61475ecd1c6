package handler

import (
	"net/http"
	"strings"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/view"
)

// BudgetRequest is the body of POST /budget: an amount per expense category.
// Unknown categories are ignored and missing ones count as zero.
type BudgetRequest struct {
	Expenses map[string]float64 `json:"expenses"`
}

// BudgetResponse is the computed breakdown plus the currency it is shown in.
type BudgetResponse struct {
	Currency string `json:"currency"`
	view.Breakdown
}

// PostBudget handles POST /budget. Nothing is stored; each request is a
// fresh calculation.
func (s *Server) PostBudget(w http.ResponseWriter, r *http.Request) {
	if s.d.Money == nil {
		unavailable(w, "currency formatting")
		return
	}
	var body BudgetRequest
	if !decodeBody(w, r, &body) {
		return
	}

	b := domain.NewExpenseBudget()
	for k, v := range body.Expenses {
		b.Set(domain.ExpenseCategory(strings.ToLower(k)), v)
	}
	writeJSON(w, http.StatusOK, BudgetResponse{
		Currency:  s.d.Money.Currency(),
		Breakdown: view.BudgetBreakdown(b, s.d.Money),
	})
}
