package view

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pkordes/tripplanner/internal/domain"
)

// BudgetTotal sums the fixed expense categories. Missing categories and
// values that are negative or not finite count as zero.
func BudgetTotal(b domain.ExpenseBudget) float64 {
	var total float64
	for _, c := range domain.ExpenseCategories {
		total += domain.ClampAmount(b[c])
	}
	return total
}

// MoneyFormatter renders an amount for display.
type MoneyFormatter interface {
	Format(amount float64) string
}

// Money formats amounts in one currency using the conventions of a locale.
type Money struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewMoney parses an ISO 4217 currency code and a BCP 47 locale tag.
func NewMoney(code, locale string) (Money, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Money{}, fmt.Errorf("view.NewMoney: currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return Money{}, fmt.Errorf("view.NewMoney: locale %q: %w", locale, err)
	}
	return Money{unit: unit, printer: message.NewPrinter(tag)}, nil
}

// Format renders amount with the currency symbol, e.g. "₹ 1,500.00".
func (m Money) Format(amount float64) string {
	return m.printer.Sprint(currency.Symbol(m.unit.Amount(amount)))
}

// Currency returns the ISO code Money formats in.
func (m Money) Currency() string { return m.unit.String() }

// BudgetLine is one slice of the budget pie.
type BudgetLine struct {
	Category  domain.ExpenseCategory `json:"category"`
	Label     string                 `json:"label"`
	Amount    float64                `json:"amount"`
	Share     float64                `json:"share"`
	Formatted string                 `json:"formatted"`
}

// Breakdown is the budget planner's derived view.
type Breakdown struct {
	Lines          []BudgetLine `json:"lines"`
	Total          float64      `json:"total"`
	FormattedTotal string       `json:"formattedTotal"`
}

// BudgetBreakdown lists every category in display order with its amount and
// its share of the total. Shares are zero when the total is zero.
func BudgetBreakdown(b domain.ExpenseBudget, money MoneyFormatter) Breakdown {
	total := BudgetTotal(b)
	out := Breakdown{
		Lines:          make([]BudgetLine, 0, len(domain.ExpenseCategories)),
		Total:          total,
		FormattedTotal: money.Format(total),
	}
	for _, c := range domain.ExpenseCategories {
		amount := domain.ClampAmount(b[c])
		var share float64
		if total > 0 {
			share = amount / total
		}
		out.Lines = append(out.Lines, BudgetLine{
			Category:  c,
			Label:     categoryLabel(c),
			Amount:    amount,
			Share:     share,
			Formatted: money.Format(amount),
		})
	}
	return out
}

func categoryLabel(c domain.ExpenseCategory) string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
