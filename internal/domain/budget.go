package domain

// ExpenseCategory is one bucket of the budget planner.
type ExpenseCategory string

const (
	ExpenseFlights    ExpenseCategory = "flights"
	ExpenseHotels     ExpenseCategory = "hotels"
	ExpenseFood       ExpenseCategory = "food"
	ExpenseTransport  ExpenseCategory = "transport"
	ExpenseActivities ExpenseCategory = "activities"
	ExpenseShopping   ExpenseCategory = "shopping"
	ExpenseOther      ExpenseCategory = "other"
)

// ExpenseCategories is the fixed category set, in display order.
var ExpenseCategories = []ExpenseCategory{
	ExpenseFlights,
	ExpenseHotels,
	ExpenseFood,
	ExpenseTransport,
	ExpenseActivities,
	ExpenseShopping,
	ExpenseOther,
}

// ExpenseBudget maps each category to an amount. It is never persisted: a
// budgeting session starts from NewExpenseBudget and is discarded afterwards.
type ExpenseBudget map[ExpenseCategory]float64

// NewExpenseBudget returns a budget with every category set to zero.
func NewExpenseBudget() ExpenseBudget {
	b := make(ExpenseBudget, len(ExpenseCategories))
	for _, c := range ExpenseCategories {
		b[c] = 0
	}
	return b
}

// Set clamps amount to a non-negative value and stores it. Unknown categories
// are ignored.
func (b ExpenseBudget) Set(c ExpenseCategory, amount float64) {
	for _, known := range ExpenseCategories {
		if known == c {
			b[c] = ClampAmount(amount)
			return
		}
	}
}
