package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Breakdown sums resolved tender amounts per canonical category across
// entries, income positive and expense negative. CLOSURE entries and entries
// without tenders are skipped. Unrecognized labels aggregate under their
// uppercased text.
func Breakdown(entries []Entry) map[Category]decimal.Decimal {
	out := make(map[Category]decimal.Decimal)
	for _, e := range entries {
		if e.Type == TypeClosure {
			continue
		}
		for _, rt := range ResolveTenders(e) {
			key := categoryKey(rt.Category)
			out[key] = out[key].Add(rt.Amount)
		}
	}
	return out
}

// CashDelta returns the net cash movement across entries: the signed sum of
// every resolved CASH tender. Entries without tender data contribute nothing.
func CashDelta(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.Type == TypeClosure {
			continue
		}
		for _, rt := range ResolveTenders(e) {
			if categoryKey(rt.Category) == CategoryCash {
				total = total.Add(rt.Amount)
			}
		}
	}
	return total
}

// Totals returns the gross income and expense sums across non-closure
// entries, both as non-negative values.
func Totals(entries []Entry) (income, expense decimal.Decimal) {
	for _, e := range entries {
		switch e.Type {
		case TypeIncome:
			income = income.Add(e.Amount)
		case TypeExpense:
			expense = expense.Add(e.Amount)
		}
	}
	return income, expense
}

func categoryKey(c Category) Category {
	switch c {
	case CategoryCash, CategoryCard, CategoryTransfer, CategoryYape, CategoryPlin:
		return c
	default:
		return Category(strings.ToUpper(string(c)))
	}
}
