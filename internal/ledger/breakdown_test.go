package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakdown(t *testing.T) {
	entries := []Entry{
		{
			Type:   TypeIncome,
			Amount: dec("100"),
			Tenders: []TenderEntry{
				{Label: "EN EFECTIVO", Amount: decPtr("60")},
				{Label: "Yape", Amount: decPtr("40")},
			},
		},
		{
			Type:    TypeExpense,
			Amount:  dec("25"),
			Tenders: []TenderEntry{{Label: "efectivo", Amount: decPtr("25")}},
		},
		{
			Type:    TypeIncome,
			Amount:  dec("30"),
			Tenders: []TenderEntry{{Label: "Cheque", Amount: decPtr("30")}},
		},
		{Type: TypeClosure, Amount: dec("500")},
	}

	got := Breakdown(entries)
	require.Len(t, got, 3)
	assert.True(t, got[CategoryCash].Equal(dec("35")), "cash %s", got[CategoryCash])
	assert.True(t, got[CategoryYape].Equal(dec("40")))
	assert.True(t, got[Category("CHEQUE")].Equal(dec("30")))
}

func TestCashDelta(t *testing.T) {
	entries := []Entry{
		{
			Type:   TypeIncome,
			Amount: dec("50"),
			Tenders: []TenderEntry{
				{Label: "EN EFECTIVO", Amount: decPtr("20")},
				{Label: "VISA", Amount: decPtr("30")},
			},
		},
		{
			Type:    TypeExpense,
			Amount:  dec("15"),
			Tenders: []TenderEntry{{Label: "EN EFECTIVO"}},
		},
		{Type: TypeClosure, Amount: dec("100")},
	}
	assert.True(t, CashDelta(entries).Equal(dec("5")), "delta %s", CashDelta(entries))
}

func TestCashDeltaIgnoresEntriesWithoutTenders(t *testing.T) {
	entries := []Entry{{Type: TypeIncome, Amount: dec("80")}}
	assert.True(t, CashDelta(entries).IsZero())
}

func TestTotals(t *testing.T) {
	entries := []Entry{
		{Type: TypeIncome, Amount: dec("100")},
		{Type: TypeIncome, Amount: dec("50")},
		{Type: TypeExpense, Amount: dec("20")},
		{Type: TypeClosure, Amount: dec("130")},
	}
	income, expense := Totals(entries)
	assert.True(t, income.Equal(dec("150")))
	assert.True(t, expense.Equal(dec("20")))
}
