package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestClassify(t *testing.T) {
	cases := []struct {
		label string
		want  Category
	}{
		{"EN EFECTIVO", CategoryCash},
		{"en efectivo: 20.50", CategoryCash},
		{"Pago con Visa", CategoryCard},
		{"TARJETA DE CRÉDITO", CategoryCard},
		{"débito", CategoryCard},
		{"MasterCard", CategoryCard},
		{"American Express", CategoryCard},
		{"Transferencia BCP", CategoryTransfer},
		{"transfer", CategoryTransfer},
		{"Transfer interbancario", CategoryTransfer},
		{"transferir a cuenta", CategoryTransfer},
		{"yape", CategoryYape},
		{"YAPE: 15.00", CategoryYape},
		{"Plin", CategoryPlin},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.label), "label %q", tc.label)
	}
}

func TestClassifyUnknownKeepsLabel(t *testing.T) {
	assert.Equal(t, Category("Cheque"), Classify("  Cheque "))
}

func TestExtractAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want *decimal.Decimal
	}{
		{"EN EFECTIVO: 20.50", decPtr("20.50")},
		{"Yape: S/. 1.250,75", decPtr("1250.75")},
		{"VISA: 1,250.75", decPtr("1250.75")},
		{"TRANSFERENCIA", nil},
		{"ajuste: -15.00", decPtr("-15.00")},
		{"EFECTIVO 20", decPtr("20")},
	}
	for _, tc := range cases {
		got := ExtractAmount(tc.raw)
		if tc.want == nil {
			assert.Nil(t, got, "raw %q", tc.raw)
			continue
		}
		require.NotNil(t, got, "raw %q", tc.raw)
		assert.True(t, tc.want.Equal(*got), "raw %q: want %s got %s", tc.raw, tc.want, got)
	}
}

func TestResolveTendersExplicit(t *testing.T) {
	e := Entry{
		Type:   TypeIncome,
		Amount: dec("100"),
		Tenders: []TenderEntry{
			{Label: "EN EFECTIVO", Amount: decPtr("60")},
			{Label: "Yape", Amount: decPtr("40")},
		},
	}
	got := ResolveTenders(e)
	require.Len(t, got, 2)
	assert.Equal(t, CategoryCash, got[0].Category)
	assert.True(t, got[0].Amount.Equal(dec("60")))
	assert.Equal(t, CategoryYape, got[1].Category)
	assert.True(t, got[1].Amount.Equal(dec("40")))
}

func TestResolveTendersImplicitRemainder(t *testing.T) {
	// 100 total, 40 explicit on card, the rest split across two implicit
	// tenders; the last one absorbs the rounding residue.
	e := Entry{
		Type:   TypeIncome,
		Amount: dec("100"),
		Tenders: []TenderEntry{
			{Label: "VISA", Amount: decPtr("40")},
			{Label: "EN EFECTIVO"},
			{Label: "Yape"},
		},
	}
	got := ResolveTenders(e)
	require.Len(t, got, 3)
	assert.True(t, got[1].Amount.Equal(dec("30")))
	assert.True(t, got[2].Amount.Equal(dec("30")))

	e.Amount = dec("50")
	e.Tenders = []TenderEntry{{Label: "EN EFECTIVO"}, {Label: "Yape"}, {Label: "Plin"}}
	got = ResolveTenders(e)
	require.Len(t, got, 3)
	total := got[0].Amount.Add(got[1].Amount).Add(got[2].Amount)
	assert.True(t, total.Equal(dec("50")), "shares must conserve the total, got %s", total)
	assert.True(t, got[0].Amount.Equal(dec("16.67")))
	assert.True(t, got[2].Amount.Equal(dec("16.66")))
}

func TestResolveTendersAmountEmbeddedInLabel(t *testing.T) {
	e := Entry{
		Type:    TypeIncome,
		Amount:  dec("20.50"),
		Tenders: []TenderEntry{{Label: "EN EFECTIVO: 20.50"}},
	}
	got := ResolveTenders(e)
	require.Len(t, got, 1)
	assert.Equal(t, CategoryCash, got[0].Category)
	assert.True(t, got[0].Amount.Equal(dec("20.50")))
}

func TestResolveTendersExpenseNegates(t *testing.T) {
	e := Entry{
		Type:    TypeExpense,
		Amount:  dec("35"),
		Tenders: []TenderEntry{{Label: "EN EFECTIVO", Amount: decPtr("35")}},
	}
	got := ResolveTenders(e)
	require.Len(t, got, 1)
	assert.True(t, got[0].Amount.Equal(dec("-35")))
}

func TestExtractTendersFromText(t *testing.T) {
	got := ExtractTendersFromText("Cobro taller. Pago vía Yape y EFECTIVO")
	assert.Equal(t, []string{"Yape", "EFECTIVO"}, got)

	got = ExtractTendersFromText("Venta mostrador. Metodos de pago: EN EFECTIVO: 20.50, VISA: 30.00")
	require.Len(t, got, 2)
	assert.Equal(t, "EN EFECTIVO: 20.50", got[0])
	assert.Equal(t, "VISA: 30.00", got[1])

	assert.Empty(t, ExtractTendersFromText("Compra de insumos de limpieza"))
}
