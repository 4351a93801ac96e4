// Package ledger implements the cash-drawer ledger engine: tender
// classification, sale-record merge/deduplication, and payment aggregation.
// It is a pure computation package — no persistence, no transport. Callers
// map their stored records into Entry values and hand them in.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction types. Amounts are always non-negative; the sign of a movement
// is implied by the type. CLOSURE entries are reconciliation markers, not
// balance contributors.
const (
	TypeIncome  = "INCOME"
	TypeExpense = "EXPENSE"
	TypeClosure = "CLOSURE"
)

// Entry is the engine's view of a raw transaction record. Records may arrive
// duplicated (overlapping date-range fetches) or split into several legs of
// the same logical sale; Merge collapses them.
type Entry struct {
	ID                 uuid.UUID
	RegisterID         uuid.UUID
	Type               string
	Amount             decimal.Decimal
	Currency           string
	Timestamp          time.Time
	Employee           string
	Description        string
	Tenders            []TenderEntry
	Voucher            string
	ClientName         string
	ClientDocument     string
	ClientDocumentType string
}

// SaleItem is one line item parsed out of a sale description. Not persisted.
type SaleItem struct {
	Name      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Subtotal returns Quantity × UnitPrice.
func (it SaleItem) Subtotal() decimal.Decimal {
	return it.Quantity.Mul(it.UnitPrice)
}
