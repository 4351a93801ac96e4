package model

import (
	"time"

	"cajaledger/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashTransaction is an immutable event in the register ledger.
// Type: "INCOME" | "EXPENSE" | "CLOSURE"
// Transactions are NEVER modified or deleted — corrections are compensating
// entries. Amount is always non-negative; the type carries the sign. CLOSURE
// rows are reconciliation markers: they record the count but do not move the
// balance, and their Amount holds the counted cash.
type CashTransaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RegisterID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type        string          `gorm:"type:varchar(10);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency    string          `gorm:"type:varchar(8);not null;default:'S/.'"`
	Employee    string          `gorm:"not null"`
	Description string
	// Voucher links the legs of one sale across systems (ticket/boleta number)
	Voucher            *string `gorm:"type:varchar(40);index"`
	ClientName         *string
	ClientDocument     *string `gorm:"type:varchar(20)"`
	ClientDocumentType *string `gorm:"type:varchar(10)"`

	// Closure-only fields, null on INCOME and EXPENSE rows
	OpeningBalance     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ExpectedCash       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Discrepancy        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalIncome        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalExpense       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	NextInitialBalance *decimal.Decimal `gorm:"type:decimal(12,2)"`

	CreatedAt time.Time `gorm:"index"`

	Tenders []TransactionTender `gorm:"foreignKey:TransactionID"`
}

// LedgerEntry maps the stored row into the ledger engine's view of it.
func (t CashTransaction) LedgerEntry() ledger.Entry {
	e := ledger.Entry{
		ID:          t.ID,
		RegisterID:  t.RegisterID,
		Type:        t.Type,
		Amount:      t.Amount,
		Currency:    t.Currency,
		Timestamp:   t.CreatedAt,
		Employee:    t.Employee,
		Description: t.Description,
	}
	if t.Voucher != nil {
		e.Voucher = *t.Voucher
	}
	if t.ClientName != nil {
		e.ClientName = *t.ClientName
	}
	if t.ClientDocument != nil {
		e.ClientDocument = *t.ClientDocument
	}
	if t.ClientDocumentType != nil {
		e.ClientDocumentType = *t.ClientDocumentType
	}
	for _, td := range t.Tenders {
		e.Tenders = append(e.Tenders, ledger.TenderEntry{Label: td.Label, Amount: td.Amount})
	}
	return e
}

// LedgerEntries maps a slice of rows, preserving order.
func LedgerEntries(txs []CashTransaction) []ledger.Entry {
	entries := make([]ledger.Entry, len(txs))
	for i, t := range txs {
		entries[i] = t.LedgerEntry()
	}
	return entries
}

// TransactionTender is one payment method attached to a transaction.
// Amount is null when the caller did not split the total explicitly;
// the ledger engine distributes implicit shares at read time.
type TransactionTender struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransactionID uuid.UUID        `gorm:"type:uuid;index;not null"`
	Label         string           `gorm:"not null"`
	Amount        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Position preserves the order the caller sent the split in
	Position int `gorm:"not null;default:0"`
}
