package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashRegister represents one open-to-close lifecycle of a store's drawer.
// Status: "OPEN" | "CLOSED"
// No running balance is stored: balances are always derived from the
// transaction ledger, so they cannot drift out of sync. At most one register
// per store is OPEN at a time (partial unique index in the database).
type CashRegister struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name           string          `gorm:"not null"`
	InitialBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status         string          `gorm:"type:varchar(10);not null;default:'OPEN'"`
	OpenedBy       string          `gorm:"not null"`
	OpenedAt       time.Time
	ClosedAt       *time.Time

	Transactions []CashTransaction `gorm:"foreignKey:RegisterID"`
}

const (
	RegisterOpen   = "OPEN"
	RegisterClosed = "CLOSED"
)
