package infra

import (
	"fmt"

	"cajaledger/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate,
// then applies idempotent SQL patches for DDL that GORM cannot express
// (partial unique indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates/updates the schema. Also used by integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.CashRegister{},
		&model.CashTransaction{},
		&model.TransactionTender{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle.
// Each statement is guarded so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// The invariant "at most one OPEN register per store" lives here, not
		// in application code: concurrent opens race past any SELECT check.
		{"partial unique index: one open register per store", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_cash_registers_open_store') THEN
    CREATE UNIQUE INDEX uni_cash_registers_open_store
        ON cash_registers (store_id)
        WHERE status = 'OPEN';
  END IF;
END $$`},
		// Ledger reads always filter by register + time range
		{"composite index for ledger range scans", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cash_transactions_register_created') THEN
    CREATE INDEX idx_cash_transactions_register_created
        ON cash_transactions (register_id, created_at);
  END IF;
END $$`},
		// Closure history scans by type newest-first
		{"partial index for closure lookups", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cash_transactions_closures') THEN
    CREATE INDEX idx_cash_transactions_closures
        ON cash_transactions (register_id, created_at DESC)
        WHERE type = 'CLOSURE';
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
