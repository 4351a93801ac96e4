package repository

import (
	"context"
	"errors"
	"time"

	"cajaledger/internal/apperr"
	"cajaledger/internal/ledger"
	"cajaledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository interface {
	// CreateForOpenRegister inserts the transaction only while its register is
	// still OPEN, locking the register row so a concurrent closure cannot
	// slip between the check and the insert.
	CreateForOpenRegister(ctx context.Context, t *model.CashTransaction) error
	ListByRegisterSince(ctx context.Context, registerID uuid.UUID, since time.Time) ([]model.CashTransaction, error)
	// ListByStoreAndRange returns the store's transactions with
	// created_at in (from, to]; the exclusive lower bound keeps a movement
	// stamped exactly at a closure from appearing in two adjacent windows.
	ListByStoreAndRange(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]model.CashTransaction, error)
	LastClosureByStore(ctx context.Context, storeID uuid.UUID) (*model.CashTransaction, error)
	ClosuresByStore(ctx context.Context, storeID uuid.UUID) ([]model.CashTransaction, error)
	// ClosureExistsOn reports whether any of the store's registers already
	// recorded a closure inside the given day window.
	ClosureExistsOn(ctx context.Context, storeID uuid.UUID, dayStart, dayEnd time.Time) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashTransaction, error)
}

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) CreateForOpenRegister(ctx context.Context, t *model.CashTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg model.CashRegister
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&reg, t.RegisterID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Caja no encontrada")
		}
		if err != nil {
			return err
		}
		if reg.Status != model.RegisterOpen {
			return apperr.InvalidState("La caja ya fue cerrada; no admite nuevos movimientos")
		}
		return tx.Create(t).Error
	})
}

func (r *transactionRepo) ListByRegisterSince(ctx context.Context, registerID uuid.UUID, since time.Time) ([]model.CashTransaction, error) {
	var txs []model.CashTransaction
	err := r.db.WithContext(ctx).
		Preload("Tenders", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("register_id = ? AND created_at >= ?", registerID, since).
		Order("created_at ASC, id ASC").
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepo) ListByStoreAndRange(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]model.CashTransaction, error) {
	var txs []model.CashTransaction
	err := r.db.WithContext(ctx).
		Preload("Tenders", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Joins("JOIN cash_registers ON cash_registers.id = cash_transactions.register_id").
		Where("cash_registers.store_id = ? AND cash_transactions.created_at > ? AND cash_transactions.created_at <= ?", storeID, from, to).
		Order("cash_transactions.created_at ASC, cash_transactions.id ASC").
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepo) LastClosureByStore(ctx context.Context, storeID uuid.UUID) (*model.CashTransaction, error) {
	var t model.CashTransaction
	err := r.db.WithContext(ctx).
		Joins("JOIN cash_registers ON cash_registers.id = cash_transactions.register_id").
		Where("cash_registers.store_id = ? AND cash_transactions.type = ?", storeID, ledger.TypeClosure).
		Order("cash_transactions.created_at DESC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepo) ClosuresByStore(ctx context.Context, storeID uuid.UUID) ([]model.CashTransaction, error) {
	var txs []model.CashTransaction
	err := r.db.WithContext(ctx).
		Joins("JOIN cash_registers ON cash_registers.id = cash_transactions.register_id").
		Where("cash_registers.store_id = ? AND cash_transactions.type = ?", storeID, ledger.TypeClosure).
		Order("cash_transactions.created_at DESC").
		Find(&txs).Error
	return txs, err
}

func (r *transactionRepo) ClosureExistsOn(ctx context.Context, storeID uuid.UUID, dayStart, dayEnd time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CashTransaction{}).
		Joins("JOIN cash_registers ON cash_registers.id = cash_transactions.register_id").
		Where("cash_registers.store_id = ? AND cash_transactions.type = ? AND cash_transactions.created_at BETWEEN ? AND ?",
			storeID, ledger.TypeClosure, dayStart, dayEnd).
		Count(&count).Error
	return count > 0, err
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashTransaction, error) {
	var t model.CashTransaction
	err := r.db.WithContext(ctx).
		Preload("Tenders", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Movimiento no encontrado")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
