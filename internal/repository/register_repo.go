package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"cajaledger/internal/apperr"
	"cajaledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegisterRepository interface {
	Create(ctx context.Context, reg *model.CashRegister) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error)
	FindOpenByStore(ctx context.Context, storeID uuid.UUID) (*model.CashRegister, error)
	// CloseWithClosure atomically flips the register to CLOSED and inserts the
	// closure transaction, holding a row lock so a concurrent posting or
	// second closure serializes against it.
	CloseWithClosure(ctx context.Context, registerID uuid.UUID, closure *model.CashTransaction) error
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) Create(ctx context.Context, reg *model.CashRegister) error {
	err := r.db.WithContext(ctx).Create(reg).Error
	// The partial unique index on (store_id) WHERE status = 'OPEN' is the
	// authoritative guard against two open registers racing past the
	// service-level check.
	if err != nil && strings.Contains(err.Error(), "uni_cash_registers_open_store") {
		return apperr.Conflict("Ya existe una caja abierta para esta tienda")
	}
	return err
}

func (r *registerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).First(&reg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Caja no encontrada")
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registerRepo) FindOpenByStore(ctx context.Context, storeID uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND status = ?", storeID, model.RegisterOpen).
		First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("No hay una caja abierta para esta tienda")
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registerRepo) CloseWithClosure(ctx context.Context, registerID uuid.UUID, closure *model.CashTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg model.CashRegister
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&reg, registerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Caja no encontrada")
		}
		if err != nil {
			return err
		}
		if reg.Status != model.RegisterOpen {
			return apperr.InvalidState("La caja ya fue cerrada")
		}
		if err := tx.Create(closure).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&reg).Updates(map[string]any{
			"status":    model.RegisterClosed,
			"closed_at": now,
		}).Error
	})
}
