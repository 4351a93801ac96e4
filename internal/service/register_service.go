package service

import (
	"context"
	"errors"
	"time"

	"cajaledger/internal/apperr"
	"cajaledger/internal/dto"
	"cajaledger/internal/ledger"
	"cajaledger/internal/model"
	"cajaledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RegisterService interface {
	Abrir(ctx context.Context, operador string, req dto.AbrirCajaRequest) (*dto.CajaResponse, error)
	Activa(ctx context.Context, tiendaID uuid.UUID) (*dto.CajaResponse, error)
}

type registerService struct {
	registros   repository.RegisterRepository
	movimientos repository.TransactionRepository
}

func NewRegisterService(registros repository.RegisterRepository, movimientos repository.TransactionRepository) RegisterService {
	return &registerService{registros: registros, movimientos: movimientos}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *registerService) Abrir(ctx context.Context, operador string, req dto.AbrirCajaRequest) (*dto.CajaResponse, error) {
	tiendaID, err := uuid.Parse(req.TiendaID)
	if err != nil {
		return nil, apperr.Validationf("tienda_id", "identificador de tienda inválido")
	}

	// Guard: one open register per store. The partial unique index backs this
	// up against races; the check here gives the common case a clean error.
	if _, err := s.registros.FindOpenByStore(ctx, tiendaID); err == nil {
		return nil, apperr.Conflict("Ya existe una caja abierta para esta tienda")
	} else if !isNotFound(err) {
		return nil, err
	}

	inicial, err := s.resolveMontoInicial(ctx, tiendaID, req.MontoInicial)
	if err != nil {
		return nil, err
	}

	nombre := req.Nombre
	if nombre == "" {
		nombre = "Caja principal"
	}
	reg := &model.CashRegister{
		StoreID:        tiendaID,
		Name:           nombre,
		InitialBalance: inicial,
		Status:         model.RegisterOpen,
		OpenedBy:       operador,
		OpenedAt:       time.Now(),
	}
	if err := s.registros.Create(ctx, reg); err != nil {
		return nil, err
	}
	return buildCajaResponse(reg, nil), nil
}

// resolveMontoInicial applies the carry-forward rule: when the request omits
// the opening amount, the previous closure's declared next balance seeds it.
func (s *registerService) resolveMontoInicial(ctx context.Context, tiendaID uuid.UUID, requested *decimal.Decimal) (decimal.Decimal, error) {
	if requested != nil {
		return *requested, nil
	}
	last, err := s.movimientos.LastClosureByStore(ctx, tiendaID)
	if err != nil {
		return decimal.Zero, err
	}
	if last != nil && last.NextInitialBalance != nil {
		return *last.NextInitialBalance, nil
	}
	return decimal.Zero, nil
}

// ── Activa ────────────────────────────────────────────────────────────────────

func (s *registerService) Activa(ctx context.Context, tiendaID uuid.UUID) (*dto.CajaResponse, error) {
	reg, err := s.registros.FindOpenByStore(ctx, tiendaID)
	if err != nil {
		return nil, err
	}
	txs, err := s.movimientos.ListByRegisterSince(ctx, reg.ID, reg.OpenedAt)
	if err != nil {
		return nil, err
	}
	merged := ledger.Merge(model.LedgerEntries(txs))
	return buildCajaResponse(reg, merged), nil
}

// buildCajaResponse derives the running balances from the merged ledger; no
// stored counter is ever consulted.
func buildCajaResponse(reg *model.CashRegister, merged []ledger.Entry) *dto.CajaResponse {
	ingresos, egresos := ledger.Totals(merged)
	resp := &dto.CajaResponse{
		ID:                 reg.ID.String(),
		TiendaID:           reg.StoreID.String(),
		Nombre:             reg.Name,
		Estado:             reg.Status,
		MontoInicial:       reg.InitialBalance,
		SaldoActual:        reg.InitialBalance.Add(ingresos).Sub(egresos),
		EfectivoDisponible: reg.InitialBalance.Add(ledger.CashDelta(merged)),
		AbiertaPor:         reg.OpenedBy,
		OpenedAt:           reg.OpenedAt.Format(time.RFC3339),
	}
	if reg.ClosedAt != nil {
		s := reg.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &s
	}
	return resp
}

func isNotFound(err error) bool {
	var nf *apperr.NotFoundError
	return errors.As(err, &nf)
}
