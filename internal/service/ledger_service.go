package service

import (
	"context"
	"time"

	"cajaledger/internal/dto"
	"cajaledger/internal/ledger"
	"cajaledger/internal/model"
	"cajaledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService is the read-side facade: every answer is computed from the
// transaction log through the merge engine, never from stored aggregates.
type LedgerService interface {
	MovimientosDelDia(ctx context.Context, tiendaID uuid.UUID, dia time.Time) ([]dto.MovimientoResponse, error)
	ResumenPagos(ctx context.Context, tiendaID uuid.UUID, dia time.Time) (*dto.ResumenPagosResponse, error)
	HistorialCierres(ctx context.Context, tiendaID uuid.UUID) ([]dto.CierreHistorialItem, error)
}

type ledgerService struct {
	movimientos repository.TransactionRepository
}

func NewLedgerService(movimientos repository.TransactionRepository) LedgerService {
	return &ledgerService{movimientos: movimientos}
}

// ── MovimientosDelDia ─────────────────────────────────────────────────────────

func (s *ledgerService) MovimientosDelDia(ctx context.Context, tiendaID uuid.UUID, dia time.Time) ([]dto.MovimientoResponse, error) {
	merged, err := s.mergedDay(ctx, tiendaID, dia)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimientoResponse, 0, len(merged))
	for _, e := range merged {
		out = append(out, toMovimientoResponse(e))
	}
	return out, nil
}

// ── ResumenPagos ──────────────────────────────────────────────────────────────

func (s *ledgerService) ResumenPagos(ctx context.Context, tiendaID uuid.UUID, dia time.Time) (*dto.ResumenPagosResponse, error) {
	merged, err := s.mergedDay(ctx, tiendaID, dia)
	if err != nil {
		return nil, err
	}
	ingresos, egresos := ledger.Totals(merged)
	porMetodo := make(map[string]decimal.Decimal)
	for cat, monto := range ledger.Breakdown(merged) {
		porMetodo[string(cat)] = monto
	}
	start, _ := dayBounds(dia)
	return &dto.ResumenPagosResponse{
		Fecha:         start.Format("2006-01-02"),
		PorMetodo:     porMetodo,
		TotalIngresos: ingresos,
		TotalEgresos:  egresos,
		EfectivoNeto:  ledger.CashDelta(merged),
	}, nil
}

// mergedDay fetches a widened window around the local day and lets the merge
// engine deduplicate; legs of one sale written milliseconds apart around
// midnight still land in the same group. Closure rows pass through.
func (s *ledgerService) mergedDay(ctx context.Context, tiendaID uuid.UUID, dia time.Time) ([]ledger.Entry, error) {
	start, end := dayBounds(dia)
	txs, err := s.movimientos.ListByStoreAndRange(ctx, tiendaID, start.Add(-time.Hour), end.Add(time.Hour))
	if err != nil {
		return nil, err
	}
	merged := ledger.Merge(model.LedgerEntries(txs))
	out := merged[:0:0]
	for _, e := range merged {
		if !e.Timestamp.Before(start) && !e.Timestamp.After(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ── HistorialCierres ──────────────────────────────────────────────────────────

// HistorialCierres lists the store's closures newest first, each paired with
// the merged movements between it and the previous closure.
func (s *ledgerService) HistorialCierres(ctx context.Context, tiendaID uuid.UUID) ([]dto.CierreHistorialItem, error) {
	cierres, err := s.movimientos.ClosuresByStore(ctx, tiendaID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CierreHistorialItem, 0, len(cierres))
	for i, c := range cierres {
		desde := time.Time{}
		if i+1 < len(cierres) {
			desde = cierres[i+1].CreatedAt
		}
		txs, err := s.movimientos.ListByStoreAndRange(ctx, tiendaID, desde, c.CreatedAt)
		if err != nil {
			return nil, err
		}
		merged := ledger.Merge(model.LedgerEntries(txs))
		item := dto.CierreHistorialItem{Cierre: toCierreResponse(c)}
		for _, e := range merged {
			if e.Type == ledger.TypeClosure {
				continue
			}
			item.Movimientos = append(item.Movimientos, toMovimientoResponse(e))
		}
		items = append(items, item)
	}
	return items, nil
}
