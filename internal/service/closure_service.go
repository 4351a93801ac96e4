package service

import (
	"context"
	"time"

	"cajaledger/internal/apperr"
	"cajaledger/internal/dto"
	"cajaledger/internal/ledger"
	"cajaledger/internal/model"
	"cajaledger/internal/repository"
	"cajaledger/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ClosureService interface {
	Cerrar(ctx context.Context, empleado string, req dto.CierreCajaRequest) (*dto.CierreResponse, error)
}

type closureService struct {
	registros   repository.RegisterRepository
	movimientos repository.TransactionRepository
	moneda      string
	dispatcher  *worker.Dispatcher
}

func NewClosureService(registros repository.RegisterRepository, movimientos repository.TransactionRepository, moneda string, dispatcher *worker.Dispatcher) ClosureService {
	return &closureService{registros: registros, movimientos: movimientos, moneda: moneda, dispatcher: dispatcher}
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Reconciles the drawer against the derived expectation and flips the
// register to CLOSED. The counted amount is recorded as-is: a discrepancy is
// reported, never blocked.

func (s *closureService) Cerrar(ctx context.Context, empleado string, req dto.CierreCajaRequest) (*dto.CierreResponse, error) {
	tiendaID, err := uuid.Parse(req.TiendaID)
	if err != nil {
		return nil, apperr.Validationf("tienda_id", "identificador de tienda inválido")
	}
	if req.MontoContado.Sign() < 0 {
		return nil, apperr.Validationf("monto_contado", "el monto contado no puede ser negativo")
	}

	reg, err := s.registros.FindOpenByStore(ctx, tiendaID)
	if err != nil {
		return nil, err
	}

	// One closure per store per day: reopening after a cierre does not allow
	// a second cierre the same day.
	dayStart, dayEnd := dayBounds(time.Now())
	if exists, err := s.movimientos.ClosureExistsOn(ctx, tiendaID, dayStart, dayEnd); err != nil {
		return nil, err
	} else if exists {
		return nil, apperr.Conflict("Ya existe un cierre de caja registrado hoy para esta tienda")
	}

	txs, err := s.movimientos.ListByRegisterSince(ctx, reg.ID, reg.OpenedAt)
	if err != nil {
		return nil, err
	}
	merged := ledger.Merge(model.LedgerEntries(txs))
	ingresos, egresos := ledger.Totals(merged)
	esperado := reg.InitialBalance.Add(ledger.CashDelta(merged))
	descuadre := req.MontoContado.Sub(esperado)

	proximo := req.MontoContado
	if req.ProximoMontoInicial != nil {
		proximo = *req.ProximoMontoInicial
	}

	apertura := reg.InitialBalance
	cierre := &model.CashTransaction{
		RegisterID:         reg.ID,
		Type:               ledger.TypeClosure,
		Amount:             req.MontoContado,
		Currency:           s.moneda,
		Employee:           empleado,
		OpeningBalance:     &apertura,
		ExpectedCash:       &esperado,
		Discrepancy:        &descuadre,
		TotalIncome:        &ingresos,
		TotalExpense:       &egresos,
		NextInitialBalance: &proximo,
	}
	if req.Observaciones != nil {
		cierre.Description = *req.Observaciones
	}
	if err := s.registros.CloseWithClosure(ctx, reg.ID, cierre); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueCierreReporte(ctx, worker.CierreReportePayload{CierreID: cierre.ID}); err != nil {
			log.Warn().Err(err).Str("cierre_id", cierre.ID.String()).Msg("no se pudo encolar el reporte de cierre")
		}
	}

	resp := toCierreResponse(*cierre)
	return &resp, nil
}
