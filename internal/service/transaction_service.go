package service

import (
	"context"

	"cajaledger/internal/apperr"
	"cajaledger/internal/dto"
	"cajaledger/internal/ledger"
	"cajaledger/internal/model"
	"cajaledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionService interface {
	Registrar(ctx context.Context, empleado string, req dto.MovimientoRequest) (*dto.MovimientoResponse, error)
}

type transactionService struct {
	registros   repository.RegisterRepository
	movimientos repository.TransactionRepository
	moneda      string
}

func NewTransactionService(registros repository.RegisterRepository, movimientos repository.TransactionRepository, moneda string) TransactionService {
	return &transactionService{registros: registros, movimientos: movimientos, moneda: moneda}
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// Income / expense posting. Transactions are immutable — no Update/Delete.

func (s *transactionService) Registrar(ctx context.Context, empleado string, req dto.MovimientoRequest) (*dto.MovimientoResponse, error) {
	tiendaID, err := uuid.Parse(req.TiendaID)
	if err != nil {
		return nil, apperr.Validationf("tienda_id", "identificador de tienda inválido")
	}
	if err := validateMediosPago(req.MediosPago, req.Monto); err != nil {
		return nil, err
	}

	reg, err := s.registros.FindOpenByStore(ctx, tiendaID)
	if err != nil {
		return nil, err
	}

	t := &model.CashTransaction{
		RegisterID:         reg.ID,
		Type:               req.Tipo,
		Amount:             req.Monto,
		Currency:           s.moneda,
		Employee:           empleado,
		Description:        req.Descripcion,
		Voucher:            req.Comprobante,
		ClientName:         req.ClienteNombre,
		ClientDocument:     req.ClienteDocumento,
		ClientDocumentType: req.ClienteTipoDocumento,
	}
	for i, mp := range req.MediosPago {
		t.Tenders = append(t.Tenders, model.TransactionTender{
			Label:    mp.Metodo,
			Amount:   mp.Monto,
			Position: i,
		})
	}
	if err := s.movimientos.CreateForOpenRegister(ctx, t); err != nil {
		return nil, err
	}
	resp := toMovimientoResponse(t.LedgerEntry())
	return &resp, nil
}

// validateMediosPago enforces the split rules: no repeated canonical method,
// every explicit amount positive, and when every entry is explicit the split
// must add up to the movement total exactly. A partial split may not exceed
// the total; the remainder goes to the implicit entries.
func validateMediosPago(medios []dto.MedioPagoRequest, total decimal.Decimal) error {
	seen := make(map[ledger.Category]bool)
	explicit := decimal.Zero
	implicit := 0
	for _, mp := range medios {
		cat := ledger.Classify(mp.Metodo)
		if seen[cat] {
			return apperr.Validationf("medios_pago", "método de pago duplicado: %s", mp.Metodo)
		}
		seen[cat] = true
		if mp.Monto == nil {
			implicit++
			continue
		}
		explicit = explicit.Add(*mp.Monto)
	}
	if len(medios) == 0 {
		return nil
	}
	if implicit == 0 && !explicit.Equal(total) {
		return apperr.Validationf("medios_pago",
			"la suma de los medios de pago (%s) no coincide con el monto (%s)", explicit, total)
	}
	if explicit.GreaterThan(total) {
		return apperr.Validationf("medios_pago",
			"los medios de pago (%s) exceden el monto (%s)", explicit, total)
	}
	return nil
}
