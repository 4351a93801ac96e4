package service

import (
	"time"

	"cajaledger/internal/dto"
	"cajaledger/internal/ledger"
	"cajaledger/internal/model"

	"github.com/shopspring/decimal"
)

func toMovimientoResponse(e ledger.Entry) dto.MovimientoResponse {
	resp := dto.MovimientoResponse{
		ID:          e.ID.String(),
		CajaID:      e.RegisterID.String(),
		Tipo:        e.Type,
		Monto:       e.Amount,
		Moneda:      e.Currency,
		Empleado:    e.Employee,
		Descripcion: e.Description,
		CreatedAt:   e.Timestamp.Format(time.RFC3339),
	}
	for _, t := range e.Tenders {
		resp.MediosPago = append(resp.MediosPago, dto.MedioPagoResponse{Metodo: t.Label, Monto: t.Amount})
	}
	resp.Comprobante = optional(e.Voucher)
	resp.ClienteNombre = optional(e.ClientName)
	resp.ClienteDocumento = optional(e.ClientDocument)
	resp.ClienteTipoDocumento = optional(e.ClientDocumentType)
	return resp
}

func toCierreResponse(t model.CashTransaction) dto.CierreResponse {
	resp := dto.CierreResponse{
		ID:            t.ID.String(),
		CajaID:        t.RegisterID.String(),
		Fecha:         t.CreatedAt.Format(time.RFC3339),
		MontoContado:  t.Amount,
		Empleado:      t.Employee,
		Observaciones: optional(t.Description),
	}
	resp.MontoApertura = deref(t.OpeningBalance)
	resp.TotalIngresos = deref(t.TotalIncome)
	resp.TotalEgresos = deref(t.TotalExpense)
	resp.EfectivoEsperado = deref(t.ExpectedCash)
	resp.Descuadre = deref(t.Discrepancy)
	resp.ProximoInicial = deref(t.NextInitialBalance)
	resp.Clasificacion = clasificarDescuadre(resp.Descuadre)
	return resp
}

// clasificarDescuadre labels the closure by the sign of counted − expected.
func clasificarDescuadre(d decimal.Decimal) string {
	switch d.Sign() {
	case 0:
		return "cuadrada"
	case 1:
		return "sobrante"
	default:
		return "faltante"
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// dayBounds returns the inclusive bounds of the local calendar day holding t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
