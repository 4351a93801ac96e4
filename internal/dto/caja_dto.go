package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	TiendaID string `json:"tienda_id" validate:"required,uuid"`
	Nombre   string `json:"nombre"    validate:"omitempty,max=120"`
	// MontoInicial omitted = carry forward the previous closure's declared
	// next opening balance (0 when the store has no closures yet).
	MontoInicial *decimal.Decimal `json:"monto_inicial" validate:"omitempty,min=0"`
}

type MedioPagoRequest struct {
	Metodo string `json:"metodo" validate:"required,min=2"`
	// Monto omitted = implicit share, resolved against the movement total
	Monto *decimal.Decimal `json:"monto" validate:"omitempty,gt=0"`
}

type MovimientoRequest struct {
	TiendaID             string             `json:"tienda_id"   validate:"required,uuid"`
	Tipo                 string             `json:"tipo"        validate:"required,oneof=INCOME EXPENSE"`
	Monto                decimal.Decimal    `json:"monto"       validate:"required,gt=0"`
	Descripcion          string             `json:"descripcion" validate:"required,min=3"`
	MediosPago           []MedioPagoRequest `json:"medios_pago" validate:"omitempty,dive"`
	Comprobante          *string            `json:"comprobante" validate:"omitempty,max=40"`
	ClienteNombre        *string            `json:"cliente_nombre"`
	ClienteDocumento     *string            `json:"cliente_documento" validate:"omitempty,max=20"`
	ClienteTipoDocumento *string            `json:"cliente_tipo_documento" validate:"omitempty,max=10"`
}

type CierreCajaRequest struct {
	TiendaID     string          `json:"tienda_id"     validate:"required,uuid"`
	MontoContado decimal.Decimal `json:"monto_contado" validate:"min=0"`
	// ProximoMontoInicial omitted = the counted cash seeds the next opening
	ProximoMontoInicial *decimal.Decimal `json:"proximo_monto_inicial" validate:"omitempty,min=0"`
	Observaciones       *string          `json:"observaciones"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CajaResponse struct {
	ID           string          `json:"id"`
	TiendaID     string          `json:"tienda_id"`
	Nombre       string          `json:"nombre"`
	Estado       string          `json:"estado"` // OPEN | CLOSED
	MontoInicial decimal.Decimal `json:"monto_inicial"`
	// SaldoActual = monto inicial + ingresos − egresos, derivado del libro
	SaldoActual        decimal.Decimal `json:"saldo_actual"`
	EfectivoDisponible decimal.Decimal `json:"efectivo_disponible"`
	AbiertaPor         string          `json:"abierta_por"`
	OpenedAt           string          `json:"opened_at"`
	ClosedAt           *string         `json:"closed_at,omitempty"`
}

type MedioPagoResponse struct {
	Metodo string           `json:"metodo"`
	Monto  *decimal.Decimal `json:"monto,omitempty"`
}

type MovimientoResponse struct {
	ID                   string              `json:"id"`
	CajaID               string              `json:"caja_id"`
	Tipo                 string              `json:"tipo"`
	Monto                decimal.Decimal     `json:"monto"`
	Moneda               string              `json:"moneda"`
	Empleado             string              `json:"empleado"`
	Descripcion          string              `json:"descripcion"`
	MediosPago           []MedioPagoResponse `json:"medios_pago,omitempty"`
	Comprobante          *string             `json:"comprobante,omitempty"`
	ClienteNombre        *string             `json:"cliente_nombre,omitempty"`
	ClienteDocumento     *string             `json:"cliente_documento,omitempty"`
	ClienteTipoDocumento *string             `json:"cliente_tipo_documento,omitempty"`
	CreatedAt            string              `json:"created_at"`
}

type ResumenPagosResponse struct {
	Fecha         string                     `json:"fecha"`
	PorMetodo     map[string]decimal.Decimal `json:"por_metodo"`
	TotalIngresos decimal.Decimal            `json:"total_ingresos"`
	TotalEgresos  decimal.Decimal            `json:"total_egresos"`
	EfectivoNeto  decimal.Decimal            `json:"efectivo_neto"`
}

type CierreResponse struct {
	ID               string          `json:"id"`
	CajaID           string          `json:"caja_id"`
	Fecha            string          `json:"fecha"`
	MontoApertura    decimal.Decimal `json:"monto_apertura"`
	TotalIngresos    decimal.Decimal `json:"total_ingresos"`
	TotalEgresos     decimal.Decimal `json:"total_egresos"`
	EfectivoEsperado decimal.Decimal `json:"efectivo_esperado"`
	MontoContado     decimal.Decimal `json:"monto_contado"`
	Descuadre        decimal.Decimal `json:"descuadre"`
	Clasificacion    string          `json:"clasificacion"` // cuadrada | sobrante | faltante
	ProximoInicial   decimal.Decimal `json:"proximo_monto_inicial"`
	Empleado         string          `json:"empleado"`
	Observaciones    *string         `json:"observaciones,omitempty"`
}

type CierreHistorialItem struct {
	Cierre      CierreResponse       `json:"cierre"`
	Movimientos []MovimientoResponse `json:"movimientos"`
}
