package handler

import (
	"net/http"
	"time"

	"cajaledger/internal/apierror"
	"cajaledger/internal/dto"
	"cajaledger/internal/middleware"
	"cajaledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CajaHandler struct {
	registros   service.RegisterService
	movimientos service.TransactionService
	cierres     service.ClosureService
	libro       service.LedgerService
}

func NewCajaHandler(registros service.RegisterService, movimientos service.TransactionService, cierres service.ClosureService, libro service.LedgerService) *CajaHandler {
	return &CajaHandler{registros: registros, movimientos: movimientos, cierres: cierres, libro: libro}
}

// Abrir godoc
// @Summary Abre una caja para la tienda
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Datos de apertura"
// @Success 201 {object} dto.CajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.registros.Abrir(c.Request.Context(), claims.Username, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Activa godoc
// @Summary Devuelve la caja abierta de la tienda con sus saldos derivados
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param tienda_id query string true "ID de tienda"
// @Success 200 {object} dto.CajaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/activa [get]
func (h *CajaHandler) Activa(c *gin.Context) {
	tiendaID, ok := queryUUID(c, "tienda_id")
	if !ok {
		return
	}
	resp, err := h.registros.Activa(c.Request.Context(), tiendaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarMovimiento godoc
// @Summary Registra un ingreso o egreso en la caja abierta
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.MovimientoRequest true "Movimiento"
// @Success 201 {object} dto.MovimientoResponse
// @Failure 422 {object} apierror.ValidationError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/movimiento [post]
func (h *CajaHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.MovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.movimientos.Registrar(c.Request.Context(), claims.Username, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Movimientos godoc
// @Summary Lista los movimientos del día, deduplicados y fusionados
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param tienda_id query string true "ID de tienda"
// @Param fecha query string false "Día (YYYY-MM-DD), por defecto hoy"
// @Success 200 {array} dto.MovimientoResponse
// @Router /v1/caja/movimientos [get]
func (h *CajaHandler) Movimientos(c *gin.Context) {
	tiendaID, ok := queryUUID(c, "tienda_id")
	if !ok {
		return
	}
	dia, ok := queryFecha(c)
	if !ok {
		return
	}
	resp, err := h.libro.MovimientosDelDia(c.Request.Context(), tiendaID, dia)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResumenPagos godoc
// @Summary Totales del día por medio de pago
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param tienda_id query string true "ID de tienda"
// @Param fecha query string false "Día (YYYY-MM-DD), por defecto hoy"
// @Success 200 {object} dto.ResumenPagosResponse
// @Router /v1/caja/resumen-pagos [get]
func (h *CajaHandler) ResumenPagos(c *gin.Context) {
	tiendaID, ok := queryUUID(c, "tienda_id")
	if !ok {
		return
	}
	dia, ok := queryFecha(c)
	if !ok {
		return
	}
	resp, err := h.libro.ResumenPagos(c.Request.Context(), tiendaID, dia)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary Cierra la caja abierta y registra la conciliación
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CierreCajaRequest true "Datos del cierre"
// @Success 201 {object} dto.CierreResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/cierre [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CierreCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.cierres.Cerrar(c.Request.Context(), claims.Username, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// HistorialCierres godoc
// @Summary Lista los cierres de la tienda con sus movimientos
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param tienda_id query string true "ID de tienda"
// @Success 200 {array} dto.CierreHistorialItem
// @Router /v1/caja/cierres [get]
func (h *CajaHandler) HistorialCierres(c *gin.Context) {
	tiendaID, ok := queryUUID(c, "tienda_id")
	if !ok {
		return
	}
	resp, err := h.libro.HistorialCierres(c.Request.Context(), tiendaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func queryUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Query(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// queryFecha parses the optional fecha=YYYY-MM-DD parameter, defaulting to
// today in the server's local zone.
func queryFecha(c *gin.Context) (time.Time, bool) {
	raw := c.Query("fecha")
	if raw == "" {
		return time.Now(), true
	}
	dia, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("fecha inválida, formato esperado YYYY-MM-DD"))
		return time.Time{}, false
	}
	return dia, true
}
