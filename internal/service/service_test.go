package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"cajaledger/internal/apperr"
	"cajaledger/internal/dto"
	"cajaledger/internal/ledger"
	"cajaledger/internal/model"
	"cajaledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// ── Full in-memory store ──────────────────────────────────────────────────────
// One mutex-guarded store backs both repository interfaces, mirroring the
// invariants the real SQL layer enforces: the partial unique index on open
// registers, the row lock around posting and closing.

type fakeStore struct {
	mu          sync.Mutex
	seq         int
	registros   map[uuid.UUID]*model.CashRegister
	movimientos []model.CashTransaction
}

type fakeRegistros struct{ *fakeStore }
type fakeMovimientos struct{ *fakeStore }

func newFakeStore() (*fakeRegistros, *fakeMovimientos) {
	s := &fakeStore{registros: make(map[uuid.UUID]*model.CashRegister)}
	return &fakeRegistros{s}, &fakeMovimientos{s}
}

func (s *fakeStore) tick() time.Time {
	s.seq++
	return time.Now().Add(time.Duration(s.seq) * time.Millisecond)
}

func (r *fakeRegistros) Create(_ context.Context, reg *model.CashRegister) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.registros {
		if existing.StoreID == reg.StoreID && existing.Status == model.RegisterOpen {
			return apperr.Conflict("Ya existe una caja abierta para esta tienda")
		}
	}
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	copia := *reg
	r.registros[reg.ID] = &copia
	return nil
}

func (r *fakeRegistros) FindByID(_ context.Context, id uuid.UUID) (*model.CashRegister, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.registros[id]
	if !ok {
		return nil, apperr.NotFound("Caja no encontrada")
	}
	copia := *reg
	return &copia, nil
}

func (r *fakeRegistros) FindOpenByStore(_ context.Context, storeID uuid.UUID) (*model.CashRegister, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.registros {
		if reg.StoreID == storeID && reg.Status == model.RegisterOpen {
			copia := *reg
			return &copia, nil
		}
	}
	return nil, apperr.NotFound("No hay una caja abierta para esta tienda")
}

func (r *fakeRegistros) CloseWithClosure(_ context.Context, registerID uuid.UUID, closure *model.CashTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.registros[registerID]
	if !ok {
		return apperr.NotFound("Caja no encontrada")
	}
	if reg.Status != model.RegisterOpen {
		return apperr.InvalidState("La caja ya fue cerrada")
	}
	if closure.ID == uuid.Nil {
		closure.ID = uuid.New()
	}
	if closure.CreatedAt.IsZero() {
		closure.CreatedAt = r.tick()
	}
	r.movimientos = append(r.movimientos, *closure)
	reg.Status = model.RegisterClosed
	now := time.Now()
	reg.ClosedAt = &now
	return nil
}

func (m *fakeMovimientos) CreateForOpenRegister(_ context.Context, t *model.CashTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registros[t.RegisterID]
	if !ok {
		return apperr.NotFound("Caja no encontrada")
	}
	if reg.Status != model.RegisterOpen {
		return apperr.InvalidState("La caja ya fue cerrada; no admite nuevos movimientos")
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.tick()
	}
	m.movimientos = append(m.movimientos, *t)
	return nil
}

func (m *fakeMovimientos) ListByRegisterSince(_ context.Context, registerID uuid.UUID, since time.Time) ([]model.CashTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CashTransaction
	for _, t := range m.movimientos {
		if t.RegisterID == registerID && !t.CreatedAt.Before(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *fakeMovimientos) ListByStoreAndRange(_ context.Context, storeID uuid.UUID, from, to time.Time) ([]model.CashTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CashTransaction
	for _, t := range m.movimientos {
		reg, ok := m.registros[t.RegisterID]
		if !ok || reg.StoreID != storeID {
			continue
		}
		if !t.CreatedAt.After(from) || t.CreatedAt.After(to) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *fakeMovimientos) LastClosureByStore(_ context.Context, storeID uuid.UUID) (*model.CashTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last *model.CashTransaction
	for i := range m.movimientos {
		t := m.movimientos[i]
		reg, ok := m.registros[t.RegisterID]
		if !ok || reg.StoreID != storeID || t.Type != ledger.TypeClosure {
			continue
		}
		if last == nil || t.CreatedAt.After(last.CreatedAt) {
			copia := t
			last = &copia
		}
	}
	return last, nil
}

func (m *fakeMovimientos) ClosuresByStore(_ context.Context, storeID uuid.UUID) ([]model.CashTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CashTransaction
	for _, t := range m.movimientos {
		reg, ok := m.registros[t.RegisterID]
		if ok && reg.StoreID == storeID && t.Type == ledger.TypeClosure {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *fakeMovimientos) ClosureExistsOn(_ context.Context, storeID uuid.UUID, dayStart, dayEnd time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.movimientos {
		reg, ok := m.registros[t.RegisterID]
		if !ok || reg.StoreID != storeID || t.Type != ledger.TypeClosure {
			continue
		}
		if !t.CreatedAt.Before(dayStart) && !t.CreatedAt.After(dayEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (m *fakeMovimientos) FindByID(_ context.Context, id uuid.UUID) (*model.CashTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.movimientos {
		if m.movimientos[i].ID == id {
			copia := m.movimientos[i]
			return &copia, nil
		}
	}
	return nil, apperr.NotFound("Movimiento no encontrado")
}

var (
	_ repository.RegisterRepository    = (*fakeRegistros)(nil)
	_ repository.TransactionRepository = (*fakeMovimientos)(nil)
)

// ── Apertura ──────────────────────────────────────────────────────────────────

func TestAbrirCaja(t *testing.T) {
	registros, movimientos := newFakeStore()
	svc := NewRegisterService(registros, movimientos)
	tienda := uuid.New()

	resp, err := svc.Abrir(context.Background(), "maria", dto.AbrirCajaRequest{
		TiendaID:     tienda.String(),
		MontoInicial: decPtr("100"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.RegisterOpen, resp.Estado)
	assert.Equal(t, tienda.String(), resp.TiendaID)
	assert.Equal(t, "Caja principal", resp.Nombre)
	assert.Equal(t, "maria", resp.AbiertaPor)
	assert.True(t, resp.MontoInicial.Equal(dec("100")))
	assert.True(t, resp.SaldoActual.Equal(dec("100")))
}

func TestAbrirCajaDuplicada(t *testing.T) {
	registros, movimientos := newFakeStore()
	svc := NewRegisterService(registros, movimientos)
	tienda := uuid.New()

	_, err := svc.Abrir(context.Background(), "maria", dto.AbrirCajaRequest{
		TiendaID:     tienda.String(),
		MontoInicial: decPtr("100"),
	})
	require.NoError(t, err)

	_, err = svc.Abrir(context.Background(), "jose", dto.AbrirCajaRequest{
		TiendaID:     tienda.String(),
		MontoInicial: decPtr("50"),
	})
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorContains(t, err, "Ya existe una caja abierta")
}

func TestAbrirCajaConcurrente(t *testing.T) {
	registros, movimientos := newFakeStore()
	svc := NewRegisterService(registros, movimientos)
	tienda := uuid.New()

	const n = 10
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Abrir(context.Background(), "maria", dto.AbrirCajaRequest{
				TiendaID:     tienda.String(),
				MontoInicial: decPtr("100"),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	exitos := 0
	for err := range errs {
		if err == nil {
			exitos++
			continue
		}
		var conflict *apperr.ConflictError
		assert.ErrorAs(t, err, &conflict)
	}
	assert.Equal(t, 1, exitos, "exactamente una apertura debe ganar")
}

func TestAbrirCajaTiendaInvalida(t *testing.T) {
	registros, movimientos := newFakeStore()
	svc := NewRegisterService(registros, movimientos)

	_, err := svc.Abrir(context.Background(), "maria", dto.AbrirCajaRequest{TiendaID: "no-es-uuid"})
	var val *apperr.ValidationError
	require.ErrorAs(t, err, &val)
	assert.Equal(t, "tienda_id", val.Field)
}

// ── Movimientos ───────────────────────────────────────────────────────────────

func abrirCaja(t *testing.T, svc RegisterService, tienda uuid.UUID, inicial string) *dto.CajaResponse {
	t.Helper()
	resp, err := svc.Abrir(context.Background(), "maria", dto.AbrirCajaRequest{
		TiendaID:     tienda.String(),
		MontoInicial: decPtr(inicial),
	})
	require.NoError(t, err)
	return resp
}

func TestRegistrarMovimientoYSaldo(t *testing.T) {
	registros, movimientos := newFakeStore()
	cajas := NewRegisterService(registros, movimientos)
	movSvc := NewTransactionService(registros, movimientos, "S/.")
	tienda := uuid.New()
	abrirCaja(t, cajas, tienda, "100")

	resp, err := movSvc.Registrar(context.Background(), "maria", dto.MovimientoRequest{
		TiendaID:    tienda.String(),
		Tipo:        ledger.TypeIncome,
		Monto:       dec("50"),
		Descripcion: "Cobro taller",
		MediosPago:  []dto.MedioPagoRequest{{Metodo: "EN EFECTIVO"}},
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.TypeIncome, resp.Tipo)
	assert.Equal(t, "S/.", resp.Moneda)
	assert.True(t, resp.Monto.Equal(dec("50")))

	_, err = movSvc.Registrar(context.Background(), "maria", dto.MovimientoRequest{
		TiendaID:    tienda.String(),
		Tipo:        ledger.TypeExpense,
		Monto:       dec("20"),
		Descripcion: "Compra de bolsas",
		MediosPago:  []dto.MedioPagoRequest{{Metodo: "EN EFECTIVO"}},
	})
	require.NoError(t, err)

	activa, err := cajas.Activa(context.Background(), tienda)
	require.NoError(t, err)
	assert.True(t, activa.SaldoActual.Equal(dec("130")), "saldo %s", activa.SaldoActual)
	assert.True(t, activa.EfectivoDisponible.Equal(dec("130")), "efectivo %s", activa.EfectivoDisponible)
}

func TestRegistrarMovimientoSinCajaAbierta(t *testing.T) {
	registros, movimientos := newFakeStore()
	movSvc := NewTransactionService(registros, movimientos, "S/.")

	_, err := movSvc.Registrar(context.Background(), "maria", dto.MovimientoRequest{
		TiendaID:    uuid.New().String(),
		Tipo:        ledger.TypeIncome,
		Monto:       dec("10"),
		Descripcion: "Venta suelta",
	})
	var nf *apperr.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestRegistrarMovimientoEnCajaCerrada(t *testing.T) {
	registros, movimientos := newFakeStore()
	cajas := NewRegisterService(registros, movimientos)
	cierres := NewClosureService(registros, movimientos, "S/.", nil)
	tienda := uuid.New()
	caja := abrirCaja(t, cajas, tienda, "100")

	_, err := cierres.Cerrar(context.Background(), "maria", dto.CierreCajaRequest{
		TiendaID:     tienda.String(),
		MontoContado: dec("100"),
	})
	require.NoError(t, err)

	// The repository guard rejects inserts against a CLOSED register even when
	// the caller bypasses the store-level lookup and posts by register id.
	err = movimientos.CreateForOpenRegister(context.Background(), &model.CashTransaction{
		RegisterID:  uuid.MustParse(caja.ID),
		Type:        ledger.TypeIncome,
		Amount:      dec("10"),
		Employee:    "maria",
		Description: "Venta tardía",
	})
	var inv *apperr.InvalidStateError
	assert.ErrorAs(t, err, &inv)
}

func TestValidateMediosPago(t *testing.T) {
	total := dec("100")

	err := validateMediosPago([]dto.MedioPagoRequest{
		{Metodo: "EN EFECTIVO", Monto: decPtr("60")},
		{Metodo: "Yape", Monto: decPtr("30")},
	}, total)
	var val *apperr.ValidationError
	require.ErrorAs(t, err, &val)
	assert.ErrorContains(t, err, "no coincide con el monto")

	err = validateMediosPago([]dto.MedioPagoRequest{
		{Metodo: "efectivo", Monto: decPtr("60")},
		{Metodo: "EN EFECTIVO", Monto: decPtr("40")},
	}, total)
	assert.ErrorContains(t, err, "duplicado")

	err = validateMediosPago([]dto.MedioPagoRequest{
		{Metodo: "VISA", Monto: decPtr("120")},
		{Metodo: "efectivo"},
	}, total)
	assert.ErrorContains(t, err, "exceden el monto")

	// Partial explicit split under the total is fine: the remainder goes to
	// the implicit entries at read time.
	err = validateMediosPago([]dto.MedioPagoRequest{
		{Metodo: "VISA", Monto: decPtr("60")},
		{Metodo: "efectivo"},
	}, total)
	assert.NoError(t, err)

	assert.NoError(t, validateMediosPago(nil, total))
}

// ── Cierre ────────────────────────────────────────────────────────────────────

func registrarMovimiento(t *testing.T, svc TransactionService, tienda uuid.UUID, tipo, monto, descripcion, metodo string) {
	t.Helper()
	_, err := svc.Registrar(context.Background(), "maria", dto.MovimientoRequest{
		TiendaID:    tienda.String(),
		Tipo:        tipo,
		Monto:       dec(monto),
		Descripcion: descripcion,
		MediosPago:  []dto.MedioPagoRequest{{Metodo: metodo}},
	})
	require.NoError(t, err)
}

func TestCerrarCajaCuadrada(t *testing.T) {
	registros, movimientos := newFakeStore()
	cajas := NewRegisterService(registros, movimientos)
	movSvc := NewTransactionService(registros, movimientos, "S/.")
	cierres := NewClosureService(registros, movimientos, "S/.", nil)
	tienda := uuid.New()
	abrirCaja(t, cajas, tienda, "100")
	registrarMovimiento(t, movSvc, tienda, ledger.TypeIncome, "50", "Cobro taller", "EN EFECTIVO")
	registrarMovimiento(t, movSvc, tienda, ledger.TypeExpense, "20", "Compra de bolsas", "EN EFECTIVO")

	resp, err := cierres.Cerrar(context.Background(), "maria", dto.CierreCajaRequest{
		TiendaID:     tienda.String(),
		MontoContado: dec("130"),
	})
	require.NoError(t, err)
	assert.True(t, resp.MontoApertura.Equal(dec("100")))
	assert.True(t, resp.TotalIngresos.Equal(dec("50")))
	assert.True(t, resp.TotalEgresos.Equal(dec("20")))
	assert.True(t, resp.EfectivoEsperado.Equal(dec("130")))
	assert.True(t, resp.Descuadre.IsZero())
	assert.Equal(t, "cuadrada", resp.Clasificacion)
	assert.True(t, resp.ProximoInicial.Equal(dec("130")), "el contado siembra la próxima apertura")

	// The register is now CLOSED.
	_, err = cajas.Activa(context.Background(), tienda)
	var nf *apperr.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestCerrarCajaFaltante(t *testing.T) {
	registros, movimientos := newFakeStore()
	cajas := NewRegisterService(registros, movimientos)
	movSvc := NewTransactionService(registros, movimientos, "S/.")
	cierres := NewClosureService(registros, movimientos, "S/.", nil)
	tienda := uuid.New()
	abrirCaja(t, cajas, tienda, "100")
	registrarMovimiento(t, movSvc, tienda, ledger.TypeIncome, "50", "Cobro taller", "EN EFECTIVO")
	registrarMovimiento(t, movSvc, tienda, ledger.TypeExpense, "20", "Compra de bolsas", "EN EFECTIVO")

	obs := "Billete dudoso retirado"
	resp, err := cierres.Cerrar(context.Background(), "maria", dto.CierreCajaRequest{
		TiendaID:            tienda.String(),
		MontoContado:        dec("120"),
		ProximoMontoInicial: decPtr("100"),
		Observaciones:       &obs,
	})
	require.NoError(t, err)
	assert.True(t, resp.Descuadre.Equal(dec("-10")), "descuadre %s", resp.Descuadre)
	assert.Equal(t, "faltante", resp.Clasificacion)
	assert.True(t, resp.ProximoInicial.Equal(dec("100")))
	require.NotNil(t, resp.Observaciones)
	assert.Equal(t, obs, *resp.Observaciones)
}

func TestCerrarCajaMontoNegativo(t *testing.T) {
	registros, movimientos := newFakeStore()
	cierres := NewClosureService(registros, movimientos, "S/.", nil)

	_, err := cierres.Cerrar(context.Background(), "maria", dto.CierreCajaRequest{
		TiendaID:     uuid.New().String(),
		MontoContado: dec("-5"),
	})
	var val *apperr.ValidationError
	require.ErrorAs(t, err, &val)
	assert.Equal(t, "monto_contado", val.Field)
}

func TestCerrarCajaDosVecesElMismoDia(t *testing.T) {
	registros, movimientos := newFakeStore()
	cajas := NewRegisterService(registros, movimientos)
	cierres := NewClosureService(registros, movimientos, "S/.", nil)
	tienda := uuid.New()
	abrirCaja(t, cajas, tienda, "100")

	_, err := cierres.Cerrar(context.Background(), "maria", dto.CierreCajaRequest{
		TiendaID:            tienda.String(),
		MontoContado:        dec("100"),
		ProximoMontoInicial: decPtr("80"),
	})
	require.NoError(t, err)

	// Reopening carries forward the declared next opening balance.
	reabierta, err := cajas.Abrir(context.Background(), "jose", dto.AbrirCajaRequest{TiendaID: tienda.String()})
	require.NoError(t, err)
	assert.True(t, reabierta.MontoInicial.Equal(dec("80")))

	// A second closure the same day is rejected even on the new register.
	_, err = cierres.Cerrar(context.Background(), "jose", dto.CierreCajaRequest{
		TiendaID:     tienda.String(),
		MontoContado: dec("80"),
	})
	var conflict *apperr.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorContains(t, err, "Ya existe un cierre de caja registrado hoy")
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func TestResumenPagos(t *testing.T) {
	registros, movimientos := newFakeStore()
	cajas := NewRegisterService(registros, movimientos)
	movSvc := NewTransactionService(registros, movimientos, "S/.")
	libro := NewLedgerService(movimientos)
	tienda := uuid.New()
	abrirCaja(t, cajas, tienda, "100")

	_, err := movSvc.Registrar(context.Background(), "maria", dto.MovimientoRequest{
		TiendaID:    tienda.String(),
		Tipo:        ledger.TypeIncome,
		Monto:       dec("100"),
		Descripcion: "Venta mostrador",
		MediosPago: []dto.MedioPagoRequest{
			{Metodo: "EN EFECTIVO", Monto: decPtr("60")},
			{Metodo: "Yape", Monto: decPtr("40")},
		},
	})
	require.NoError(t, err)
	registrarMovimiento(t, movSvc, tienda, ledger.TypeExpense, "25", "Compra de insumos", "EN EFECTIVO")

	resumen, err := libro.ResumenPagos(context.Background(), tienda, time.Now())
	require.NoError(t, err)
	assert.True(t, resumen.TotalIngresos.Equal(dec("100")))
	assert.True(t, resumen.TotalEgresos.Equal(dec("25")))
	assert.True(t, resumen.EfectivoNeto.Equal(dec("35")), "efectivo neto %s", resumen.EfectivoNeto)
	assert.True(t, resumen.PorMetodo["CASH"].Equal(dec("35")))
	assert.True(t, resumen.PorMetodo["YAPE"].Equal(dec("40")))
}

func TestMovimientosDelDiaFusionaDuplicados(t *testing.T) {
	registros, movimientos := newFakeStore()
	cajas := NewRegisterService(registros, movimientos)
	libro := NewLedgerService(movimientos)
	tienda := uuid.New()
	caja := abrirCaja(t, cajas, tienda, "0")
	regID := uuid.MustParse(caja.ID)

	// Two legs of one sale written at the same second with the same voucher.
	momento := time.Now()
	comprobante := "B001-55"
	for _, desc := range []string{
		"Venta registrada: Cafe - Cantidad: 1, Precio Unitario: 8.00",
		"Venta registrada: Pan - Cantidad: 2, Precio Unitario: 1.50",
	} {
		err := movimientos.CreateForOpenRegister(context.Background(), &model.CashTransaction{
			RegisterID:  regID,
			Type:        ledger.TypeIncome,
			Amount:      dec("8.00"),
			Employee:    "maria",
			Description: desc,
			Voucher:     &comprobante,
			CreatedAt:   momento,
		})
		require.NoError(t, err)
	}

	dia, err := libro.MovimientosDelDia(context.Background(), tienda, momento)
	require.NoError(t, err)
	require.Len(t, dia, 1)
	assert.True(t, dia[0].Monto.Equal(dec("11.00")), "monto %s", dia[0].Monto)
	require.NotNil(t, dia[0].Comprobante)
	assert.Equal(t, comprobante, *dia[0].Comprobante)
}

func TestHistorialCierres(t *testing.T) {
	registros, movimientos := newFakeStore()
	libro := NewLedgerService(movimientos)
	tienda := uuid.New()
	ahora := time.Now()

	reg := &model.CashRegister{
		ID: uuid.New(), StoreID: tienda, Name: "Caja principal",
		Status: model.RegisterOpen, OpenedBy: "maria", OpenedAt: ahora.Add(-5 * time.Hour),
	}
	require.NoError(t, registros.Create(context.Background(), reg))

	insertar := func(tipo, monto, descripcion string, momento time.Time) {
		err := movimientos.CreateForOpenRegister(context.Background(), &model.CashTransaction{
			RegisterID: reg.ID, Type: tipo, Amount: dec(monto),
			Employee: "maria", Description: descripcion, CreatedAt: momento,
		})
		require.NoError(t, err)
	}
	insertar(ledger.TypeIncome, "40", "Venta de la mañana", ahora.Add(-4*time.Hour))
	insertar(ledger.TypeClosure, "140", "Primer cierre", ahora.Add(-3*time.Hour))
	insertar(ledger.TypeIncome, "60", "Venta de la tarde", ahora.Add(-2*time.Hour))
	insertar(ledger.TypeClosure, "200", "Segundo cierre", ahora.Add(-1*time.Hour))

	items, err := libro.HistorialCierres(context.Background(), tienda)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Newest first, each paired with the movements since the previous closure.
	assert.True(t, items[0].Cierre.MontoContado.Equal(dec("200")))
	require.Len(t, items[0].Movimientos, 1)
	assert.Equal(t, "Venta de la tarde", items[0].Movimientos[0].Descripcion)

	assert.True(t, items[1].Cierre.MontoContado.Equal(dec("140")))
	require.Len(t, items[1].Movimientos, 1)
	assert.Equal(t, "Venta de la mañana", items[1].Movimientos[0].Descripcion)
}

func TestHistorialCierresMovimientoEnElInstanteDelCierre(t *testing.T) {
	registros, movimientos := newFakeStore()
	libro := NewLedgerService(movimientos)
	tienda := uuid.New()
	ahora := time.Now()

	reg := &model.CashRegister{
		ID: uuid.New(), StoreID: tienda, Name: "Caja principal",
		Status: model.RegisterOpen, OpenedBy: "maria", OpenedAt: ahora.Add(-5 * time.Hour),
	}
	require.NoError(t, registros.Create(context.Background(), reg))

	insertar := func(tipo, monto, descripcion string, momento time.Time) {
		err := movimientos.CreateForOpenRegister(context.Background(), &model.CashTransaction{
			RegisterID: reg.ID, Type: tipo, Amount: dec(monto),
			Employee: "maria", Description: descripcion, CreatedAt: momento,
		})
		require.NoError(t, err)
	}
	primerCierre := ahora.Add(-3 * time.Hour)
	insertar(ledger.TypeIncome, "25", "Venta al filo del cierre", primerCierre)
	insertar(ledger.TypeClosure, "105", "Primer cierre", primerCierre)
	insertar(ledger.TypeClosure, "105", "Segundo cierre", ahora.Add(-1*time.Hour))

	items, err := libro.HistorialCierres(context.Background(), tienda)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// The movement shares its timestamp with the first closure, so it belongs
	// to that closure's window and must not bleed into the next one.
	assert.Empty(t, items[0].Movimientos)
	require.Len(t, items[1].Movimientos, 1)
	assert.Equal(t, "Venta al filo del cierre", items[1].Movimientos[0].Descripcion)
}
