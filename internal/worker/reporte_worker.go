package worker

// reporte_worker.go
// Processes closure-report jobs from QueueReportes: loads the closure and its
// register, runs the day's transactions through the merge engine, renders the
// PDF and hands it to the email queue.

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"cajaledger/internal/config"
	"cajaledger/internal/infra"
	"cajaledger/internal/ledger"
	"cajaledger/internal/model"
	"cajaledger/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ReporteWorker renders closure report PDFs.
type ReporteWorker struct {
	registros   repository.RegisterRepository
	movimientos repository.TransactionRepository
	dispatcher  *Dispatcher
	cfg         *config.Config
}

func NewReporteWorker(registros repository.RegisterRepository, movimientos repository.TransactionRepository, dispatcher *Dispatcher, cfg *config.Config) *ReporteWorker {
	return &ReporteWorker{registros: registros, movimientos: movimientos, dispatcher: dispatcher, cfg: cfg}
}

// Process renders the closure report and enqueues the supervisor email. A
// malformed payload is dropped; any other failure is returned so the pool can
// retry the job.
func (w *ReporteWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload CierreReportePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("reporte_worker: invalid payload")
		return nil
	}

	cierre, err := w.movimientos.FindByID(ctx, payload.CierreID)
	if err != nil {
		return fmt.Errorf("loading closure %s: %w", payload.CierreID, err)
	}
	reg, err := w.registros.FindByID(ctx, cierre.RegisterID)
	if err != nil {
		return fmt.Errorf("loading register %s: %w", cierre.RegisterID, err)
	}
	txs, err := w.movimientos.ListByRegisterSince(ctx, reg.ID, reg.OpenedAt)
	if err != nil {
		return fmt.Errorf("listing transactions: %w", err)
	}
	merged := ledger.Merge(model.LedgerEntries(txs))

	rep := w.buildReporte(reg, cierre, merged)
	pdfPath, err := infra.GenerateCierrePDF(rep, w.cfg.PDFStoragePath)
	if err != nil {
		return fmt.Errorf("rendering PDF: %w", err)
	}
	log.Info().Str("path", pdfPath).Str("cierre_id", rep.CierreID).Msg("reporte_worker: closure report generated")

	if w.cfg.SupervisorEmail == "" {
		return nil
	}
	mail := EmailJobPayload{
		ToEmail: w.cfg.SupervisorEmail,
		Subject: "Cierre de caja " + reg.Name + " — " + cierre.CreatedAt.Format("02/01/2006"),
		Body:    "Se adjunta el reporte de cierre de caja.",
		PDFPath: pdfPath,
	}
	return w.dispatcher.EnqueueEmail(ctx, mail)
}

func (w *ReporteWorker) buildReporte(reg *model.CashRegister, cierre *model.CashTransaction, merged []ledger.Entry) *infra.CierreReporte {
	rep := &infra.CierreReporte{
		CierreID:      cierre.ID.String(),
		Caja:          reg.Name,
		TiendaID:      reg.StoreID.String(),
		Fecha:         cierre.CreatedAt,
		Empleado:      cierre.Employee,
		Moneda:        w.cfg.Currency,
		Contado:       cierre.Amount,
		Observaciones: cierre.Description,
	}
	rep.MontoApertura = derefOrZero(cierre.OpeningBalance)
	rep.TotalIngresos = derefOrZero(cierre.TotalIncome)
	rep.TotalEgresos = derefOrZero(cierre.TotalExpense)
	rep.Esperado = derefOrZero(cierre.ExpectedCash)
	rep.Descuadre = derefOrZero(cierre.Discrepancy)
	switch rep.Descuadre.Sign() {
	case 0:
		rep.Clasificacion = "cuadrada"
	case 1:
		rep.Clasificacion = "sobrante"
	default:
		rep.Clasificacion = "faltante"
	}

	for cat, monto := range ledger.Breakdown(merged) {
		rep.PorMetodo = append(rep.PorMetodo, infra.MetodoMonto{Metodo: string(cat), Monto: monto})
	}
	sort.Slice(rep.PorMetodo, func(i, j int) bool { return rep.PorMetodo[i].Metodo < rep.PorMetodo[j].Metodo })
	for _, e := range merged {
		if e.Type == ledger.TypeClosure {
			continue
		}
		rep.Movimientos = append(rep.Movimientos, infra.LineaMovimiento{
			Hora:        e.Timestamp.Format("15:04"),
			Tipo:        e.Type,
			Descripcion: e.Description,
			Empleado:    e.Employee,
			Monto:       e.Amount,
		})
	}
	return rep
}

func derefOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
