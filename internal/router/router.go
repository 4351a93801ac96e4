package router

import (
	"time"

	"cajaledger/internal/config"
	"cajaledger/internal/handler"
	"cajaledger/internal/infra"
	"cajaledger/internal/middleware"
	"cajaledger/internal/repository"
	"cajaledger/internal/service"
	"cajaledger/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher, smtpBreaker *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	registerRepo := repository.NewRegisterRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	registerSvc := service.NewRegisterService(registerRepo, transactionRepo)
	transactionSvc := service.NewTransactionService(registerRepo, transactionRepo, cfg.Currency)
	closureSvc := service.NewClosureService(registerRepo, transactionRepo, cfg.Currency, dispatcher)
	ledgerSvc := service.NewLedgerService(transactionRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	cajaH := handler.NewCajaHandler(registerSvc, transactionSvc, closureSvc, ledgerSvc)

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpBreaker))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.Abrir)
			caja.GET("/activa", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.Activa)
			caja.POST("/movimiento", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.RegistrarMovimiento)
			caja.GET("/movimientos", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.Movimientos)
			caja.GET("/resumen-pagos", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.ResumenPagos)
			caja.POST("/cierre", middleware.RequireRole("cajero", "supervisor", "administrador"), cajaH.Cerrar)
			caja.GET("/cierres", middleware.RequireRole("supervisor", "administrador"), cajaH.HistorialCierres)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
