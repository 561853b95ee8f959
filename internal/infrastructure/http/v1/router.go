// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"plantops/internal/core/numerator"
	"plantops/internal/core/security"
	"plantops/internal/core/tenant"
	"plantops/internal/domain/bom"
	"plantops/internal/domain/catalogs/company"
	"plantops/internal/domain/catalogs/employee"
	"plantops/internal/domain/catalogs/item"
	"plantops/internal/domain/catalogs/machine"
	"plantops/internal/domain/catalogs/unit"
	"plantops/internal/domain/catalogs/zone"
	"plantops/internal/domain/documents/delivery"
	"plantops/internal/domain/documents/goods_receipt"
	"plantops/internal/domain/ledger"
	"plantops/internal/domain/posting"
	"plantops/internal/domain/production"
	"plantops/internal/domain/reports"
	"plantops/internal/infrastructure/http/v1/handlers"
	"plantops/internal/infrastructure/http/v1/middleware"
	"plantops/internal/infrastructure/storage/postgres"
	"plantops/internal/infrastructure/storage/postgres/catalog_repo"
	"plantops/internal/infrastructure/storage/postgres/document_repo"
	"plantops/internal/infrastructure/storage/postgres/ledger_repo"
	"plantops/internal/infrastructure/storage/postgres/order_repo"
	"plantops/internal/infrastructure/storage/postgres/production_repo"
	"plantops/internal/infrastructure/storage/postgres/report_repo"
	"plantops/pkg/logger"
)

// RouterConfig holds router configuration for multi-tenant architecture.
type RouterConfig struct {
	// TenantManager manages database connections for all tenants
	TenantManager *tenant.Manager

	// MetaPool is connection to meta-database (for health checks)
	MetaPool *pgxpool.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Numerator for document number generation
	Numerator numerator.Generator

	// PostingPolicy guards document posting against closed periods
	PostingPolicy security.PostingPolicy

	// MovementRules evaluates company posting rules on each movement.
	// Optional; nil disables rule evaluation.
	MovementRules *security.MovementRuleEngine

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool
}

// services bundles the domain services shared between route groups.
type services struct {
	companies  *company.Service
	items      *item.Service
	zones      *zone.Service
	units      *unit.Service
	machines   *machine.Service
	employees  *employee.Service
	boms       *bom.Service
	recorder   *ledger.Service
	production *production.Service
	reports    *reports.Service

	goodsReceipts *goods_receipt.Service
	deliveries    *delivery.Service
}

// buildServices wires repositories and services once; per-request database
// access goes through the TxManager in the request context.
func buildServices(cfg RouterConfig) *services {
	s := &services{}

	s.companies = company.NewService(catalog_repo.NewCompanyRepo(), cfg.Numerator)
	s.items = item.NewService(catalog_repo.NewItemRepo(), cfg.Numerator)
	s.zones = zone.NewService(catalog_repo.NewZoneRepo(), cfg.Numerator)
	s.units = unit.NewService(catalog_repo.NewUnitRepo(), cfg.Numerator)
	s.machines = machine.NewService(catalog_repo.NewMachineRepo(), cfg.Numerator)
	s.employees = employee.NewService(catalog_repo.NewEmployeeRepo(), cfg.Numerator)
	s.boms = bom.NewService(catalog_repo.NewBOMRepo(), s.items, cfg.Numerator)

	// Movement events commit atomically with the movement via the outbox.
	sink := postgres.NewMovementEventSink(postgres.NewOutboxPublisher())

	s.recorder = ledger.NewService(ledger.ServiceConfig{
		Repo:      ledger_repo.NewLedgerRepo(),
		Companies: s.companies,
		Items:     s.items,
		Zones:     s.zones,
		Rules:     cfg.MovementRules,
		Events:    sink,
	})

	postingEngine := posting.NewEngine(s.recorder, cfg.PostingPolicy, nil)

	orderRepo := order_repo.NewOrderRepo()

	s.production = production.NewService(production.ServiceConfig{
		Repo:         production_repo.NewProductionRepo(),
		Recorder:     s.recorder,
		BOMs:         s.boms,
		Items:        s.items,
		Zones:        s.zones,
		Machines:     s.machines,
		Employees:    s.employees,
		OrderLines:   orderRepo,
		Reservations: orderRepo,
		Numerator:    cfg.Numerator,
	})

	s.reports = reports.NewService(report_repo.NewReportRepo())

	s.goodsReceipts = goods_receipt.NewService(
		document_repo.NewGoodsReceiptRepo(),
		postingEngine,
		cfg.Numerator,
		s.items,
		nil,
	)
	s.deliveries = delivery.NewService(
		document_repo.NewDeliveryRepo(),
		postingEngine,
		cfg.Numerator,
		nil,
	)

	return s
}

// NewRouter creates and configures the Gin router for multi-tenant architecture.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth, no tenant required)
	healthHandler := handlers.NewHealthHandlerMultiTenant(cfg.MetaPool, cfg.TenantManager)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
		health.GET("/tenants", healthHandler.TenantsStats)
	}

	svc := buildServices(cfg)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Protected endpoints - TenantDB runs first, then Auth
		protected := v1.Group("")
		protected.Use(middleware.TenantDB(cfg.TenantManager)) // 1. Resolve tenant, get DB pool
		protected.Use(middleware.Auth(cfg.JWTValidator))      // 2. Validate JWT
		protected.Use(middleware.UserContext())               // 3. Add UserID to context for domain layer

		// Apply idempotency middleware for mutating operations
		if cfg.IdempotencyEnabled {
			protected.Use(idempotencyMiddleware(10 * time.Minute))
		}

		registerCatalogRoutes(protected, svc)
		registerDocumentRoutes(protected, svc)
		registerLedgerRoutes(protected, svc)
		registerProductionRoutes(protected, svc)
		registerReportRoutes(protected, svc)
	}

	return router
}

// idempotencyMiddleware creates idempotency middleware that uses tenant pool + TxManager from context.
func idempotencyMiddleware(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		pool := tenant.MustGetPool(ctx)
		txm := postgres.MustGetTxManager(ctx)
		store := postgres.NewIdempotencyStoreFromRawPool(pool, txm, ttl)
		middleware.Idempotency(store)(c)
	}
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, svc *services) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	RegisterCatalogRoutes(catalogs.Group("/companies"),
		handlers.NewCompanyHandler(baseHandler, svc.companies), "catalog:company")

	RegisterCatalogRoutes(catalogs.Group("/items"),
		handlers.NewItemHandler(baseHandler, svc.items), "catalog:item")

	RegisterCatalogRoutes(catalogs.Group("/zones"),
		handlers.NewZoneHandler(baseHandler, svc.zones), "catalog:zone")

	RegisterCatalogRoutes(catalogs.Group("/units"),
		handlers.NewUnitHandler(baseHandler, svc.units), "catalog:unit")

	RegisterCatalogRoutes(catalogs.Group("/machines"),
		handlers.NewMachineHandler(baseHandler, svc.machines), "catalog:machine")

	RegisterCatalogRoutes(catalogs.Group("/employees"),
		handlers.NewEmployeeHandler(baseHandler, svc.employees), "catalog:employee")

	// BOM gets recipe-specific lookups on top of the standard catalog routes
	bomHandler := handlers.NewBOMHandler(baseHandler, svc.boms)
	bomGroup := catalogs.Group("/boms")
	RegisterCatalogRoutes(bomGroup, bomHandler, "catalog:bom")
	bomGroup.GET("/active/:itemId", middleware.RequirePermission("catalog:bom:read"), bomHandler.GetActive)
	bomGroup.GET("/versions/:itemId", middleware.RequirePermission("catalog:bom:read"), bomHandler.ListVersions)
}

// registerDocumentRoutes registers document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, svc *services) {
	docsGroup := rg.Group("/document")
	baseHandler := handlers.NewBaseHandler()

	RegisterDocumentRoutes(docsGroup.Group("/goods-receipt"),
		handlers.NewGoodsReceiptHandler(baseHandler, svc.goodsReceipts), "document:goods_receipt")

	RegisterDocumentRoutes(docsGroup.Group("/delivery"),
		handlers.NewDeliveryHandler(baseHandler, svc.deliveries), "document:delivery")
}

// registerLedgerRoutes registers stock ledger endpoints.
func registerLedgerRoutes(rg *gin.RouterGroup, svc *services) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewLedgerHandler(baseHandler, svc.recorder)

	ledgerGroup := rg.Group("/ledger")
	ledgerGroup.POST("/movements", middleware.RequirePermission("ledger:write"), handler.RecordMovement)
	ledgerGroup.GET("/movements", middleware.RequirePermission("ledger:read"), handler.ListMovements)
	ledgerGroup.POST("/transfers", middleware.RequirePermission("ledger:write"), handler.Transfer)
	ledgerGroup.GET("/balances", middleware.RequirePermission("ledger:read"), handler.ListBalances)
	ledgerGroup.GET("/balances/:companyId/:itemId/:zoneId", middleware.RequirePermission("ledger:read"), handler.GetBalance)
	ledgerGroup.GET("/consistency/:companyId/:itemId/:zoneId", middleware.RequirePermission("ledger:read"), handler.CheckConsistency)
}

// registerProductionRoutes registers production log endpoints.
func registerProductionRoutes(rg *gin.RouterGroup, svc *services) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewProductionHandler(baseHandler, svc.production)

	prodGroup := rg.Group("/production/logs")
	prodGroup.POST("", middleware.RequirePermission("production:write"), handler.Start)
	prodGroup.GET("", middleware.RequirePermission("production:read"), handler.List)
	prodGroup.GET("/:id", middleware.RequirePermission("production:read"), handler.Get)
	prodGroup.POST("/:id/close", middleware.RequirePermission("production:write"), handler.Close)
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, svc *services) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewReportsHandler(baseHandler, svc.reports)

	reportsGroup := rg.Group("/reports")
	reportsGroup.GET("/on-hand", middleware.RequirePermission("report:stock:read"), handler.GetOnHand)
	reportsGroup.GET("/turnover", middleware.RequirePermission("report:stock:read"), handler.GetTurnover)
	reportsGroup.GET("/production-variance", middleware.RequirePermission("report:production:read"), handler.GetProductionVariance)
}
