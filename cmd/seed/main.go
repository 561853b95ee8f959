// Package main provides a CLI tool for seeding a tenant database with demo data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"plantops/internal/core/id"
	"plantops/internal/core/tenant"
	"plantops/internal/core/types"
	"plantops/internal/infrastructure/storage/postgres"
	"plantops/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedTenantRegistry(ctx, dbURL, log); err != nil {
		log.Warnw("failed to seed tenant registry", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	// 1. Company with valuation policy
	companyID := id.New()
	companyCode := "CO-001"
	tag, err := pool.Pool.Exec(ctx, `
		INSERT INTO cat_companies (
			id, code, name, full_name,
			valuation_raw, valuation_finished, valuation_wip,
			is_default, version, deletion_mark, attributes
		)
		VALUES ($1, $2, $3, $4, 'LAST_PRICE', 'MANUFACTURING_COST', 'AVERAGE', true, 1, false, '{}')
		ON CONFLICT (code) WHERE NOT deletion_mark DO NOTHING
	`, companyID, companyCode, "Northside Plastics", "Northside Plastics LLC")
	if err != nil {
		return fmt.Errorf("seed company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if err := pool.Pool.QueryRow(ctx, `
			SELECT id FROM cat_companies WHERE code = $1 AND NOT deletion_mark
		`, companyCode).Scan(&companyID); err != nil {
			return fmt.Errorf("fetch existing company: %w", err)
		}
	}

	// 2. Units
	units := []struct {
		code   string
		name   string
		symbol string
		uType  string
	}{
		{"pcs", "Piece", "pcs", "piece"},
		{"kg", "Kilogram", "kg", "weight"},
		{"m", "Meter", "m", "length"},
	}
	unitIDs := make(map[string]id.ID, len(units))
	for _, u := range units {
		uid := id.New()
		tag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_units (id, code, name, symbol, type, is_base, conversion_factor, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, true, 1, 1, false, '{}')
			ON CONFLICT (code) WHERE NOT deletion_mark DO NOTHING
		`, uid, u.code, u.name, u.symbol, u.uType)
		if err != nil {
			log.Warnw("failed to seed unit", "code", u.code, "error", err)
			continue
		}
		if tag.RowsAffected() == 0 {
			if err := pool.Pool.QueryRow(ctx, `
				SELECT id FROM cat_units WHERE code = $1 AND NOT deletion_mark
			`, u.code).Scan(&uid); err != nil {
				log.Warnw("failed to fetch existing unit id", "code", u.code, "error", err)
				continue
			}
		}
		unitIDs[u.code] = uid
	}

	// 3. Items: raw materials and finished goods
	items := []struct {
		code              string
		name              string
		iType             string
		unit              string
		lastPurchasePrice *decimal.Decimal
		standardCost      *decimal.Decimal
		manufacturingCost *decimal.Decimal
	}{
		{"RM-PP", "Polypropylene granulate", "RAW", "kg", dec("2.40"), dec("2.50"), nil},
		{"RM-DYE", "Masterbatch dye, blue", "RAW", "kg", dec("8.10"), dec("8.00"), nil},
		{"RM-INSERT", "Brass threaded insert M6", "RAW", "pcs", dec("0.15"), dec("0.14"), nil},
		{"FG-CRATE", "Stacking crate 40x30", "FINISHED", "pcs", nil, dec("3.10"), dec("2.85")},
		{"FG-LID", "Crate lid 40x30", "FINISHED", "pcs", nil, dec("1.20"), dec("1.05")},
	}
	itemIDs := make(map[string]id.ID, len(items))
	for _, it := range items {
		iid := id.New()
		unitID := unitIDs[it.unit]
		tag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_items (
				id, code, name, type, base_unit_id,
				last_purchase_price, standard_cost, manufacturing_cost,
				version, deletion_mark, attributes
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, false, '{}')
			ON CONFLICT (code) WHERE NOT deletion_mark DO NOTHING
		`, iid, it.code, it.name, it.iType, unitID.String(),
			it.lastPurchasePrice, it.standardCost, it.manufacturingCost)
		if err != nil {
			log.Warnw("failed to seed item", "code", it.code, "error", err)
			continue
		}
		if tag.RowsAffected() == 0 {
			if err := pool.Pool.QueryRow(ctx, `
				SELECT id FROM cat_items WHERE code = $1 AND NOT deletion_mark
			`, it.code).Scan(&iid); err != nil {
				log.Warnw("failed to fetch existing item id", "code", it.code, "error", err)
				continue
			}
		}
		itemIDs[it.code] = iid
	}

	// 4. Zones: one of each role plus transit
	zones := []struct {
		code      string
		name      string
		zType     string
		isDefault bool
	}{
		{"Z-RAW", "Raw material store", "RAW", true},
		{"Z-WIP", "Injection molding floor", "WIP", false},
		{"Z-FG", "Finished goods store", "FINISHED", false},
		{"Z-SCRAP", "Scrap pen", "SCRAP", false},
		{"Z-TRANSIT", "Inter-site transit", "TRANSIT", false},
	}
	zoneIDs := make(map[string]id.ID, len(zones))
	for _, z := range zones {
		zid := id.New()
		tag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_zones (id, code, name, type, company_id, is_default, is_active, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, $6, true, 1, false, '{}')
			ON CONFLICT (code) WHERE NOT deletion_mark DO NOTHING
		`, zid, z.code, z.name, z.zType, companyID.String(), z.isDefault)
		if err != nil {
			log.Warnw("failed to seed zone", "code", z.code, "error", err)
			continue
		}
		if tag.RowsAffected() == 0 {
			if err := pool.Pool.QueryRow(ctx, `
				SELECT id FROM cat_zones WHERE code = $1 AND NOT deletion_mark
			`, z.code).Scan(&zid); err != nil {
				log.Warnw("failed to fetch existing zone id", "code", z.code, "error", err)
				continue
			}
		}
		zoneIDs[z.code] = zid
	}

	// 5. Machines
	machines := []struct {
		code        string
		name        string
		ratePerHour float64
	}{
		{"IM-01", "Injection molder 250t", 120},
		{"IM-02", "Injection molder 400t", 90},
	}
	for _, m := range machines {
		mid := id.New()
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_machines (id, code, name, zone_id, nominal_rate_per_hour, is_active, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, true, 1, false, '{}')
			ON CONFLICT (code) WHERE NOT deletion_mark DO NOTHING
		`, mid, m.code, m.name, zoneIDs["Z-WIP"].String(), m.ratePerHour)
		if err != nil {
			log.Warnw("failed to seed machine", "code", m.code, "error", err)
		}
	}

	// 6. Employees
	employees := []struct {
		code string
		name string
		role string
	}{
		{"EMP-001", "Dana Whitfield", "supervisor"},
		{"EMP-002", "Marcus Lee", "operator"},
		{"EMP-003", "Priya Raman", "operator"},
		{"EMP-004", "Tomas Hruby", "setup"},
	}
	for _, e := range employees {
		eid := id.New()
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_employees (id, code, name, default_role, is_active, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, true, 1, false, '{}')
			ON CONFLICT (code) WHERE NOT deletion_mark DO NOTHING
		`, eid, e.code, e.name, e.role)
		if err != nil {
			log.Warnw("failed to seed employee", "code", e.code, "error", err)
		}
	}

	// 7. Active BOM for the crate: quantities per one unit of output
	if err := seedBOM(ctx, pool, log, "BOM-CRATE-1", "Stacking crate v1", itemIDs["FG-CRATE"],
		[]bomLineSeed{
			{itemIDs["RM-PP"], qty("1.6")},
			{itemIDs["RM-DYE"], qty("0.04")},
			{itemIDs["RM-INSERT"], qty("4")},
		}); err != nil {
		log.Warnw("failed to seed BOM", "error", err)
	}

	// 8. A sales order line with a raw material reservation
	if err := seedSalesOrder(ctx, pool, log, companyID, itemIDs, zoneIDs); err != nil {
		log.Warnw("failed to seed sales order", "error", err)
	}

	log.Info("demo data seeded successfully")
	return nil
}

type bomLineSeed struct {
	rawItemID id.ID
	quantity  types.Quantity
}

func seedBOM(ctx context.Context, pool *postgres.Pool, log *logger.Logger, code, name string, finishedItemID id.ID, lines []bomLineSeed) error {
	if id.IsNil(finishedItemID) {
		return errors.New("finished item not seeded")
	}

	bomID := id.New()
	tag, err := pool.Pool.Exec(ctx, `
		INSERT INTO cat_boms (id, code, name, finished_item_id, bom_version, is_active, version, deletion_mark, attributes)
		VALUES ($1, $2, $3, $4, 1, true, 1, false, '{}')
		ON CONFLICT (code) WHERE NOT deletion_mark DO NOTHING
	`, bomID, code, name, finishedItemID.String())
	if err != nil {
		return fmt.Errorf("insert bom: %w", err)
	}
	if tag.RowsAffected() == 0 {
		log.Infow("BOM already exists", "code", code)
		return nil
	}

	for i, line := range lines {
		if id.IsNil(line.rawItemID) {
			continue
		}
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_bom_lines (line_id, bom_id, raw_item_id, quantity, line_number)
			VALUES ($1, $2, $3, $4, $5)
		`, id.New(), bomID, line.rawItemID.String(), line.quantity, i+1)
		if err != nil {
			return fmt.Errorf("insert bom line %d: %w", i+1, err)
		}
	}

	return nil
}

func seedSalesOrder(ctx context.Context, pool *postgres.Pool, log *logger.Logger, companyID id.ID, itemIDs, zoneIDs map[string]id.ID) error {
	crateID, ok := itemIDs["FG-CRATE"]
	if !ok {
		return errors.New("finished item not seeded")
	}

	orderNumber := "SO-2026-00001"
	var exists bool
	if err := pool.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM sales_order_lines WHERE order_number = $1)
	`, orderNumber).Scan(&exists); err != nil {
		return fmt.Errorf("check order exists: %w", err)
	}
	if exists {
		log.Infow("sales order already exists", "number", orderNumber)
		return nil
	}

	lineID := id.New()
	dueDate := time.Now().AddDate(0, 1, 0)
	_, err := pool.Pool.Exec(ctx, `
		INSERT INTO sales_order_lines (line_id, order_number, company_id, item_id, quantity, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, lineID, orderNumber, companyID.String(), crateID.String(), qty("500"), dueDate)
	if err != nil {
		return fmt.Errorf("insert order line: %w", err)
	}

	// Reserve granulate for the order in the raw zone.
	ppID := itemIDs["RM-PP"]
	rawZoneID := zoneIDs["Z-RAW"]
	if !id.IsNil(ppID) && !id.IsNil(rawZoneID) {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO raw_reservations (reservation_id, line_id, item_id, zone_id, quantity)
			VALUES ($1, $2, $3, $4, $5)
		`, id.New(), lineID, ppID.String(), rawZoneID.String(), qty("800"))
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
	}

	return nil
}

func seedTenantRegistry(ctx context.Context, dbURL string, log *logger.Logger) error {
	metaDSN := os.Getenv("META_DATABASE_URL")
	if metaDSN == "" {
		log.Warn("META_DATABASE_URL is not set; skipping tenant registry seed")
		return nil
	}

	metaPool, err := pgxpool.New(ctx, metaDSN)
	if err != nil {
		return fmt.Errorf("connect meta database: %w", err)
	}
	defer metaPool.Close()

	if err := metaPool.Ping(ctx); err != nil {
		return fmt.Errorf("ping meta database: %w", err)
	}

	tenantSlug := os.Getenv("TENANT_SLUG")
	if tenantSlug == "" {
		tenantSlug = "demo"
	}

	tenantName := os.Getenv("TENANT_NAME")
	if tenantName == "" {
		tenantName = "Demo Tenant"
	}

	tenantPlan := os.Getenv("TENANT_PLAN")
	if tenantPlan == "" {
		tenantPlan = string(tenant.PlanStandard)
	}

	dbConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return fmt.Errorf("parse tenant database url: %w", err)
	}

	dbHost := dbConfig.ConnConfig.Host
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := int(dbConfig.ConnConfig.Port)
	if dbPort == 0 {
		dbPort = 5432
	}

	dbName := dbConfig.ConnConfig.Database
	if dbName == "" {
		dbName = "plantops"
	}

	var existingID string
	err = metaPool.QueryRow(ctx, `SELECT id FROM tenants WHERE slug = $1`, tenantSlug).Scan(&existingID)
	if err == nil {
		log.Infow("tenant already exists in registry", "slug", tenantSlug, "tenant_id", existingID)
		return nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check tenant exists: %w", err)
	}

	registry := tenant.NewPostgresRegistry(metaPool)
	newTenant := &tenant.Tenant{
		Slug:        tenantSlug,
		DisplayName: tenantName,
		DBName:      dbName,
		DBHost:      dbHost,
		DBPort:      dbPort,
		Status:      tenant.StatusActive,
		Plan:        tenant.Plan(tenantPlan),
		Settings:    map[string]any{},
	}

	if err := registry.Create(ctx, newTenant); err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}

	log.Infow("tenant seeded in registry", "slug", tenantSlug, "tenant_id", newTenant.ID)
	return nil
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func qty(s string) types.Quantity {
	return types.NewQuantityFromDecimal(decimal.RequireFromString(s))
}
