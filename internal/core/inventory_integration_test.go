package core_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"agro-backoffice/internal/core"
	"agro-backoffice/internal/db"
	"agro-backoffice/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dbURL, "UTC")
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := db.Migrate(ctx, pool, migrations.FS, zap.NewNop()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE bill_items, bills, productions, wheat_purchases, expenses,
		               customers, finished_products, raw_materials
		RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		t.Fatalf("Failed to reset test database: %v", err)
	}
	return pool
}

// fixture bundles the services under test with one raw material and one finished product.
type fixture struct {
	pool      *pgxpool.Pool
	catalog   core.CatalogService
	inventory core.InventoryService
	bills     core.BillService
	reports   core.ReportingService
	wheat     *core.RawMaterial
	atta      *core.FinishedProduct
}

func newFixture(t *testing.T, allowNegative bool) *fixture {
	t.Helper()
	pool := setupTestDB(t)
	ctx := context.Background()

	stock := core.NewStockEngine(allowNegative, zap.NewNop())
	f := &fixture{
		pool:      pool,
		catalog:   core.NewCatalogService(pool),
		inventory: core.NewInventoryService(pool, stock),
		bills:     core.NewBillService(pool, stock),
		reports:   core.NewReportingService(pool),
	}

	var err error
	if f.wheat, err = f.catalog.CreateRawMaterial(ctx, "Wheat"); err != nil {
		t.Fatalf("CreateRawMaterial failed: %v", err)
	}
	f.atta, err = f.catalog.CreateFinishedProduct(ctx, core.FinishedProductInput{
		Name:              "Atta",
		CostPerKg:         dec("30"),
		MRPPerKg:          dec("50"),
		SellingPricePerKg: dec("45"),
		RawMaterialRatio:  dec("1.5"),
	})
	if err != nil {
		t.Fatalf("CreateFinishedProduct failed: %v", err)
	}
	return f
}

func (f *fixture) rawStock(t *testing.T, id int) decimal.Decimal {
	t.Helper()
	m, err := f.catalog.GetRawMaterial(context.Background(), id)
	if err != nil {
		t.Fatalf("GetRawMaterial failed: %v", err)
	}
	return m.CurrentStockKg
}

func (f *fixture) productStock(t *testing.T, id int) decimal.Decimal {
	t.Helper()
	p, err := f.catalog.GetFinishedProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("GetFinishedProduct failed: %v", err)
	}
	return p.CurrentStockKg
}

func (f *fixture) purchase(t *testing.T, materialID int, qty string) *core.WheatPurchase {
	t.Helper()
	p, err := f.inventory.CreatePurchase(context.Background(), core.PurchaseInput{
		RawMaterialID: materialID,
		QuantityKg:    dec(qty),
		PricePerUnit:  dec("20"),
		PaymentMode:   core.PaymentCash,
	})
	if err != nil {
		t.Fatalf("CreatePurchase failed: %v", err)
	}
	return p
}

func assertStock(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s stock: got %s, want %s", label, got.StringFixed(2), want)
	}
}

// ── Purchases ─────────────────────────────────────────────────────────────────

func TestInventory_PurchaseIncreasesStock(t *testing.T) {
	f := newFixture(t, true)

	p := f.purchase(t, f.wheat.ID, "100")
	assertStock(t, "wheat", f.rawStock(t, f.wheat.ID), "100")

	if p.RawMaterialName != "Wheat" {
		t.Errorf("expected joined raw material name, got %q", p.RawMaterialName)
	}
	if !p.TotalPrice().Equal(dec("2000")) {
		t.Errorf("expected total price 2000, got %s", p.TotalPrice())
	}
	if p.PurchaseDate.IsZero() {
		t.Error("expected purchase date to default to now")
	}
}

func TestInventory_PurchaseEditReversesOldQuantity(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	p := f.purchase(t, f.wheat.ID, "100")

	updated, err := f.inventory.UpdatePurchase(ctx, p.ID, core.PurchaseInput{
		RawMaterialID: f.wheat.ID,
		QuantityKg:    dec("80"),
		PricePerUnit:  dec("22"),
		PaymentMode:   core.PaymentCredit,
		PurchaseDate:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("UpdatePurchase failed: %v", err)
	}
	assertStock(t, "wheat", f.rawStock(t, f.wheat.ID), "80")

	if !updated.PurchaseDate.Equal(p.PurchaseDate) {
		t.Errorf("purchase date must not change on update: was %v, now %v", p.PurchaseDate, updated.PurchaseDate)
	}
	if updated.PaymentMode != core.PaymentCredit {
		t.Errorf("expected Credit, got %s", updated.PaymentMode)
	}
}

func TestInventory_PurchaseMovedToAnotherMaterial(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	maize, err := f.catalog.CreateRawMaterial(ctx, "Maize")
	if err != nil {
		t.Fatalf("CreateRawMaterial failed: %v", err)
	}
	p := f.purchase(t, f.wheat.ID, "100")

	_, err = f.inventory.UpdatePurchase(ctx, p.ID, core.PurchaseInput{
		RawMaterialID: maize.ID,
		QuantityKg:    dec("60"),
		PricePerUnit:  dec("20"),
		PaymentMode:   core.PaymentCash,
	})
	if err != nil {
		t.Fatalf("UpdatePurchase failed: %v", err)
	}
	assertStock(t, "wheat", f.rawStock(t, f.wheat.ID), "0")
	assertStock(t, "maize", f.rawStock(t, maize.ID), "60")
}

func TestInventory_PurchaseDeleteReversesStock(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	p := f.purchase(t, f.wheat.ID, "100")
	f.purchase(t, f.wheat.ID, "25")

	if err := f.inventory.DeletePurchase(ctx, p.ID); err != nil {
		t.Fatalf("DeletePurchase failed: %v", err)
	}
	assertStock(t, "wheat", f.rawStock(t, f.wheat.ID), "25")

	if err := f.inventory.DeletePurchase(ctx, p.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
	if _, err := f.inventory.GetPurchase(ctx, p.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound loading deleted purchase, got %v", err)
	}
}

func TestInventory_PurchaseForMissingMaterial(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.inventory.CreatePurchase(context.Background(), core.PurchaseInput{
		RawMaterialID: 9999,
		QuantityKg:    dec("1"),
		PaymentMode:   core.PaymentCash,
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInventory_ConcurrentPurchasesDoNotLoseUpdates(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.inventory.CreatePurchase(ctx, core.PurchaseInput{
				RawMaterialID: f.wheat.ID,
				QuantityKg:    dec("5"),
				PricePerUnit:  dec("20"),
				PaymentMode:   core.PaymentCash,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent CreatePurchase failed: %v", err)
		}
	}
	assertStock(t, "wheat", f.rawStock(t, f.wheat.ID), "100")
}

// ── Production ────────────────────────────────────────────────────────────────

func TestInventory_ProductionMovesStock(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	f.purchase(t, f.wheat.ID, "100")

	pr, err := f.inventory.RecordProduction(ctx, core.ProductionInput{
		RawMaterialID:     f.wheat.ID,
		FinishedProductID: f.atta.ID,
		QuantityKg:        dec("50"),
	})
	if err != nil {
		t.Fatalf("RecordProduction failed: %v", err)
	}

	// ratio 1.5: 50 kg atta consumes 75 kg wheat
	assertStock(t, "wheat", f.rawStock(t, f.wheat.ID), "25")
	assertStock(t, "atta", f.productStock(t, f.atta.ID), "50")
	if !pr.RawMaterialUsedKg.Equal(dec("75")) {
		t.Errorf("expected 75 kg raw material used, got %s", pr.RawMaterialUsedKg)
	}
}

func TestInventory_ProductionEditReversesStoredUsage(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	f.purchase(t, f.wheat.ID, "100")
	pr, err := f.inventory.RecordProduction(ctx, core.ProductionInput{
		RawMaterialID:     f.wheat.ID,
		FinishedProductID: f.atta.ID,
		QuantityKg:        dec("10"),
	})
	if err != nil {
		t.Fatalf("RecordProduction failed: %v", err)
	}
	assertStock(t, "wheat", f.rawStock(t, f.wheat.ID), "85")

	// Changing the ratio afterwards must not affect the reversal of the old entry.
	_, err = f.catalog.UpdateFinishedProduct(ctx, f.atta.ID, core.FinishedProductInput{
		Name:              "Atta",
		SellingPricePerKg: dec("45"),
		RawMaterialRatio:  dec("2"),
	})
	if err != nil {
		t.Fatalf("UpdateFinishedProduct failed: %v", err)
	}

	updated, err := f.inventory.UpdateProduction(ctx, pr.ID, core.ProductionInput{
		RawMaterialID:     f.wheat.ID,
		FinishedProductID: f.atta.ID,
		QuantityKg:        dec("20"),
	})
	if err != nil {
		t.Fatalf("UpdateProduction failed: %v", err)
	}

	// 85 + 15 (reversal) - 40 (20 × 2)
	assertStock(t, "wheat", f.rawStock(t, f.wheat.ID), "60")
	assertStock(t, "atta", f.productStock(t, f.atta.ID), "20")
	if !updated.RawMaterialUsedKg.Equal(dec("40")) {
		t.Errorf("expected 40 kg used after edit, got %s", updated.RawMaterialUsedKg)
	}
	if !updated.ProductionDate.Equal(pr.ProductionDate) {
		t.Error("production date must be kept when no new date is given")
	}
}

func TestInventory_ProductionDeleteReversesStock(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	f.purchase(t, f.wheat.ID, "100")
	pr, err := f.inventory.RecordProduction(ctx, core.ProductionInput{
		RawMaterialID:     f.wheat.ID,
		FinishedProductID: f.atta.ID,
		QuantityKg:        dec("20"),
	})
	if err != nil {
		t.Fatalf("RecordProduction failed: %v", err)
	}

	got, err := f.inventory.GetProduction(ctx, pr.ID)
	if err != nil {
		t.Fatalf("GetProduction failed: %v", err)
	}
	if got.FinishedProductName != "Atta" || !got.RawMaterialUsedKg.Equal(dec("30")) {
		t.Errorf("unexpected production: %+v", got)
	}

	if err := f.inventory.DeleteProduction(ctx, pr.ID); err != nil {
		t.Fatalf("DeleteProduction failed: %v", err)
	}
	assertStock(t, "wheat", f.rawStock(t, f.wheat.ID), "100")
	assertStock(t, "atta", f.productStock(t, f.atta.ID), "0")
}

func TestInventory_SubCentProductionRejected(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.purchase(t, f.wheat.ID, "100")

	_, err := f.inventory.RecordProduction(ctx, core.ProductionInput{
		RawMaterialID:     f.wheat.ID,
		FinishedProductID: f.atta.ID,
		QuantityKg:        dec("2.005"),
	})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for 2.005 kg, got %v", err)
	}
	assertStock(t, "wheat", f.rawStock(t, f.wheat.ID), "100")
	assertStock(t, "atta", f.productStock(t, f.atta.ID), "0")
}

func TestInventory_AllowPolicyPermitsNegativeStock(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.inventory.RecordProduction(context.Background(), core.ProductionInput{
		RawMaterialID:     f.wheat.ID,
		FinishedProductID: f.atta.ID,
		QuantityKg:        dec("10"),
	})
	if err != nil {
		t.Fatalf("RecordProduction failed under allow policy: %v", err)
	}
	assertStock(t, "wheat", f.rawStock(t, f.wheat.ID), "-15")
}

func TestInventory_StrictPolicyRollsBack(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	f.purchase(t, f.wheat.ID, "10")

	_, err := f.inventory.RecordProduction(ctx, core.ProductionInput{
		RawMaterialID:     f.wheat.ID,
		FinishedProductID: f.atta.ID,
		QuantityKg:        dec("10"), // needs 15 kg
	})
	if !errors.Is(err, core.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	assertStock(t, "wheat", f.rawStock(t, f.wheat.ID), "10")
	assertStock(t, "atta", f.productStock(t, f.atta.ID), "0")

	var count int
	if err := f.pool.QueryRow(ctx, "SELECT COUNT(*) FROM productions").Scan(&count); err != nil {
		t.Fatalf("count productions: %v", err)
	}
	if count != 0 {
		t.Errorf("expected production insert to be rolled back, found %d rows", count)
	}
}
