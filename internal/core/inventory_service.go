package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// InventoryService records raw-material purchases and production runs.
// Each create, update and delete writes the entry and its stock movements in
// one transaction: purchases add to raw material stock; production deducts
// qty × ratio of raw material and adds qty of finished product. Updates
// reverse the stored effect of the old entry and apply the new one; deletes
// reverse the stored effect.
type InventoryService interface {
	CreatePurchase(ctx context.Context, in PurchaseInput) (*WheatPurchase, error)
	GetPurchase(ctx context.Context, id int) (*WheatPurchase, error)
	// ListPurchases returns purchases dated within the window, newest first.
	ListPurchases(ctx context.Context, window DateRange) ([]WheatPurchase, error)
	// UpdatePurchase never changes the purchase date.
	UpdatePurchase(ctx context.Context, id int, in PurchaseInput) (*WheatPurchase, error)
	DeletePurchase(ctx context.Context, id int) error

	RecordProduction(ctx context.Context, in ProductionInput) (*Production, error)
	GetProduction(ctx context.Context, id int) (*Production, error)
	// ListProductions returns production entries dated within the window, newest first.
	ListProductions(ctx context.Context, window DateRange) ([]Production, error)
	UpdateProduction(ctx context.Context, id int, in ProductionInput) (*Production, error)
	DeleteProduction(ctx context.Context, id int) error
}

type inventoryService struct {
	pool  *pgxpool.Pool
	stock *StockEngine
}

func NewInventoryService(pool *pgxpool.Pool, stock *StockEngine) InventoryService {
	return &inventoryService{pool: pool, stock: stock}
}

// ── Purchases ─────────────────────────────────────────────────────────────────

const purchaseSelect = `
	SELECT p.id, p.raw_material_id, rm.name, p.quantity_kg, p.price_per_unit,
	       p.other_expenses, p.payment_mode, p.is_paid, p.purchase_date
	FROM wheat_purchases p
	JOIN raw_materials rm ON rm.id = p.raw_material_id`

func scanPurchase(row interface{ Scan(...any) error }) (*WheatPurchase, error) {
	var p WheatPurchase
	var mode string
	err := row.Scan(&p.ID, &p.RawMaterialID, &p.RawMaterialName, &p.QuantityKg, &p.PricePerUnit,
		&p.OtherExpenses, &mode, &p.IsPaid, &p.PurchaseDate)
	p.PaymentMode = PaymentMode(mode)
	return &p, err
}

func (s *inventoryService) CreatePurchase(ctx context.Context, in PurchaseInput) (*WheatPurchase, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO wheat_purchases
		    (raw_material_id, quantity_kg, price_per_unit, other_expenses, payment_mode, is_paid, purchase_date)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7::timestamptz, NOW()))
		RETURNING id
	`, in.RawMaterialID, in.QuantityKg, in.PricePerUnit, in.OtherExpenses,
		string(in.PaymentMode), in.IsPaid, nullTime(in.PurchaseDate)).Scan(&id)
	if err != nil {
		return nil, classifyWriteError(err, "create purchase")
	}

	if _, err := s.stock.AdjustRawMaterialTx(ctx, tx, in.RawMaterialID, in.QuantityKg); err != nil {
		return nil, err
	}

	p, err := scanPurchase(tx.QueryRow(ctx, purchaseSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to reload purchase %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit purchase: %w", err)
	}
	return p, nil
}

func (s *inventoryService) GetPurchase(ctx context.Context, id int) (*WheatPurchase, error) {
	p, err := scanPurchase(s.pool.QueryRow(ctx, purchaseSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, notFoundf(err, "purchase %d", id)
	}
	return p, nil
}

func (s *inventoryService) ListPurchases(ctx context.Context, window DateRange) ([]WheatPurchase, error) {
	rows, err := s.pool.Query(ctx, purchaseSelect+`
		WHERE p.purchase_date::date BETWEEN $1::date AND $2::date
		ORDER BY p.purchase_date DESC, p.id DESC
	`, window.StartDate(), window.EndDate())
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	var out []WheatPurchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *inventoryService) UpdatePurchase(ctx context.Context, id int, in PurchaseInput) (*WheatPurchase, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var oldMaterialID int
	var oldQty decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT raw_material_id, quantity_kg FROM wheat_purchases WHERE id = $1 FOR UPDATE
	`, id).Scan(&oldMaterialID, &oldQty)
	if err != nil {
		return nil, notFoundf(err, "purchase %d", id)
	}

	_, err = tx.Exec(ctx, `
		UPDATE wheat_purchases
		SET raw_material_id = $1, quantity_kg = $2, price_per_unit = $3,
		    other_expenses = $4, payment_mode = $5, is_paid = $6
		WHERE id = $7
	`, in.RawMaterialID, in.QuantityKg, in.PricePerUnit, in.OtherExpenses,
		string(in.PaymentMode), in.IsPaid, id)
	if err != nil {
		return nil, classifyWriteError(err, "update purchase")
	}

	plan := newStockPlan()
	plan.addRaw(oldMaterialID, oldQty.Neg())
	plan.addRaw(in.RawMaterialID, in.QuantityKg)
	if err := plan.applyTx(ctx, tx, s.stock); err != nil {
		return nil, err
	}

	p, err := scanPurchase(tx.QueryRow(ctx, purchaseSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to reload purchase %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit purchase update: %w", err)
	}
	return p, nil
}

func (s *inventoryService) DeletePurchase(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var materialID int
	var qty decimal.Decimal
	err = tx.QueryRow(ctx, `
		DELETE FROM wheat_purchases WHERE id = $1 RETURNING raw_material_id, quantity_kg
	`, id).Scan(&materialID, &qty)
	if err != nil {
		return notFoundf(err, "purchase %d", id)
	}

	if _, err := s.stock.AdjustRawMaterialTx(ctx, tx, materialID, qty.Neg()); err != nil {
		return err
	}
	return commit(ctx, tx, "purchase delete")
}

// ── Production ────────────────────────────────────────────────────────────────

const productionSelect = `
	SELECT pr.id, pr.raw_material_id, rm.name, pr.finished_product_id, fp.name,
	       pr.quantity_kg, pr.raw_material_used_kg, pr.production_date
	FROM productions pr
	JOIN raw_materials rm ON rm.id = pr.raw_material_id
	JOIN finished_products fp ON fp.id = pr.finished_product_id`

func scanProduction(row interface{ Scan(...any) error }) (*Production, error) {
	var p Production
	err := row.Scan(&p.ID, &p.RawMaterialID, &p.RawMaterialName, &p.FinishedProductID, &p.FinishedProductName,
		&p.QuantityKg, &p.RawMaterialUsedKg, &p.ProductionDate)
	return &p, err
}

// RawMaterialUsage is the raw material consumed to produce qty kg at the given ratio.
func RawMaterialUsage(qty, ratio decimal.Decimal) decimal.Decimal {
	return qty.Mul(ratio).Round(2)
}

// rawMaterialUsageTx reads the product's current ratio and returns the usage for qty.
func rawMaterialUsageTx(ctx context.Context, tx pgx.Tx, productID int, qty decimal.Decimal) (decimal.Decimal, error) {
	var ratio decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT raw_material_ratio FROM finished_products WHERE id = $1
	`, productID).Scan(&ratio)
	if err != nil {
		return decimal.Zero, notFoundf(err, "finished product %d", productID)
	}
	return RawMaterialUsage(qty, ratio), nil
}

func (s *inventoryService) RecordProduction(ctx context.Context, in ProductionInput) (*Production, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	used, err := rawMaterialUsageTx(ctx, tx, in.FinishedProductID, in.QuantityKg)
	if err != nil {
		return nil, err
	}

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO productions
		    (raw_material_id, finished_product_id, quantity_kg, raw_material_used_kg, production_date)
		VALUES ($1, $2, $3, $4, COALESCE($5::timestamptz, NOW()))
		RETURNING id
	`, in.RawMaterialID, in.FinishedProductID, in.QuantityKg, used, nullTime(in.ProductionDate)).Scan(&id)
	if err != nil {
		return nil, classifyWriteError(err, "record production")
	}

	plan := newStockPlan()
	plan.addRaw(in.RawMaterialID, used.Neg())
	plan.addFinished(in.FinishedProductID, in.QuantityKg)
	if err := plan.applyTx(ctx, tx, s.stock); err != nil {
		return nil, err
	}

	p, err := scanProduction(tx.QueryRow(ctx, productionSelect+` WHERE pr.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to reload production %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit production: %w", err)
	}
	return p, nil
}

func (s *inventoryService) GetProduction(ctx context.Context, id int) (*Production, error) {
	p, err := scanProduction(s.pool.QueryRow(ctx, productionSelect+` WHERE pr.id = $1`, id))
	if err != nil {
		return nil, notFoundf(err, "production %d", id)
	}
	return p, nil
}

func (s *inventoryService) ListProductions(ctx context.Context, window DateRange) ([]Production, error) {
	rows, err := s.pool.Query(ctx, productionSelect+`
		WHERE pr.production_date::date BETWEEN $1::date AND $2::date
		ORDER BY pr.production_date DESC, pr.id DESC
	`, window.StartDate(), window.EndDate())
	if err != nil {
		return nil, fmt.Errorf("failed to query productions: %w", err)
	}
	defer rows.Close()

	var out []Production
	for rows.Next() {
		p, err := scanProduction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan production: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *inventoryService) UpdateProduction(ctx context.Context, id int, in ProductionInput) (*Production, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var old Production
	err = tx.QueryRow(ctx, `
		SELECT raw_material_id, finished_product_id, quantity_kg, raw_material_used_kg
		FROM productions WHERE id = $1 FOR UPDATE
	`, id).Scan(&old.RawMaterialID, &old.FinishedProductID, &old.QuantityKg, &old.RawMaterialUsedKg)
	if err != nil {
		return nil, notFoundf(err, "production %d", id)
	}

	used, err := rawMaterialUsageTx(ctx, tx, in.FinishedProductID, in.QuantityKg)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE productions
		SET raw_material_id = $1, finished_product_id = $2, quantity_kg = $3,
		    raw_material_used_kg = $4, production_date = COALESCE($5::timestamptz, production_date)
		WHERE id = $6
	`, in.RawMaterialID, in.FinishedProductID, in.QuantityKg, used, nullTime(in.ProductionDate), id)
	if err != nil {
		return nil, classifyWriteError(err, "update production")
	}

	plan := newStockPlan()
	plan.addRaw(old.RawMaterialID, old.RawMaterialUsedKg)
	plan.addFinished(old.FinishedProductID, old.QuantityKg.Neg())
	plan.addRaw(in.RawMaterialID, used.Neg())
	plan.addFinished(in.FinishedProductID, in.QuantityKg)
	if err := plan.applyTx(ctx, tx, s.stock); err != nil {
		return nil, err
	}

	p, err := scanProduction(tx.QueryRow(ctx, productionSelect+` WHERE pr.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to reload production %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit production update: %w", err)
	}
	return p, nil
}

func (s *inventoryService) DeleteProduction(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var materialID, productID int
	var qty, used decimal.Decimal
	err = tx.QueryRow(ctx, `
		DELETE FROM productions WHERE id = $1
		RETURNING raw_material_id, finished_product_id, quantity_kg, raw_material_used_kg
	`, id).Scan(&materialID, &productID, &qty, &used)
	if err != nil {
		return notFoundf(err, "production %d", id)
	}

	plan := newStockPlan()
	plan.addRaw(materialID, used)
	plan.addFinished(productID, qty.Neg())
	if err := plan.applyTx(ctx, tx, s.stock); err != nil {
		return err
	}
	return commit(ctx, tx, "production delete")
}

func commit(ctx context.Context, tx pgx.Tx, what string) error {
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s: %w", what, err)
	}
	return nil
}
