package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogService manages the raw material and finished product master data.
// Stock balances are read here but only ever written by the StockEngine.
type CatalogService interface {
	CreateRawMaterial(ctx context.Context, name string) (*RawMaterial, error)
	GetRawMaterial(ctx context.Context, id int) (*RawMaterial, error)
	ListRawMaterials(ctx context.Context) ([]RawMaterial, error)
	RenameRawMaterial(ctx context.Context, id int, name string) (*RawMaterial, error)
	// DeleteRawMaterial removes the material and, by cascade, its purchases and productions.
	DeleteRawMaterial(ctx context.Context, id int) error

	CreateFinishedProduct(ctx context.Context, in FinishedProductInput) (*FinishedProduct, error)
	GetFinishedProduct(ctx context.Context, id int) (*FinishedProduct, error)
	ListFinishedProducts(ctx context.Context) ([]FinishedProduct, error)
	UpdateFinishedProduct(ctx context.Context, id int, in FinishedProductInput) (*FinishedProduct, error)
	// DeleteFinishedProduct removes the product and, by cascade, its productions and bill lines.
	DeleteFinishedProduct(ctx context.Context, id int) error
}

type catalogService struct {
	pool *pgxpool.Pool
}

func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

// ── Raw materials ─────────────────────────────────────────────────────────────

func (s *catalogService) CreateRawMaterial(ctx context.Context, name string) (*RawMaterial, error) {
	if err := ValidateRawMaterialName(name); err != nil {
		return nil, err
	}
	var m RawMaterial
	err := s.pool.QueryRow(ctx, `
		INSERT INTO raw_materials (name) VALUES ($1)
		RETURNING id, name, current_stock_kg
	`, strings.TrimSpace(name)).Scan(&m.ID, &m.Name, &m.CurrentStockKg)
	if err != nil {
		return nil, classifyWriteError(err, "create raw material")
	}
	return &m, nil
}

func (s *catalogService) GetRawMaterial(ctx context.Context, id int) (*RawMaterial, error) {
	var m RawMaterial
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, current_stock_kg FROM raw_materials WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.CurrentStockKg)
	if err != nil {
		return nil, notFoundf(err, "raw material %d", id)
	}
	return &m, nil
}

func (s *catalogService) ListRawMaterials(ctx context.Context) ([]RawMaterial, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, current_stock_kg FROM raw_materials ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw materials: %w", err)
	}
	defer rows.Close()

	var out []RawMaterial
	for rows.Next() {
		var m RawMaterial
		if err := rows.Scan(&m.ID, &m.Name, &m.CurrentStockKg); err != nil {
			return nil, fmt.Errorf("failed to scan raw material: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *catalogService) RenameRawMaterial(ctx context.Context, id int, name string) (*RawMaterial, error) {
	if err := ValidateRawMaterialName(name); err != nil {
		return nil, err
	}
	var m RawMaterial
	err := s.pool.QueryRow(ctx, `
		UPDATE raw_materials SET name = $1 WHERE id = $2
		RETURNING id, name, current_stock_kg
	`, strings.TrimSpace(name), id).Scan(&m.ID, &m.Name, &m.CurrentStockKg)
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundf(err, "raw material %d", id)
		}
		return nil, classifyWriteError(err, "rename raw material")
	}
	return &m, nil
}

func (s *catalogService) DeleteRawMaterial(ctx context.Context, id int) error {
	return deleteByID(ctx, s.pool, "raw_materials", "raw material", id)
}

// ── Finished products ─────────────────────────────────────────────────────────

const finishedProductColumns = `id, name, current_stock_kg, cost_per_kg, mrp_per_kg, selling_price_per_kg, raw_material_ratio`

func scanFinishedProduct(row interface{ Scan(...any) error }) (*FinishedProduct, error) {
	var p FinishedProduct
	err := row.Scan(&p.ID, &p.Name, &p.CurrentStockKg, &p.CostPerKg, &p.MRPPerKg, &p.SellingPricePerKg, &p.RawMaterialRatio)
	return &p, err
}

func (s *catalogService) CreateFinishedProduct(ctx context.Context, in FinishedProductInput) (*FinishedProduct, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := scanFinishedProduct(s.pool.QueryRow(ctx, `
		INSERT INTO finished_products (name, cost_per_kg, mrp_per_kg, selling_price_per_kg, raw_material_ratio)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+finishedProductColumns,
		strings.TrimSpace(in.Name), in.CostPerKg, in.MRPPerKg, in.SellingPricePerKg, in.ratio()))
	if err != nil {
		return nil, classifyWriteError(err, "create finished product")
	}
	return p, nil
}

func (s *catalogService) GetFinishedProduct(ctx context.Context, id int) (*FinishedProduct, error) {
	p, err := scanFinishedProduct(s.pool.QueryRow(ctx,
		`SELECT `+finishedProductColumns+` FROM finished_products WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundf(err, "finished product %d", id)
	}
	return p, nil
}

func (s *catalogService) ListFinishedProducts(ctx context.Context) ([]FinishedProduct, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+finishedProductColumns+` FROM finished_products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query finished products: %w", err)
	}
	defer rows.Close()

	var out []FinishedProduct
	for rows.Next() {
		p, err := scanFinishedProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finished product: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdateFinishedProduct changes name, prices and ratio. Existing productions
// keep the raw-material usage recorded when they were saved.
func (s *catalogService) UpdateFinishedProduct(ctx context.Context, id int, in FinishedProductInput) (*FinishedProduct, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := scanFinishedProduct(s.pool.QueryRow(ctx, `
		UPDATE finished_products
		SET name = $1, cost_per_kg = $2, mrp_per_kg = $3, selling_price_per_kg = $4, raw_material_ratio = $5
		WHERE id = $6
		RETURNING `+finishedProductColumns,
		strings.TrimSpace(in.Name), in.CostPerKg, in.MRPPerKg, in.SellingPricePerKg, in.ratio(), id))
	if err != nil {
		if isNoRows(err) {
			return nil, notFoundf(err, "finished product %d", id)
		}
		return nil, classifyWriteError(err, "update finished product")
	}
	return p, nil
}

func (s *catalogService) DeleteFinishedProduct(ctx context.Context, id int) error {
	return deleteByID(ctx, s.pool, "finished_products", "finished product", id)
}

// deleteByID deletes one row from a master-data table, reporting ErrNotFound
// when no row matched.
func deleteByID(ctx context.Context, pool *pgxpool.Pool, table, label string, id int) error {
	tag, err := pool.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return classifyWriteError(err, "delete "+label)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", label, id, ErrNotFound)
	}
	return nil
}
