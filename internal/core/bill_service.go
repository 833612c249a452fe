package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BillService manages sales bills and their line items.
//
// Stock rules for lines:
//   - a new line deducts its quantity from the product and is marked deducted;
//   - a changed line restores its old quantity to its old product (if it was
//     deducted) and deducts the new quantity from the new product;
//   - a removed line, or a deleted bill, restores every deducted quantity.
//
// The header, all line changes and all stock movements of one save commit
// together or not at all.
type BillService interface {
	SaveBill(ctx context.Context, in BillInput) (*Bill, error)
	GetBill(ctx context.Context, id int) (*Bill, error)
	// ListBills returns bills dated within the window, newest first, with items.
	ListBills(ctx context.Context, window DateRange) ([]Bill, error)
	DeleteBill(ctx context.Context, id int) error
	// MarkBillsPaid sets is_paid on every listed bill and returns how many were updated.
	// Unknown ids are ignored.
	MarkBillsPaid(ctx context.Context, ids []int) (int64, error)
}

type billService struct {
	pool  *pgxpool.Pool
	stock *StockEngine
}

func NewBillService(pool *pgxpool.Pool, stock *StockEngine) BillService {
	return &billService{pool: pool, stock: stock}
}

func (s *billService) SaveBill(ctx context.Context, in BillInput) (*Bill, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	billID, err := s.saveHeaderTx(ctx, tx, in)
	if err != nil {
		return nil, err
	}

	existing, err := lockBillItemsTx(ctx, tx, billID)
	if err != nil {
		return nil, err
	}

	plan := newStockPlan()
	for i, item := range in.Items {
		if item.ID == nil {
			if err := s.addItemTx(ctx, tx, billID, item, plan); err != nil {
				return nil, fmt.Errorf("items[%d]: %w", i, err)
			}
			continue
		}
		old, ok := existing[*item.ID]
		if !ok {
			return nil, fmt.Errorf("items[%d]: bill item %d on bill %d: %w", i, *item.ID, billID, ErrNotFound)
		}
		if item.Delete {
			if err := s.removeItemTx(ctx, tx, old, plan); err != nil {
				return nil, fmt.Errorf("items[%d]: %w", i, err)
			}
			delete(existing, old.ID)
			continue
		}
		if err := s.changeItemTx(ctx, tx, old, item, plan); err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
	}

	if err := plan.applyTx(ctx, tx, s.stock); err != nil {
		return nil, err
	}

	bill, err := loadBill(ctx, tx, billID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit bill: %w", err)
	}
	return bill, nil
}

// saveHeaderTx inserts or updates the bill row and returns its id.
func (s *billService) saveHeaderTx(ctx context.Context, tx pgx.Tx, in BillInput) (int, error) {
	var id int
	if in.ID == nil {
		hasGST := true
		if in.HasGST != nil {
			hasGST = *in.HasGST
		}
		err := tx.QueryRow(ctx, `
			INSERT INTO bills (customer_id, is_paid, other_expenses, has_gst, bill_date)
			VALUES ($1, $2, $3, $4, COALESCE($5::timestamptz, NOW()))
			RETURNING id
		`, in.CustomerID, in.IsPaid, in.OtherExpenses, hasGST, nullTime(in.BillDate)).Scan(&id)
		if err != nil {
			return 0, classifyWriteError(err, "create bill")
		}
		return id, nil
	}

	err := tx.QueryRow(ctx, `
		UPDATE bills
		SET customer_id = $1, is_paid = $2, other_expenses = $3, has_gst = COALESCE($4, has_gst)
		WHERE id = $5
		RETURNING id
	`, in.CustomerID, in.IsPaid, in.OtherExpenses, in.HasGST, *in.ID).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return 0, notFoundf(err, "bill %d", *in.ID)
		}
		return 0, classifyWriteError(err, "update bill")
	}
	return id, nil
}

// lockBillItemsTx loads the bill's current lines with row locks, keyed by id.
func lockBillItemsTx(ctx context.Context, tx pgx.Tx, billID int) (map[int]BillItem, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, bill_id, product_id, quantity_kg, price_per_unit, has_stock_deducted
		FROM bill_items WHERE bill_id = $1
		ORDER BY id
		FOR UPDATE
	`, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock bill items: %w", err)
	}
	defer rows.Close()

	items := map[int]BillItem{}
	for rows.Next() {
		var it BillItem
		if err := rows.Scan(&it.ID, &it.BillID, &it.ProductID, &it.QuantityKg, &it.PricePerUnit, &it.HasStockDeducted); err != nil {
			return nil, fmt.Errorf("failed to scan bill item: %w", err)
		}
		items[it.ID] = it
	}
	return items, rows.Err()
}

// sellingPriceTx returns the product's current selling price.
func sellingPriceTx(ctx context.Context, tx pgx.Tx, productID int) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT selling_price_per_kg FROM finished_products WHERE id = $1
	`, productID).Scan(&price)
	if err != nil {
		return decimal.Zero, notFoundf(err, "finished product %d", productID)
	}
	return price, nil
}

func (s *billService) addItemTx(ctx context.Context, tx pgx.Tx, billID int, in BillItemInput, plan *stockPlan) error {
	price := in.PricePerUnit
	if price.IsZero() {
		var err error
		if price, err = sellingPriceTx(ctx, tx, in.ProductID); err != nil {
			return err
		}
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO bill_items (bill_id, product_id, quantity_kg, price_per_unit, has_stock_deducted)
		VALUES ($1, $2, $3, $4, true)
	`, billID, in.ProductID, in.QuantityKg, price)
	if err != nil {
		return classifyWriteError(err, "add bill item")
	}
	plan.addFinished(in.ProductID, in.QuantityKg.Neg())
	return nil
}

func (s *billService) changeItemTx(ctx context.Context, tx pgx.Tx, old BillItem, in BillItemInput, plan *stockPlan) error {
	price := in.PricePerUnit
	if price.IsZero() {
		if in.ProductID == old.ProductID {
			price = old.PricePerUnit
		} else {
			var err error
			if price, err = sellingPriceTx(ctx, tx, in.ProductID); err != nil {
				return err
			}
		}
	}
	_, err := tx.Exec(ctx, `
		UPDATE bill_items
		SET product_id = $1, quantity_kg = $2, price_per_unit = $3, has_stock_deducted = true
		WHERE id = $4
	`, in.ProductID, in.QuantityKg, price, old.ID)
	if err != nil {
		return classifyWriteError(err, "update bill item")
	}

	if old.HasStockDeducted {
		plan.addFinished(old.ProductID, old.QuantityKg)
	}
	plan.addFinished(in.ProductID, in.QuantityKg.Neg())
	return nil
}

func (s *billService) removeItemTx(ctx context.Context, tx pgx.Tx, old BillItem, plan *stockPlan) error {
	if _, err := tx.Exec(ctx, `DELETE FROM bill_items WHERE id = $1`, old.ID); err != nil {
		return classifyWriteError(err, "remove bill item")
	}
	if old.HasStockDeducted {
		plan.addFinished(old.ProductID, old.QuantityKg)
	}
	return nil
}

func (s *billService) GetBill(ctx context.Context, id int) (*Bill, error) {
	return loadBill(ctx, s.pool, id)
}

func (s *billService) ListBills(ctx context.Context, window DateRange) ([]Bill, error) {
	rows, err := s.pool.Query(ctx, billSelect+`
		WHERE b.bill_date::date BETWEEN $1::date AND $2::date
		ORDER BY b.bill_date DESC, b.id DESC
	`, window.StartDate(), window.EndDate())
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	var bills []Bill
	index := map[int]int{}
	var ids []int
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		b.Items = []BillItem{}
		index[b.ID] = len(bills)
		ids = append(ids, b.ID)
		bills = append(bills, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()
	if len(ids) == 0 {
		return bills, nil
	}

	items, err := queryBillItems(ctx, s.pool, `bi.bill_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		b := &bills[index[it.BillID]]
		b.Items = append(b.Items, it)
	}
	return bills, nil
}

func (s *billService) DeleteBill(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT true FROM bills WHERE id = $1 FOR UPDATE`, id).Scan(&exists); err != nil {
		return notFoundf(err, "bill %d", id)
	}

	items, err := lockBillItemsTx(ctx, tx, id)
	if err != nil {
		return err
	}
	plan := newStockPlan()
	for _, it := range items {
		if it.HasStockDeducted {
			plan.addFinished(it.ProductID, it.QuantityKg)
		}
	}
	if err := plan.applyTx(ctx, tx, s.stock); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM bills WHERE id = $1`, id); err != nil {
		return classifyWriteError(err, "delete bill")
	}
	return commit(ctx, tx, "bill delete")
}

func (s *billService) MarkBillsPaid(ctx context.Context, ids []int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx, `UPDATE bills SET is_paid = true WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to mark bills paid: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ── Loading ───────────────────────────────────────────────────────────────────

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const billSelect = `
	SELECT b.id, b.customer_id, c.name, b.bill_date, b.is_paid, b.other_expenses, b.has_gst
	FROM bills b
	LEFT JOIN customers c ON c.id = b.customer_id`

func scanBill(row interface{ Scan(...any) error }) (*Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.CustomerID, &b.CustomerName, &b.BillDate, &b.IsPaid, &b.OtherExpenses, &b.HasGST)
	return &b, err
}

func loadBill(ctx context.Context, q pgxQuerier, id int) (*Bill, error) {
	b, err := scanBill(q.QueryRow(ctx, billSelect+` WHERE b.id = $1`, id))
	if err != nil {
		return nil, notFoundf(err, "bill %d", id)
	}
	if b.Items, err = queryBillItems(ctx, q, `bi.bill_id = $1`, id); err != nil {
		return nil, err
	}
	return b, nil
}

func queryBillItems(ctx context.Context, q pgxQuerier, where string, arg any) ([]BillItem, error) {
	rows, err := q.Query(ctx, `
		SELECT bi.id, bi.bill_id, bi.product_id, fp.name, bi.quantity_kg, bi.price_per_unit, bi.has_stock_deducted
		FROM bill_items bi
		JOIN finished_products fp ON fp.id = bi.product_id
		WHERE `+where+`
		ORDER BY bi.bill_id, bi.id
	`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query bill items: %w", err)
	}
	defer rows.Close()

	items := []BillItem{}
	for rows.Next() {
		var it BillItem
		if err := rows.Scan(&it.ID, &it.BillID, &it.ProductID, &it.ProductName, &it.QuantityKg, &it.PricePerUnit, &it.HasStockDeducted); err != nil {
			return nil, fmt.Errorf("failed to scan bill item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
