package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// ReportKind selects one of the back-office reports.
type ReportKind string

const (
	ReportDailySales        ReportKind = "daily_sales"
	ReportWeeklySales       ReportKind = "weekly_sales"
	ReportMonthlySales      ReportKind = "monthly_sales"
	ReportSalesProfit       ReportKind = "sales_profit"
	ReportProductionSummary ReportKind = "production_summary"
	ReportExpenseSummary    ReportKind = "expense_summary"
	ReportInventorySummary  ReportKind = "inventory_summary"
)

// ReportKinds lists every supported report in display order.
var ReportKinds = []ReportKind{
	ReportDailySales, ReportWeeklySales, ReportMonthlySales,
	ReportSalesProfit, ReportProductionSummary, ReportExpenseSummary, ReportInventorySummary,
}

// ParseReportKind maps a report_type value to a ReportKind. Empty means daily sales.
func ParseReportKind(s string) (ReportKind, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ReportDailySales, nil
	}
	for _, k := range ReportKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReport, s)
}

// Granularity is the bucket size of a sales report.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week" // ISO weeks, starting Monday
	GranularityMonth Granularity = "month"
)

// SalesBucket is total billed revenue (grand totals) for one period.
// Period is the first day of the bucket.
type SalesBucket struct {
	Period     time.Time       `json:"period"`
	TotalSales decimal.Decimal `json:"total_sales"`
	BillCount  int             `json:"bill_count"`
}

// ProfitLoss is sales minus expenses and raw-material purchases over a window.
// Purchase cost is Σ quantity × price; purchase other_expenses are not included.
type ProfitLoss struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	TotalCosts     decimal.Decimal `json:"total_costs"` // expenses + purchases
	ProfitLoss     decimal.Decimal `json:"profit_loss"`
}

// ProductionTotal is the quantity produced of one finished product.
type ProductionTotal struct {
	FinishedProduct string          `json:"finished_product"`
	TotalQuantityKg decimal.Decimal `json:"total_quantity_kg"`
}

// ExpenseTotal is the amount spent under one description.
type ExpenseTotal struct {
	Description string          `json:"description"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// StockLine is one item's current balance.
type StockLine struct {
	Name           string          `json:"name"`
	CurrentStockKg decimal.Decimal `json:"current_stock_kg"`
}

// InventorySnapshot is the current stock of every raw material and finished product.
type InventorySnapshot struct {
	RawMaterials     []StockLine `json:"raw_materials"`
	FinishedProducts []StockLine `json:"finished_products"`
}

// Report is the result of one report run. Exactly one payload field is set.
type Report struct {
	Kind       ReportKind         `json:"report_type"`
	StartDate  string             `json:"start_date"`
	EndDate    string             `json:"end_date"`
	Sales      []SalesBucket      `json:"sales,omitempty"`
	ProfitLoss *ProfitLoss        `json:"profit_loss,omitempty"`
	Production []ProductionTotal  `json:"production,omitempty"`
	Expenses   []ExpenseTotal     `json:"expenses,omitempty"`
	Inventory  *InventorySnapshot `json:"inventory,omitempty"`
}

// MarshalJSON writes the payload key that matches Kind and only that key. An
// empty list serializes as [] so clients can rely on the key being present.
func (r Report) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind       ReportKind         `json:"report_type"`
		StartDate  string             `json:"start_date"`
		EndDate    string             `json:"end_date"`
		Sales      *[]SalesBucket     `json:"sales,omitempty"`
		ProfitLoss *ProfitLoss        `json:"profit_loss,omitempty"`
		Production *[]ProductionTotal `json:"production,omitempty"`
		Expenses   *[]ExpenseTotal    `json:"expenses,omitempty"`
		Inventory  *InventorySnapshot `json:"inventory,omitempty"`
	}{Kind: r.Kind, StartDate: r.StartDate, EndDate: r.EndDate}

	switch r.Kind {
	case ReportDailySales, ReportWeeklySales, ReportMonthlySales:
		sales := r.Sales
		if sales == nil {
			sales = []SalesBucket{}
		}
		out.Sales = &sales
	case ReportSalesProfit:
		out.ProfitLoss = r.ProfitLoss
		if out.ProfitLoss == nil {
			out.ProfitLoss = &ProfitLoss{}
		}
	case ReportProductionSummary:
		prod := r.Production
		if prod == nil {
			prod = []ProductionTotal{}
		}
		out.Production = &prod
	case ReportExpenseSummary:
		exp := r.Expenses
		if exp == nil {
			exp = []ExpenseTotal{}
		}
		out.Expenses = &exp
	case ReportInventorySummary:
		inv := InventorySnapshot{RawMaterials: []StockLine{}, FinishedProducts: []StockLine{}}
		if r.Inventory != nil {
			if r.Inventory.RawMaterials != nil {
				inv.RawMaterials = r.Inventory.RawMaterials
			}
			if r.Inventory.FinishedProducts != nil {
				inv.FinishedProducts = r.Inventory.FinishedProducts
			}
		}
		out.Inventory = &inv
	}
	return json.Marshal(out)
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only aggregate queries. Every windowed query
// is inclusive of both calendar days, evaluated in the database session time zone.
type ReportingService interface {
	SalesReport(ctx context.Context, g Granularity, window DateRange) ([]SalesBucket, error)
	SalesProfit(ctx context.Context, window DateRange) (*ProfitLoss, error)
	ProductionSummary(ctx context.Context, window DateRange) ([]ProductionTotal, error)
	ExpenseSummary(ctx context.Context, window DateRange) ([]ExpenseTotal, error)
	InventorySummary(ctx context.Context) (*InventorySnapshot, error)
	// Run dispatches to the query for kind.
	Run(ctx context.Context, kind ReportKind, window DateRange) (*Report, error)
}

type reportingService struct {
	pool *pgxpool.Pool
}

func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

// billTotalsCTE yields one row per bill in [$1, $2] with its subtotal.
// GST is applied by the outer query with the same rounding as CalculateBill.
const billTotalsCTE = `
	WITH bill_totals AS (
		SELECT b.id, b.bill_date, b.has_gst, b.other_expenses,
		       ROUND(COALESCE(SUM(bi.quantity_kg * bi.price_per_unit), 0), 2) AS subtotal
		FROM bills b
		LEFT JOIN bill_items bi ON bi.bill_id = b.id
		WHERE b.bill_date::date BETWEEN $1::date AND $2::date
		GROUP BY b.id
	)`

// grandTotalExpr mirrors CalculateBill; $3 is GSTRate.
const grandTotalExpr = `subtotal + CASE WHEN has_gst THEN ROUND(subtotal * $3::numeric, 2) ELSE 0 END + other_expenses`

func (s *reportingService) SalesReport(ctx context.Context, g Granularity, window DateRange) ([]SalesBucket, error) {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth:
	default:
		return nil, fmt.Errorf("%w: granularity %q", ErrInvalidInput, g)
	}

	rows, err := s.pool.Query(ctx, billTotalsCTE+`
		SELECT date_trunc($4::text, bill_date)::date AS period,
		       COALESCE(SUM(`+grandTotalExpr+`), 0),
		       COUNT(*)
		FROM bill_totals
		GROUP BY 1
		ORDER BY 1
	`, window.StartDate(), window.EndDate(), GSTRate, string(g))
	if err != nil {
		return nil, fmt.Errorf("failed to query sales report: %w", err)
	}
	defer rows.Close()

	buckets := []SalesBucket{}
	for rows.Next() {
		var b SalesBucket
		if err := rows.Scan(&b.Period, &b.TotalSales, &b.BillCount); err != nil {
			return nil, fmt.Errorf("failed to scan sales bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func (s *reportingService) SalesProfit(ctx context.Context, window DateRange) (*ProfitLoss, error) {
	var pl ProfitLoss
	err := s.pool.QueryRow(ctx, billTotalsCTE+`
		SELECT
		    (SELECT COALESCE(SUM(`+grandTotalExpr+`), 0) FROM bill_totals),
		    (SELECT COALESCE(SUM(amount), 0) FROM expenses
		      WHERE date::date BETWEEN $1::date AND $2::date),
		    (SELECT COALESCE(SUM(quantity_kg * price_per_unit), 0) FROM wheat_purchases
		      WHERE purchase_date::date BETWEEN $1::date AND $2::date)
	`, window.StartDate(), window.EndDate(), GSTRate).Scan(&pl.TotalSales, &pl.TotalExpenses, &pl.TotalPurchases)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales profit: %w", err)
	}
	pl.TotalCosts = pl.TotalExpenses.Add(pl.TotalPurchases)
	pl.ProfitLoss = pl.TotalSales.Sub(pl.TotalCosts)
	return &pl, nil
}

func (s *reportingService) ProductionSummary(ctx context.Context, window DateRange) ([]ProductionTotal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT fp.name, SUM(pr.quantity_kg)
		FROM productions pr
		JOIN finished_products fp ON fp.id = pr.finished_product_id
		WHERE pr.production_date::date BETWEEN $1::date AND $2::date
		GROUP BY fp.name
		ORDER BY fp.name
	`, window.StartDate(), window.EndDate())
	if err != nil {
		return nil, fmt.Errorf("failed to query production summary: %w", err)
	}
	defer rows.Close()

	out := []ProductionTotal{}
	for rows.Next() {
		var t ProductionTotal
		if err := rows.Scan(&t.FinishedProduct, &t.TotalQuantityKg); err != nil {
			return nil, fmt.Errorf("failed to scan production total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *reportingService) ExpenseSummary(ctx context.Context, window DateRange) ([]ExpenseTotal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT description, SUM(amount)
		FROM expenses
		WHERE date::date BETWEEN $1::date AND $2::date
		GROUP BY description
		ORDER BY description
	`, window.StartDate(), window.EndDate())
	if err != nil {
		return nil, fmt.Errorf("failed to query expense summary: %w", err)
	}
	defer rows.Close()

	out := []ExpenseTotal{}
	for rows.Next() {
		var t ExpenseTotal
		if err := rows.Scan(&t.Description, &t.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan expense total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *reportingService) InventorySummary(ctx context.Context) (*InventorySnapshot, error) {
	raw, err := s.stockLines(ctx, "raw_materials")
	if err != nil {
		return nil, err
	}
	finished, err := s.stockLines(ctx, "finished_products")
	if err != nil {
		return nil, err
	}
	return &InventorySnapshot{RawMaterials: raw, FinishedProducts: finished}, nil
}

func (s *reportingService) stockLines(ctx context.Context, table string) ([]StockLine, error) {
	rows, err := s.pool.Query(ctx, "SELECT name, current_stock_kg FROM "+table+" ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query %s stock: %w", table, err)
	}
	defer rows.Close()

	out := []StockLine{}
	for rows.Next() {
		var l StockLine
		if err := rows.Scan(&l.Name, &l.CurrentStockKg); err != nil {
			return nil, fmt.Errorf("failed to scan %s stock: %w", table, err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *reportingService) Run(ctx context.Context, kind ReportKind, window DateRange) (*Report, error) {
	r := &Report{Kind: kind, StartDate: window.StartDate(), EndDate: window.EndDate()}
	var err error
	switch kind {
	case ReportDailySales:
		r.Sales, err = s.SalesReport(ctx, GranularityDay, window)
	case ReportWeeklySales:
		r.Sales, err = s.SalesReport(ctx, GranularityWeek, window)
	case ReportMonthlySales:
		r.Sales, err = s.SalesReport(ctx, GranularityMonth, window)
	case ReportSalesProfit:
		r.ProfitLoss, err = s.SalesProfit(ctx, window)
	case ReportProductionSummary:
		r.Production, err = s.ProductionSummary(ctx, window)
	case ReportExpenseSummary:
		r.Expenses, err = s.ExpenseSummary(ctx, window)
	case ReportInventorySummary:
		r.Inventory, err = s.InventorySummary(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, kind)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}
