package app

import (
	"context"
	"fmt"
	"time"

	"agro-backoffice/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Services bundles the domain services the application layer orchestrates.
type Services struct {
	Catalog   core.CatalogService
	Customers core.CustomerService
	Inventory core.InventoryService
	Bills     core.BillService
	Expenses  core.ExpenseService
	Reports   core.ReportingService
}

// NewServices wires every domain service against one pool and stock engine.
func NewServices(pool *pgxpool.Pool, stock *core.StockEngine) Services {
	return Services{
		Catalog:   core.NewCatalogService(pool),
		Customers: core.NewCustomerService(pool),
		Inventory: core.NewInventoryService(pool, stock),
		Bills:     core.NewBillService(pool, stock),
		Expenses:  core.NewExpenseService(pool),
		Reports:   core.NewReportingService(pool),
	}
}

// WindowPolicy decides which calendar day is "today" and how far back the
// default window reaches when a request gives no usable dates.
type WindowPolicy struct {
	Location    *time.Location
	DefaultDays int
	Now         func() time.Time // nil means time.Now
}

func (p WindowPolicy) resolve(start, end string) core.DateRange {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return core.ParseDateRange(start, end, now().In(loc), p.DefaultDays)
}

type appService struct {
	pool   *pgxpool.Pool
	svc    Services
	window WindowPolicy
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(pool *pgxpool.Pool, svc Services, window WindowPolicy) ApplicationService {
	return &appService{pool: pool, svc: svc, window: window}
}

func (s *appService) Ping(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("database pool not configured")
	}
	return s.pool.Ping(ctx)
}

// ── Master data ──────────────────────────────────────────────────────────────

func (s *appService) ListRawMaterials(ctx context.Context) (*RawMaterialListResult, error) {
	items, err := s.svc.Catalog.ListRawMaterials(ctx)
	if err != nil {
		return nil, err
	}
	return &RawMaterialListResult{RawMaterials: nonNil(items)}, nil
}

func (s *appService) GetRawMaterial(ctx context.Context, id int) (*core.RawMaterial, error) {
	return s.svc.Catalog.GetRawMaterial(ctx, id)
}

func (s *appService) CreateRawMaterial(ctx context.Context, name string) (*core.RawMaterial, error) {
	return s.svc.Catalog.CreateRawMaterial(ctx, name)
}

func (s *appService) RenameRawMaterial(ctx context.Context, id int, name string) (*core.RawMaterial, error) {
	return s.svc.Catalog.RenameRawMaterial(ctx, id, name)
}

func (s *appService) DeleteRawMaterial(ctx context.Context, id int) error {
	return s.svc.Catalog.DeleteRawMaterial(ctx, id)
}

func (s *appService) ListFinishedProducts(ctx context.Context) (*FinishedProductListResult, error) {
	items, err := s.svc.Catalog.ListFinishedProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &FinishedProductListResult{FinishedProducts: nonNil(items)}, nil
}

func (s *appService) GetFinishedProduct(ctx context.Context, id int) (*core.FinishedProduct, error) {
	return s.svc.Catalog.GetFinishedProduct(ctx, id)
}

func (s *appService) CreateFinishedProduct(ctx context.Context, in core.FinishedProductInput) (*core.FinishedProduct, error) {
	return s.svc.Catalog.CreateFinishedProduct(ctx, in)
}

func (s *appService) UpdateFinishedProduct(ctx context.Context, id int, in core.FinishedProductInput) (*core.FinishedProduct, error) {
	return s.svc.Catalog.UpdateFinishedProduct(ctx, id, in)
}

func (s *appService) DeleteFinishedProduct(ctx context.Context, id int) error {
	return s.svc.Catalog.DeleteFinishedProduct(ctx, id)
}

func (s *appService) ListCustomers(ctx context.Context) (*CustomerListResult, error) {
	items, err := s.svc.Customers.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: nonNil(items)}, nil
}

func (s *appService) GetCustomer(ctx context.Context, id int) (*core.Customer, error) {
	return s.svc.Customers.GetCustomer(ctx, id)
}

func (s *appService) CreateCustomer(ctx context.Context, in core.CustomerInput) (*core.Customer, error) {
	return s.svc.Customers.CreateCustomer(ctx, in)
}

func (s *appService) UpdateCustomer(ctx context.Context, id int, in core.CustomerInput) (*core.Customer, error) {
	return s.svc.Customers.UpdateCustomer(ctx, id, in)
}

func (s *appService) DeleteCustomer(ctx context.Context, id int) error {
	return s.svc.Customers.DeleteCustomer(ctx, id)
}

// ── Stock-affecting entries ──────────────────────────────────────────────────

func (s *appService) ListPurchases(ctx context.Context, req WindowRequest) (*PurchaseListResult, error) {
	w := s.window.resolve(req.StartDate, req.EndDate)
	items, err := s.svc.Inventory.ListPurchases(ctx, w)
	if err != nil {
		return nil, err
	}
	return &PurchaseListResult{Window: windowOf(w), Purchases: nonNil(items)}, nil
}

func (s *appService) GetPurchase(ctx context.Context, id int) (*core.WheatPurchase, error) {
	return s.svc.Inventory.GetPurchase(ctx, id)
}

func (s *appService) CreatePurchase(ctx context.Context, in core.PurchaseInput) (*core.WheatPurchase, error) {
	return s.svc.Inventory.CreatePurchase(ctx, in)
}

func (s *appService) UpdatePurchase(ctx context.Context, id int, in core.PurchaseInput) (*core.WheatPurchase, error) {
	return s.svc.Inventory.UpdatePurchase(ctx, id, in)
}

func (s *appService) DeletePurchase(ctx context.Context, id int) error {
	return s.svc.Inventory.DeletePurchase(ctx, id)
}

func (s *appService) ListProductions(ctx context.Context, req WindowRequest) (*ProductionListResult, error) {
	w := s.window.resolve(req.StartDate, req.EndDate)
	items, err := s.svc.Inventory.ListProductions(ctx, w)
	if err != nil {
		return nil, err
	}
	return &ProductionListResult{Window: windowOf(w), Productions: nonNil(items)}, nil
}

func (s *appService) GetProduction(ctx context.Context, id int) (*core.Production, error) {
	return s.svc.Inventory.GetProduction(ctx, id)
}

func (s *appService) RecordProduction(ctx context.Context, in core.ProductionInput) (*core.Production, error) {
	return s.svc.Inventory.RecordProduction(ctx, in)
}

func (s *appService) UpdateProduction(ctx context.Context, id int, in core.ProductionInput) (*core.Production, error) {
	return s.svc.Inventory.UpdateProduction(ctx, id, in)
}

func (s *appService) DeleteProduction(ctx context.Context, id int) error {
	return s.svc.Inventory.DeleteProduction(ctx, id)
}

func (s *appService) ListExpenses(ctx context.Context, req WindowRequest) (*ExpenseListResult, error) {
	w := s.window.resolve(req.StartDate, req.EndDate)
	items, err := s.svc.Expenses.ListExpenses(ctx, w)
	if err != nil {
		return nil, err
	}
	return &ExpenseListResult{Window: windowOf(w), Expenses: nonNil(items)}, nil
}

func (s *appService) GetExpense(ctx context.Context, id int) (*core.Expense, error) {
	return s.svc.Expenses.GetExpense(ctx, id)
}

func (s *appService) CreateExpense(ctx context.Context, in core.ExpenseInput) (*core.Expense, error) {
	return s.svc.Expenses.CreateExpense(ctx, in)
}

func (s *appService) UpdateExpense(ctx context.Context, id int, in core.ExpenseInput) (*core.Expense, error) {
	return s.svc.Expenses.UpdateExpense(ctx, id, in)
}

func (s *appService) DeleteExpense(ctx context.Context, id int) error {
	return s.svc.Expenses.DeleteExpense(ctx, id)
}

// ── Bills ────────────────────────────────────────────────────────────────────

func (s *appService) ListBills(ctx context.Context, req WindowRequest) (*BillListResult, error) {
	w := s.window.resolve(req.StartDate, req.EndDate)
	bills, err := s.svc.Bills.ListBills(ctx, w)
	if err != nil {
		return nil, err
	}
	out := make([]BillSummary, len(bills))
	for i := range bills {
		out[i] = BillSummary{Bill: bills[i], Totals: bills[i].Totals()}
	}
	return &BillListResult{Window: windowOf(w), Bills: out}, nil
}

func (s *appService) SaveBill(ctx context.Context, in core.BillInput) (*BillResult, error) {
	b, err := s.svc.Bills.SaveBill(ctx, in)
	if err != nil {
		return nil, err
	}
	return &BillResult{Detail: core.NewBillDetail(*b)}, nil
}

func (s *appService) GetBill(ctx context.Context, id int) (*BillResult, error) {
	b, err := s.svc.Bills.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BillResult{Detail: core.NewBillDetail(*b)}, nil
}

func (s *appService) DeleteBill(ctx context.Context, id int) error {
	return s.svc.Bills.DeleteBill(ctx, id)
}

func (s *appService) MarkBillsPaid(ctx context.Context, req MarkPaidRequest) (*MarkPaidResult, error) {
	for _, id := range req.BillIDs {
		if id <= 0 {
			return nil, fmt.Errorf("%w: bill id %d", core.ErrInvalidInput, id)
		}
	}
	n, err := s.svc.Bills.MarkBillsPaid(ctx, req.BillIDs)
	if err != nil {
		return nil, err
	}
	return &MarkPaidResult{Updated: n}, nil
}

// ── Reports ──────────────────────────────────────────────────────────────────

func (s *appService) RunReport(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	kind, err := core.ParseReportKind(req.ReportType)
	if err != nil {
		return nil, err
	}
	w := s.window.resolve(req.StartDate, req.EndDate)
	report, err := s.svc.Reports.Run(ctx, kind, w)
	if err != nil {
		return nil, err
	}
	return &ReportResult{Report: report, Defaulted: w.Defaulted}, nil
}

// nonNil turns a nil slice into an empty one so JSON encodes [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
