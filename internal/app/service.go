package app

import (
	"context"

	"agro-backoffice/internal/core"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// ── Master data ──────────────────────────────────────────────────────────

	ListRawMaterials(ctx context.Context) (*RawMaterialListResult, error)
	GetRawMaterial(ctx context.Context, id int) (*core.RawMaterial, error)
	CreateRawMaterial(ctx context.Context, name string) (*core.RawMaterial, error)
	RenameRawMaterial(ctx context.Context, id int, name string) (*core.RawMaterial, error)
	DeleteRawMaterial(ctx context.Context, id int) error

	ListFinishedProducts(ctx context.Context) (*FinishedProductListResult, error)
	GetFinishedProduct(ctx context.Context, id int) (*core.FinishedProduct, error)
	CreateFinishedProduct(ctx context.Context, in core.FinishedProductInput) (*core.FinishedProduct, error)
	UpdateFinishedProduct(ctx context.Context, id int, in core.FinishedProductInput) (*core.FinishedProduct, error)
	DeleteFinishedProduct(ctx context.Context, id int) error

	ListCustomers(ctx context.Context) (*CustomerListResult, error)
	GetCustomer(ctx context.Context, id int) (*core.Customer, error)
	CreateCustomer(ctx context.Context, in core.CustomerInput) (*core.Customer, error)
	UpdateCustomer(ctx context.Context, id int, in core.CustomerInput) (*core.Customer, error)
	DeleteCustomer(ctx context.Context, id int) error

	// ── Stock-affecting entries ──────────────────────────────────────────────

	// ListPurchases returns purchases within the requested window (default: trailing window).
	ListPurchases(ctx context.Context, req WindowRequest) (*PurchaseListResult, error)
	GetPurchase(ctx context.Context, id int) (*core.WheatPurchase, error)
	CreatePurchase(ctx context.Context, in core.PurchaseInput) (*core.WheatPurchase, error)
	UpdatePurchase(ctx context.Context, id int, in core.PurchaseInput) (*core.WheatPurchase, error)
	DeletePurchase(ctx context.Context, id int) error

	ListProductions(ctx context.Context, req WindowRequest) (*ProductionListResult, error)
	GetProduction(ctx context.Context, id int) (*core.Production, error)
	RecordProduction(ctx context.Context, in core.ProductionInput) (*core.Production, error)
	UpdateProduction(ctx context.Context, id int, in core.ProductionInput) (*core.Production, error)
	DeleteProduction(ctx context.Context, id int) error

	ListExpenses(ctx context.Context, req WindowRequest) (*ExpenseListResult, error)
	GetExpense(ctx context.Context, id int) (*core.Expense, error)
	CreateExpense(ctx context.Context, in core.ExpenseInput) (*core.Expense, error)
	UpdateExpense(ctx context.Context, id int, in core.ExpenseInput) (*core.Expense, error)
	DeleteExpense(ctx context.Context, id int) error

	// ── Bills ────────────────────────────────────────────────────────────────

	ListBills(ctx context.Context, req WindowRequest) (*BillListResult, error)
	// SaveBill creates or updates a bill with its items and returns the printable view.
	SaveBill(ctx context.Context, in core.BillInput) (*BillResult, error)
	// GetBill returns the printable view of a bill, or core.ErrNotFound.
	GetBill(ctx context.Context, id int) (*BillResult, error)
	DeleteBill(ctx context.Context, id int) error
	// MarkBillsPaid flags the listed bills as paid.
	MarkBillsPaid(ctx context.Context, req MarkPaidRequest) (*MarkPaidResult, error)

	// ── Reports ──────────────────────────────────────────────────────────────

	// RunReport resolves the report type and window, then runs the report.
	// A missing report type means daily sales; an unknown one is core.ErrUnknownReport.
	// Missing or unparseable dates fall back to the trailing default window.
	RunReport(ctx context.Context, req ReportRequest) (*ReportResult, error)
}
