package app

import "agro-backoffice/internal/core"

// RawMaterialListResult is returned by ListRawMaterials.
type RawMaterialListResult struct {
	RawMaterials []core.RawMaterial `json:"raw_materials"`
}

// FinishedProductListResult is returned by ListFinishedProducts.
type FinishedProductListResult struct {
	FinishedProducts []core.FinishedProduct `json:"finished_products"`
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []core.Customer `json:"customers"`
}

// Window echoes the resolved date window of a list or report.
type Window struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Defaulted bool   `json:"defaulted"`
}

func windowOf(r core.DateRange) Window {
	return Window{StartDate: r.StartDate(), EndDate: r.EndDate(), Defaulted: r.Defaulted}
}

// PurchaseListResult is returned by ListPurchases.
type PurchaseListResult struct {
	Window    Window               `json:"window"`
	Purchases []core.WheatPurchase `json:"purchases"`
}

// ProductionListResult is returned by ListProductions.
type ProductionListResult struct {
	Window      Window            `json:"window"`
	Productions []core.Production `json:"productions"`
}

// ExpenseListResult is returned by ListExpenses.
type ExpenseListResult struct {
	Window   Window         `json:"window"`
	Expenses []core.Expense `json:"expenses"`
}

// BillSummary is one row of a bill listing.
type BillSummary struct {
	core.Bill
	Totals core.BillTotals `json:"totals"`
}

// BillListResult is returned by ListBills.
type BillListResult struct {
	Window Window        `json:"window"`
	Bills  []BillSummary `json:"bills"`
}

// BillResult is returned by SaveBill and GetBill.
type BillResult struct {
	Detail *core.BillDetail `json:"detail"`
}

// MarkPaidResult is returned by MarkBillsPaid.
type MarkPaidResult struct {
	Updated int64 `json:"updated"`
}

// ReportResult is returned by RunReport.
type ReportResult struct {
	Report    *core.Report `json:"report"`
	Defaulted bool         `json:"defaulted"`
}
