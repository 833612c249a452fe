package core

import "strconv"

// Table flattens a report into a header row and data rows for CSV export
// and terminal output. Amounts use two decimal places.
func (r *Report) Table() (header []string, rows [][]string) {
	switch {
	case r.ProfitLoss != nil:
		pl := r.ProfitLoss
		return []string{"Metric", "Amount"}, [][]string{
			{"Total Sales", pl.TotalSales.StringFixed(2)},
			{"Total Expenses", pl.TotalExpenses.StringFixed(2)},
			{"Total Purchases", pl.TotalPurchases.StringFixed(2)},
			{"Total Costs", pl.TotalCosts.StringFixed(2)},
			{"Profit/Loss", pl.ProfitLoss.StringFixed(2)},
		}

	case r.Inventory != nil:
		header = []string{"Type", "Name", "Current Stock (kg)"}
		for _, l := range r.Inventory.RawMaterials {
			rows = append(rows, []string{"Raw Material", l.Name, l.CurrentStockKg.StringFixed(2)})
		}
		for _, l := range r.Inventory.FinishedProducts {
			rows = append(rows, []string{"Finished Product", l.Name, l.CurrentStockKg.StringFixed(2)})
		}
		return header, rows

	case r.Kind == ReportProductionSummary:
		header = []string{"Finished Product", "Total Quantity (kg)"}
		for _, t := range r.Production {
			rows = append(rows, []string{t.FinishedProduct, t.TotalQuantityKg.StringFixed(2)})
		}
		return header, rows

	case r.Kind == ReportExpenseSummary:
		header = []string{"Description", "Total Amount"}
		for _, t := range r.Expenses {
			rows = append(rows, []string{t.Description, t.TotalAmount.StringFixed(2)})
		}
		return header, rows

	default:
		header = []string{"Period", "Total Sales", "Bills"}
		for _, b := range r.Sales {
			rows = append(rows, []string{b.Period.Format(DateLayout), b.TotalSales.StringFixed(2), strconv.Itoa(b.BillCount)})
		}
		return header, rows
	}
}
