package core

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// GSTRate is the flat goods-and-services tax applied to a bill subtotal when HasGST is set.
var GSTRate = decimal.RequireFromString("0.18")

// BillTotals is the computed money summary of a bill.
type BillTotals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	GSTAmount     decimal.Decimal `json:"gst_amount"`
	OtherExpenses decimal.Decimal `json:"other_expenses"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// MarshalJSON writes every amount with exactly two decimals, e.g. "767.00".
func (t BillTotals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Subtotal      string `json:"subtotal"`
		GSTAmount     string `json:"gst_amount"`
		OtherExpenses string `json:"other_expenses"`
		GrandTotal    string `json:"grand_total"`
	}{
		Subtotal:      t.Subtotal.StringFixed(2),
		GSTAmount:     t.GSTAmount.StringFixed(2),
		OtherExpenses: t.OtherExpenses.StringFixed(2),
		GrandTotal:    t.GrandTotal.StringFixed(2),
	})
}

// LineTotal returns qty × price rounded half away from zero to 2 places.
func LineTotal(qty, price decimal.Decimal) decimal.Decimal {
	return qty.Mul(price).Round(2)
}

// CalculateBill computes bill totals:
//
//	subtotal    = round2(Σ qty × price)
//	gst         = round2(subtotal × GSTRate) if hasGST, else 0
//	grand_total = subtotal + gst + otherExpenses
//
// Reporting queries apply the same formula in SQL with ROUND(numeric, 2),
// which also rounds half away from zero.
func CalculateBill(items []BillItem, hasGST bool, otherExpenses decimal.Decimal) BillTotals {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.QuantityKg.Mul(item.PricePerUnit))
	}
	subtotal := sum.Round(2)

	gst := decimal.Zero
	if hasGST {
		gst = subtotal.Mul(GSTRate).Round(2)
	}

	return BillTotals{
		Subtotal:      subtotal,
		GSTAmount:     gst,
		OtherExpenses: otherExpenses,
		GrandTotal:    subtotal.Add(gst).Add(otherExpenses),
	}
}
