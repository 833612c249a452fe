package core

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Bill is a sales bill header. Totals are never stored; see Totals.
// CustomerID is nil when no customer was given or the customer was deleted.
type Bill struct {
	ID            int             `json:"id"`
	CustomerID    *int            `json:"customer_id,omitempty"`
	CustomerName  *string         `json:"customer_name,omitempty"` // joined from customers
	BillDate      time.Time       `json:"bill_date"`
	IsPaid        bool            `json:"is_paid"`
	OtherExpenses decimal.Decimal `json:"other_expenses"`
	HasGST        bool            `json:"has_gst"`
	Items         []BillItem      `json:"items"`
}

// Totals computes the bill's subtotal, GST and grand total from its items.
func (b *Bill) Totals() BillTotals {
	return CalculateBill(b.Items, b.HasGST, b.OtherExpenses)
}

// BillItem is one product line on a bill. PricePerUnit is captured when the
// line is created and does not follow later product price changes.
type BillItem struct {
	ID               int             `json:"id"`
	BillID           int             `json:"bill_id"`
	ProductID        int             `json:"product_id"`
	ProductName      string          `json:"product_name"` // joined from finished_products
	QuantityKg       decimal.Decimal `json:"quantity_kg"`
	PricePerUnit     decimal.Decimal `json:"price_per_unit"`
	HasStockDeducted bool            `json:"has_stock_deducted"`
}

// TotalPrice is the line amount, rounded to paise.
func (i BillItem) TotalPrice() decimal.Decimal {
	return LineTotal(i.QuantityKg, i.PricePerUnit)
}

// BillInput saves a bill together with its line items in one transaction.
// ID nil creates a new bill. BillDate is honoured only on create; zero means now.
// HasGST nil means true on create and "unchanged" on update.
type BillInput struct {
	ID            *int            `json:"id,omitempty"`
	CustomerID    *int            `json:"customer_id,omitempty"`
	IsPaid        bool            `json:"is_paid"`
	OtherExpenses decimal.Decimal `json:"other_expenses"`
	HasGST        *bool           `json:"has_gst,omitempty"`
	BillDate      time.Time       `json:"bill_date"`
	Items         []BillItemInput `json:"items"`
}

// BillItemInput adds (ID nil), changes (ID set) or removes (ID set, Delete) a line.
// A zero PricePerUnit takes the product's current selling price on a new line,
// and keeps the frozen price on an existing line of the same product.
// Existing lines not mentioned in BillInput.Items are left untouched.
type BillItemInput struct {
	ID           *int            `json:"id,omitempty"`
	ProductID    int             `json:"product_id"`
	QuantityKg   decimal.Decimal `json:"quantity_kg"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Delete       bool            `json:"delete,omitempty"`
}

// BillDetail is the printable view of a bill.
type BillDetail struct {
	Bill   Bill       `json:"bill"`
	Lines  []BillLine `json:"lines"`
	Totals BillTotals `json:"totals"`
}

// BillLine is a bill item with its computed line total.
type BillLine struct {
	ProductName  string          `json:"product_name"`
	QuantityKg   decimal.Decimal `json:"quantity_kg"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

func (l BillLine) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ProductName  string `json:"product_name"`
		QuantityKg   string `json:"quantity_kg"`
		PricePerUnit string `json:"price_per_unit"`
		TotalPrice   string `json:"total_price"`
	}{
		ProductName:  l.ProductName,
		QuantityKg:   l.QuantityKg.StringFixed(2),
		PricePerUnit: l.PricePerUnit.StringFixed(2),
		TotalPrice:   l.TotalPrice.StringFixed(2),
	})
}

// NewBillDetail builds the printable view of b.
func NewBillDetail(b Bill) *BillDetail {
	lines := make([]BillLine, len(b.Items))
	for i, item := range b.Items {
		lines[i] = BillLine{
			ProductName:  item.ProductName,
			QuantityKg:   item.QuantityKg,
			PricePerUnit: item.PricePerUnit,
			TotalPrice:   item.TotalPrice(),
		}
	}
	return &BillDetail{Bill: b, Lines: lines, Totals: b.Totals()}
}
