package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMode is how a raw-material purchase was settled.
type PaymentMode string

const (
	PaymentCash   PaymentMode = "Cash"
	PaymentCredit PaymentMode = "Credit"
)

// Valid reports whether m is one of the supported payment modes.
func (m PaymentMode) Valid() bool {
	return m == PaymentCash || m == PaymentCredit
}

// WheatPurchase records raw material bought from a supplier.
// PurchaseDate is set once at creation and never updated.
type WheatPurchase struct {
	ID              int             `json:"id"`
	RawMaterialID   int             `json:"raw_material_id"`
	RawMaterialName string          `json:"raw_material_name"` // joined from raw_materials
	QuantityKg      decimal.Decimal `json:"quantity_kg"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit"`
	OtherExpenses   decimal.Decimal `json:"other_expenses"`
	PaymentMode     PaymentMode     `json:"payment_mode"`
	IsPaid          bool            `json:"is_paid"`
	PurchaseDate    time.Time       `json:"purchase_date"`
}

// TotalPrice is quantity × price per kg. It is derived, never stored.
func (p WheatPurchase) TotalPrice() decimal.Decimal {
	return p.QuantityKg.Mul(p.PricePerUnit).Round(2)
}

// PurchaseInput is used to record or edit a purchase.
// PurchaseDate is honoured only on create; zero means now.
type PurchaseInput struct {
	RawMaterialID int             `json:"raw_material_id"`
	QuantityKg    decimal.Decimal `json:"quantity_kg"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	OtherExpenses decimal.Decimal `json:"other_expenses"`
	PaymentMode   PaymentMode     `json:"payment_mode"`
	IsPaid        bool            `json:"is_paid"`
	PurchaseDate  time.Time       `json:"purchase_date"`
}

// Production converts raw material into a finished product.
// RawMaterialUsedKg is the raw-material deduction actually applied when the
// entry was saved; edits and deletes reverse exactly this amount.
type Production struct {
	ID                  int             `json:"id"`
	RawMaterialID       int             `json:"raw_material_id"`
	RawMaterialName     string          `json:"raw_material_name"`     // joined from raw_materials
	FinishedProductID   int             `json:"finished_product_id"`
	FinishedProductName string          `json:"finished_product_name"` // joined from finished_products
	QuantityKg          decimal.Decimal `json:"quantity_kg"`
	RawMaterialUsedKg   decimal.Decimal `json:"raw_material_used_kg"`
	ProductionDate      time.Time       `json:"production_date"`
}

// ProductionInput is used to record or edit a production entry. Zero ProductionDate means now on
// create and "unchanged" on update.
type ProductionInput struct {
	RawMaterialID     int             `json:"raw_material_id"`
	FinishedProductID int             `json:"finished_product_id"`
	QuantityKg        decimal.Decimal `json:"quantity_kg"`
	ProductionDate    time.Time       `json:"production_date"`
}
