package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawMaterial is a purchasable input (e.g. wheat) with a running stock balance.
// CurrentStockKg is written only by the StockEngine.
type RawMaterial struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	CurrentStockKg decimal.Decimal `json:"current_stock_kg"`
}

// FinishedProduct is a sellable output (atta, maida, suji...).
// RawMaterialRatio is kg of raw material consumed per kg produced.
type FinishedProduct struct {
	ID                int             `json:"id"`
	Name              string          `json:"name"`
	CurrentStockKg    decimal.Decimal `json:"current_stock_kg"`
	CostPerKg         decimal.Decimal `json:"cost_per_kg"`
	MRPPerKg          decimal.Decimal `json:"mrp_per_kg"`
	SellingPricePerKg decimal.Decimal `json:"selling_price_per_kg"`
	RawMaterialRatio  decimal.Decimal `json:"raw_material_ratio"`
}

// FinishedProductInput is used to create or update a finished product.
// A zero RawMaterialRatio means 1.
type FinishedProductInput struct {
	Name              string          `json:"name"`
	CostPerKg         decimal.Decimal `json:"cost_per_kg"`
	MRPPerKg          decimal.Decimal `json:"mrp_per_kg"`
	SellingPricePerKg decimal.Decimal `json:"selling_price_per_kg"`
	RawMaterialRatio  decimal.Decimal `json:"raw_material_ratio"`
}

// Customer is a billing counterparty. Address and Email are optional.
type Customer struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Address     *string `json:"address,omitempty"`
	PhoneNumber string  `json:"phone_number"`
	Email       *string `json:"email,omitempty"`
}

// CustomerInput is used to create or update a customer. Empty optional fields are stored as NULL.
type CustomerInput struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

// Expense is a miscellaneous operating cost. Date is set once at creation.
type Expense struct {
	ID          int             `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
}

// ExpenseInput is used to create or update an expense.
// Date is honoured only on create; zero means now.
type ExpenseInput struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
}
