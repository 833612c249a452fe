package core

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Column widths enforced by the schema.
const (
	maxMaterialNameLen = 100
	maxCustomerNameLen = 200
	maxPhoneLen        = 15
	maxEmailLen        = 254
	maxDescriptionLen  = 255

	// Quantities, prices and ratios are stored as NUMERIC(_,2).
	maxDecimalPlaces = 2
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func requireName(field, value string, max int) error {
	v := strings.TrimSpace(value)
	if v == "" {
		return invalidf("%s is required", field)
	}
	if utf8.RuneCountInString(v) > max {
		return invalidf("%s must be at most %d characters", field, max)
	}
	return nil
}

func requirePositive(field string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return invalidf("%s must be greater than zero, got %s", field, v.String())
	}
	return requirePrecision(field, v)
}

func requireNonNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return invalidf("%s must not be negative, got %s", field, v.String())
	}
	return requirePrecision(field, v)
}

// requirePrecision rejects values the schema would round on insert; a stock
// delta must match the stored quantity exactly for reversals to cancel out.
func requirePrecision(field string, v decimal.Decimal) error {
	if !v.Equal(v.Round(maxDecimalPlaces)) {
		return invalidf("%s must have at most %d decimal places, got %s", field, maxDecimalPlaces, v.String())
	}
	return nil
}

func requireID(field string, id int) error {
	if id <= 0 {
		return invalidf("%s is required", field)
	}
	return nil
}

// ValidateRawMaterialName checks a raw material name before insert or rename.
func ValidateRawMaterialName(name string) error {
	return requireName("name", name, maxMaterialNameLen)
}

// Validate checks the finished product fields.
func (in FinishedProductInput) Validate() error {
	if err := requireName("name", in.Name, maxMaterialNameLen); err != nil {
		return err
	}
	if err := requireNonNegative("cost_per_kg", in.CostPerKg); err != nil {
		return err
	}
	if err := requireNonNegative("mrp_per_kg", in.MRPPerKg); err != nil {
		return err
	}
	if err := requireNonNegative("selling_price_per_kg", in.SellingPricePerKg); err != nil {
		return err
	}
	if in.RawMaterialRatio.IsNegative() {
		return invalidf("raw_material_ratio must be greater than zero, got %s", in.RawMaterialRatio.String())
	}
	return requirePrecision("raw_material_ratio", in.RawMaterialRatio)
}

// ratio returns RawMaterialRatio, defaulting zero to 1.
func (in FinishedProductInput) ratio() decimal.Decimal {
	if in.RawMaterialRatio.IsZero() {
		return decimal.NewFromInt(1)
	}
	return in.RawMaterialRatio
}

// Validate checks the customer fields.
func (in CustomerInput) Validate() error {
	if err := requireName("name", in.Name, maxCustomerNameLen); err != nil {
		return err
	}
	phone := strings.TrimSpace(in.PhoneNumber)
	if phone == "" {
		return invalidf("phone_number is required")
	}
	if len(phone) > maxPhoneLen {
		return invalidf("phone_number must be at most %d characters", maxPhoneLen)
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		if len(email) > maxEmailLen {
			return invalidf("email must be at most %d characters", maxEmailLen)
		}
		if _, err := mail.ParseAddress(email); err != nil {
			return invalidf("email %q is not a valid address", email)
		}
	}
	return nil
}

// Validate checks the purchase fields.
func (in PurchaseInput) Validate() error {
	if err := requireID("raw_material_id", in.RawMaterialID); err != nil {
		return err
	}
	if err := requirePositive("quantity_kg", in.QuantityKg); err != nil {
		return err
	}
	if err := requireNonNegative("price_per_unit", in.PricePerUnit); err != nil {
		return err
	}
	if err := requireNonNegative("other_expenses", in.OtherExpenses); err != nil {
		return err
	}
	if !in.PaymentMode.Valid() {
		return invalidf("payment_mode must be %q or %q, got %q", PaymentCash, PaymentCredit, in.PaymentMode)
	}
	return nil
}

// Validate checks the production fields.
func (in ProductionInput) Validate() error {
	if err := requireID("raw_material_id", in.RawMaterialID); err != nil {
		return err
	}
	if err := requireID("finished_product_id", in.FinishedProductID); err != nil {
		return err
	}
	return requirePositive("quantity_kg", in.QuantityKg)
}

// Validate checks the bill header and every line.
func (in BillInput) Validate() error {
	if in.CustomerID != nil && *in.CustomerID <= 0 {
		return invalidf("customer_id must be a positive id")
	}
	if err := requireNonNegative("other_expenses", in.OtherExpenses); err != nil {
		return err
	}
	seen := map[int]bool{}
	for i, item := range in.Items {
		if item.ID != nil {
			if seen[*item.ID] {
				return invalidf("items[%d]: bill item %d listed more than once", i, *item.ID)
			}
			seen[*item.ID] = true
		}
		if item.Delete {
			if item.ID == nil {
				return invalidf("items[%d]: delete requires an item id", i)
			}
			continue
		}
		if err := requireID(fmt.Sprintf("items[%d].product_id", i), item.ProductID); err != nil {
			return err
		}
		if err := requirePositive(fmt.Sprintf("items[%d].quantity_kg", i), item.QuantityKg); err != nil {
			return err
		}
		if err := requireNonNegative(fmt.Sprintf("items[%d].price_per_unit", i), item.PricePerUnit); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the expense fields.
func (in ExpenseInput) Validate() error {
	if err := requireName("description", in.Description, maxDescriptionLen); err != nil {
		return err
	}
	return requireNonNegative("amount", in.Amount)
}
