// internal/models/product.go
package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Product is one catalog entry. Price and Stock are nil when the source value
// is missing or cannot be parsed as a number.
type Product struct {
	ID          int      `json:"id"`
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Description string   `json:"description"`
}

// UnmarshalJSON accepts price and stock as numbers, numeric strings or null.
// Anything else decodes to nil instead of failing the whole catalog.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	var raw struct {
		plain
		Price json.RawMessage `json:"price"`
		Stock json.RawMessage `json:"stock"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Product(raw.plain)
	p.Price = parsePrice(raw.Price)
	p.Stock = parseStock(raw.Stock)
	return nil
}

func numericText(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	return string(raw), true
}

func parsePrice(raw json.RawMessage) *float64 {
	text, ok := numericText(raw)
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseStock(raw json.RawMessage) *int {
	text, ok := numericText(raw)
	if !ok {
		return nil
	}
	if v, err := strconv.Atoi(text); err == nil {
		return &v
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	v := int(f)
	return &v
}

// Float64 and Int are helpers for building products in code and tests.
func Float64(v float64) *float64 { return &v }

func Int(v int) *int { return &v }
