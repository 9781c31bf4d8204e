// internal/engine/currency.go
package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Converter converts monetary values to the reporting currency through a
// static rate table. Rates are keyed "FROM_to_TO"; the inverse direction is
// derived when only one side is present.
type Converter struct {
	base  string
	rates map[string]float64
}

// NewConverter builds a converter for the given reporting currency.
func NewConverter(base string, rates map[string]float64) *Converter {
	return &Converter{base: strings.ToUpper(strings.TrimSpace(base)), rates: rates}
}

// Base returns the reporting currency code.
func (c *Converter) Base() string {
	return c.base
}

// Convert converts amount from the given currency into the reporting
// currency. An unknown currency pair returns the amount unchanged with
// ok=false so callers can record a data-quality warning.
func (c *Converter) Convert(amount decimal.Decimal, from string) (decimal.Decimal, bool) {
	from = strings.ToUpper(strings.TrimSpace(from))
	if from == "" || from == c.base {
		return amount, true
	}
	if rate, ok := c.rates[rateKey(from, c.base)]; ok {
		return amount.Mul(decimal.NewFromFloat(rate)), true
	}
	if rate, ok := c.rates[rateKey(c.base, from)]; ok && rate != 0 {
		return amount.Div(decimal.NewFromFloat(rate)), true
	}
	return amount, false
}

// ConvertFloat is Convert over float64 inputs.
func (c *Converter) ConvertFloat(amount float64, from string) (decimal.Decimal, bool) {
	return c.Convert(decimal.NewFromFloat(amount), from)
}

func rateKey(from, to string) string {
	return fmt.Sprintf("%s_to_%s", from, to)
}
