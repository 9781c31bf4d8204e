// internal/engine/currency_test.go
package engine

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestConvertDirectRate(t *testing.T) {
	c := NewConverter("EUR", map[string]float64{"USD_to_EUR": 0.9})
	got, ok := c.Convert(decimal.NewFromInt(100), "USD")
	if !ok {
		t.Fatal("expected direct conversion to succeed")
	}
	if !got.Equal(decimal.NewFromInt(90)) {
		t.Errorf("100 USD = %v EUR, want 90", got)
	}
}

func TestConvertInverseRate(t *testing.T) {
	c := NewConverter("USD", map[string]float64{"USD_to_EUR": 0.9})
	got, ok := c.Convert(decimal.NewFromInt(90), "EUR")
	if !ok {
		t.Fatal("expected inverse conversion to succeed")
	}
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("90 EUR = %v USD, want 100", got)
	}
}

func TestConvertSameCurrencyUnchanged(t *testing.T) {
	c := NewConverter("USD", nil)
	got, ok := c.Convert(decimal.NewFromInt(42), "usd")
	if !ok || !got.Equal(decimal.NewFromInt(42)) {
		t.Errorf("same-currency convert = %v (%v), want 42 unchanged", got, ok)
	}
}

func TestConvertUnknownPairUnchanged(t *testing.T) {
	c := NewConverter("USD", map[string]float64{"USD_to_EUR": 0.9})
	got, ok := c.Convert(decimal.NewFromInt(42), "JPY")
	if ok {
		t.Error("unknown pair must report ok=false")
	}
	if !got.Equal(decimal.NewFromInt(42)) {
		t.Errorf("unknown pair = %v, want amount unchanged", got)
	}
}

func TestConvertEmptyCurrencyUnchanged(t *testing.T) {
	c := NewConverter("USD", nil)
	got, ok := c.Convert(decimal.NewFromInt(7), "")
	if !ok || !got.Equal(decimal.NewFromInt(7)) {
		t.Errorf("empty currency = %v (%v), want 7 unchanged", got, ok)
	}
}
