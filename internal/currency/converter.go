package currency

import (
	"github.com/shopspring/decimal"
)

// Converter turns amounts in a source currency into the base currency.
type Converter struct {
	mode   RoundingMode
	places int32
}

// NewConverter creates a converter rounding to places with mode.
func NewConverter(mode RoundingMode, places int32) *Converter {
	if places < 0 {
		places = 0
	}
	return &Converter{mode: mode, places: places}
}

// ToBase divides amount by rate (units of the source currency per 1 base
// unit). The result is not rounded.
func (c *Converter) ToBase(amount, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return amount
	}
	return amount.Div(rate)
}

// Round rounds an amount according to the converter's mode and places.
func (c *Converter) Round(amount decimal.Decimal) decimal.Decimal {
	switch c.mode {
	case RoundingModeNone:
		return amount
	case RoundingModeCeiling:
		return amount.RoundCeil(c.places)
	case RoundingModeFloor:
		return amount.RoundFloor(c.places)
	case RoundingModeBankers:
		return amount.RoundBank(c.places)
	default: // RoundingModeStandard
		return amount.Round(c.places)
	}
}
