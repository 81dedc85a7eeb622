package currency

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is an immutable set of rates expressed as units of each currency
// per 1 unit of Base.
type Snapshot struct {
	Base      string
	Date      string // as reported by the provider
	FetchedAt time.Time

	raw    map[string]string
	parsed map[string]decimal.Decimal
}

// NewSnapshot copies rates and parses them. Codes are upper-cased. Rates that
// are not positive numbers are kept in the raw view but never resolved.
func NewSnapshot(base, date string, rates map[string]string, fetchedAt time.Time) *Snapshot {
	s := &Snapshot{
		Base:      strings.ToUpper(base),
		Date:      date,
		FetchedAt: fetchedAt.UTC(),
		raw:       make(map[string]string, len(rates)),
		parsed:    make(map[string]decimal.Decimal, len(rates)),
	}

	for code, value := range rates {
		code = strings.ToUpper(strings.TrimSpace(code))
		s.raw[code] = value
		if d, err := decimal.NewFromString(strings.TrimSpace(value)); err == nil && d.IsPositive() {
			s.parsed[code] = d
		}
	}

	if _, ok := s.parsed[s.Base]; !ok && s.Base != "" {
		s.parsed[s.Base] = decimal.NewFromInt(1)
		s.raw[s.Base] = "1"
	}

	return s
}

// Rate returns the units of code per 1 unit of Base.
func (s *Snapshot) Rate(code string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Decimal{}, false
	}
	rate, ok := s.parsed[strings.ToUpper(strings.TrimSpace(code))]
	return rate, ok
}

// Rates returns a copy of the rates as received.
func (s *Snapshot) Rates() map[string]string {
	out := make(map[string]string, len(s.raw))
	for code, value := range s.raw {
		out[code] = value
	}
	return out
}

// Len is the number of resolvable currencies.
func (s *Snapshot) Len() int {
	return len(s.parsed)
}

// FreshAt reports whether the snapshot is still inside its validity window.
func (s *Snapshot) FreshAt(now time.Time, ttl time.Duration) bool {
	return s != nil && now.Sub(s.FetchedAt) < ttl
}

// Rebase re-expresses the snapshot against target. It returns false when
// target has no usable rate.
func (s *Snapshot) Rebase(target string) (*Snapshot, bool) {
	target = strings.ToUpper(target)
	if target == s.Base {
		return s, true
	}

	pivot, ok := s.parsed[target]
	if !ok {
		return nil, false
	}

	rates := make(map[string]string, len(s.parsed))
	for code, rate := range s.parsed {
		rates[code] = rate.DivRound(pivot, 10).String()
	}
	rates[target] = "1"

	return NewSnapshot(target, s.Date, rates, s.FetchedAt), true
}

// ProviderResponse is the payload returned by the exchange rate provider.
type ProviderResponse struct {
	Date  string            `json:"date"`
	Base  string            `json:"base"`
	Rates map[string]string `json:"rates"`
}

// RatesResponse is the API response for the current snapshot
type RatesResponse struct {
	Base      string            `json:"base"`
	Date      string            `json:"date"`
	FetchedAt time.Time         `json:"fetchedAt"`
	Rates     map[string]string `json:"rates"`
}

// RateResponse is the API response for a single currency
type RateResponse struct {
	Base string `json:"base"`
	Code string `json:"code"`
	Rate string `json:"rate"`
}

// RoundingMode defines how amounts are rounded
type RoundingMode int

const (
	RoundingModeNone     RoundingMode = iota // No rounding
	RoundingModeStandard                     // Half away from zero
	RoundingModeCeiling                      // Always round up
	RoundingModeFloor                        // Always round down
	RoundingModeBankers                      // Banker's rounding (round to even)
)

var roundingModes = map[string]RoundingMode{
	"none":     RoundingModeNone,
	"standard": RoundingModeStandard,
	"ceiling":  RoundingModeCeiling,
	"floor":    RoundingModeFloor,
	"bankers":  RoundingModeBankers,
}

// ParseRoundingMode maps a configured name to a RoundingMode.
func ParseRoundingMode(name string) (RoundingMode, error) {
	mode, ok := roundingModes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return RoundingModeStandard, fmt.Errorf("unknown rounding mode %q", name)
	}
	return mode, nil
}

// CurrencyUSD is the default reporting currency.
const CurrencyUSD = "USD"
