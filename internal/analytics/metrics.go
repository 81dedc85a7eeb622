package analytics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var rateFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "currency_rate_fallback_total",
	Help: "Grouped sums converted with rate 1 because the currency had no rate",
}, []string{"currency"})

// otherCurrency labels codes that are not three ASCII letters.
const otherCurrency = "other"

func recordFallback(code string) {
	rateFallbackTotal.WithLabelValues(currencyLabel(code)).Inc()
}

// currencyLabel keeps the label set bounded: codes come from uploaded data.
func currencyLabel(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return otherCurrency
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return otherCurrency
		}
	}
	return code
}
