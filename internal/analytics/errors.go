package analytics

import "fmt"

// UnresolvableCurrencyError is returned under the reject policy when a group
// is in a currency the rate snapshot does not know.
type UnresolvableCurrencyError struct {
	Currency string
}

func (e *UnresolvableCurrencyError) Error() string {
	return fmt.Sprintf("no exchange rate for currency %q", e.Currency)
}
