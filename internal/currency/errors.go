package currency

import "fmt"

// RateProviderUnavailableError means no usable snapshot could be obtained.
type RateProviderUnavailableError struct {
	Err error
}

func (e *RateProviderUnavailableError) Error() string {
	return fmt.Sprintf("exchange rate provider unavailable: %v", e.Err)
}

func (e *RateProviderUnavailableError) Unwrap() error {
	return e.Err
}
