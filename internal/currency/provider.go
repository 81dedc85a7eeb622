package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/richxcame/invoice-insights/pkg/httpclient"
	"github.com/richxcame/invoice-insights/pkg/resilience"
)

// CurrencyFreaksProvider reads the latest rates from currencyfreaks.com
// compatible endpoints.
type CurrencyFreaksProvider struct {
	client *httpclient.Client
	apiURL string
	apiKey string
}

// NewCurrencyFreaksProvider builds a provider whose calls are retried with
// backoff behind a circuit breaker.
func NewCurrencyFreaksProvider(apiURL, apiKey string, timeout time.Duration) *CurrencyFreaksProvider {
	breaker := resilience.NewCircuitBreaker(
		resilience.BuildSettings("currency-provider", 60, 30, 5, 1),
		resilience.GracefulDegradation("currency-provider"),
	)

	client := httpclient.NewClient("", timeout).WithOptions(
		httpclient.WithDefaultRetry(),
		httpclient.WithCircuitBreaker(breaker),
	)

	return NewCurrencyFreaksProviderWithClient(client, apiURL, apiKey)
}

// NewCurrencyFreaksProviderWithClient uses an already configured client.
func NewCurrencyFreaksProviderWithClient(client *httpclient.Client, apiURL, apiKey string) *CurrencyFreaksProvider {
	return &CurrencyFreaksProvider{client: client, apiURL: apiURL, apiKey: apiKey}
}

// FetchLatest calls the provider once (plus retries).
func (p *CurrencyFreaksProvider) FetchLatest(ctx context.Context) (*ProviderResponse, error) {
	endpoint, err := p.endpoint()
	if err != nil {
		return nil, err
	}

	body, err := p.client.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}

	var resp ProviderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode exchange rates: %w", err)
	}

	return &resp, nil
}

func (p *CurrencyFreaksProvider) endpoint() (string, error) {
	u, err := url.Parse(p.apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid currency api url: %w", err)
	}

	if p.apiKey != "" {
		q := u.Query()
		q.Set("apikey", p.apiKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
