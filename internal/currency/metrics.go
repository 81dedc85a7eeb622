package currency

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	refreshSuccess  = "success"
	refreshFailure  = "failure"
	refreshStale    = "stale"
	refreshStoreHit = "store_hit"
)

var (
	rateRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "currency_rate_refresh_total",
		Help: "Exchange rate snapshot refreshes by result",
	}, []string{"result"})

	snapshotFetchedAt = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "currency_rate_snapshot_fetched_timestamp_seconds",
		Help: "Unix time the current exchange rate snapshot was fetched",
	})
)

func recordRefresh(result string) {
	rateRefreshTotal.WithLabelValues(result).Inc()
}

func recordSnapshot(s *Snapshot) {
	snapshotFetchedAt.Set(float64(s.FetchedAt.Unix()))
}
