package currency

import "context"

// RateProvider fetches the latest rates from the upstream provider.
type RateProvider interface {
	FetchLatest(ctx context.Context) (*ProviderResponse, error)
}

// SnapshotStore shares snapshots between replicas. Load returns nil, nil
// when nothing is stored.
type SnapshotStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
}
