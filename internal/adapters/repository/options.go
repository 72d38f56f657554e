package repository

import "time"

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithSnapshotInterval sets how often the store publishes a Snapshot.
func WithSnapshotInterval(interval time.Duration) Option {
	return func(s *TreapStore) {
		if interval > 0 {
			s.snapshotInterval = interval
		}
	}
}

// WithTopCacheSize sets how many throws a Snapshot carries.
func WithTopCacheSize(n int) Option {
	return func(s *TreapStore) {
		if n > 0 {
			s.topCacheSize = n
		}
	}
}
