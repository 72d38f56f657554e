package dedupe

// Option applies a configuration option to the deduper.
type Option func(*window)

// WithMaxSize sets how many ids are remembered. If maxSize <= 0 nothing is
// ever forgotten.
func WithMaxSize(maxSize int) Option {
	return func(w *window) {
		w.maxSize = maxSize
	}
}
