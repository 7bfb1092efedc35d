// Package claims tracks which keys a single plan or batch has consumed.
package claims

// Option applies a configuration option to a claim set.
type Option func(capacity *int)

// WithCapacity presizes the claim set for the expected number of keys.
func WithCapacity(n int) Option {
	return func(capacity *int) {
		if n > 0 {
			*capacity = n
		}
	}
}
