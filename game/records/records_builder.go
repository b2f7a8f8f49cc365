package records

import (
	"time"

	"go.uber.org/zap"
)

// StoreBuilderOption configures a Store.
type StoreBuilderOption func(*Store)

// WithLogger sets the logger; the store logs under the "records" name.
//
// Parameters:
//   - log: the parent logger
//
// Returns:
//   - StoreBuilderOption: the option
func WithLogger(log *zap.Logger) StoreBuilderOption {
	return func(s *Store) {
		if log != nil {
			s.log = log.Named("records")
		}
	}
}

// WithClock replaces time.Now for stamping rounds.
func WithClock(now func() time.Time) StoreBuilderOption {
	return func(s *Store) {
		s.now = now
	}
}
