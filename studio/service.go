package studio

import (
	"io"
	"time"

	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/sirupsen/logrus"
)

// Hooks are optional callbacks fired after each workflow. The api package
// uses them to feed Prometheus counters.
type Hooks struct {
	OnCheckIn func(err error)
	OnCancel  func(restored bool, err error)
}

// Service runs the attendance workflows against a TxStore.
type Service struct {
	store TxStore
	now   func() time.Time
	log   logrus.FieldLogger
	retry retrypolicy.RetryPolicy[any]
	hooks Hooks

	enrichConcurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for default check-in dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) { s.log = log }
}

// WithRetry sets how often a check-in is retried after a checkinId
// collision or a busy store.
func WithRetry(maxRetries int, baseDelay, maxDelay time.Duration) Option {
	return func(s *Service) { s.retry = newRetryPolicy(maxRetries, baseDelay, maxDelay) }
}

func WithHooks(h Hooks) Option {
	return func(s *Service) { s.hooks = h }
}

// WithEnrichConcurrency bounds concurrent lookups during enrichment.
func WithEnrichConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.enrichConcurrency = n
		}
	}
}

// NewService creates a Service. Defaults: wall clock, discarded logs,
// 3 retries with 10ms..200ms backoff, 8 concurrent enrichment lookups.
func NewService(store TxStore, opts ...Option) *Service {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	s := &Service{
		store:             store,
		now:               time.Now,
		log:               quiet,
		retry:             newRetryPolicy(3, 10*time.Millisecond, 200*time.Millisecond),
		enrichConcurrency: 8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() TxStore {
	return s.store
}

// Ledger returns a ledger over the service's store.
func (s *Service) Ledger() *Ledger {
	return NewLedger(s.store)
}

func newRetryPolicy(maxRetries int, baseDelay, maxDelay time.Duration) retrypolicy.RetryPolicy[any] {
	return retrypolicy.NewBuilder[any]().
		WithBackoff(baseDelay, maxDelay).
		WithMaxRetries(maxRetries).
		HandleIf(func(_ any, err error) bool {
			return IsRetryable(err)
		}).
		ReturnLastFailure().
		Build()
}
