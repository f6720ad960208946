package history

import (
	"context"
	stderrors "errors"

	"github.com/sony/gobreaker/v2"

	"rolefit/internal/analysis"
	"rolefit/internal/config"
	"rolefit/internal/errors"
)

// BreakerSink guards another Sink with a circuit breaker so a failing
// backend is not hammered while it recovers. Caller mistakes such as an
// empty owner do not count as backend failures.
type BreakerSink struct {
	next Sink
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreakerSink wraps next. When the breaker is disabled next is returned
// unchanged.
func NewBreakerSink(next Sink, cfg config.CircuitBreakerConfig, logger *errors.Logger) Sink {
	if !cfg.Enabled {
		return next
	}
	if logger == nil {
		logger = errors.Nop()
	}

	settings := gobreaker.Settings{
		Name:        "history-" + next.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			appErr, ok := errors.As(err)
			return ok && appErr.Type == errors.ErrorTypeValidation
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &BreakerSink{next: next, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

func (b *BreakerSink) Name() string { return b.next.Name() }

func (b *BreakerSink) Save(ctx context.Context, owner string, rec *analysis.Record) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Save(ctx, owner, rec)
	})
	return b.translate(err)
}

func (b *BreakerSink) List(ctx context.Context, owner string, limit int) ([]analysis.Record, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.next.List(ctx, owner, limit)
	})
	if err != nil {
		return nil, b.translate(err)
	}
	records, _ := out.([]analysis.Record)
	return records, nil
}

// Ping reports an open circuit as unhealthy without touching the backend.
func (b *BreakerSink) Ping(ctx context.Context) error {
	if b.cb.State() == gobreaker.StateOpen {
		return b.translate(gobreaker.ErrOpenState)
	}
	return b.next.Ping(ctx)
}

func (b *BreakerSink) Close() error { return b.next.Close() }

// Stats returns circuit breaker statistics.
func (b *BreakerSink) Stats() map[string]any {
	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

func (b *BreakerSink) translate(err error) error {
	if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.NewStorageError(errors.ErrCodeStorageUnavailable, "history storage is temporarily unavailable", err).
			WithContext("breaker", b.cb.Name())
	}
	return err
}
