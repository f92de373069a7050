package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/memefi-tapper/internal/domain"
	"github.com/bnema/memefi-tapper/internal/ports"
)

const (
	defaultAttempts   = 5
	defaultRetryDelay = 3 * time.Second

	campaignInactiveMessage = "Campaign is not active"
)

// Executor runs game API calls with bounded retries. Only session-fatal
// errors escape it; everything else is logged and reported as "no result".
type Executor struct {
	clock    ports.Clock
	logger   *zap.Logger
	attempts int
	delay    time.Duration
}

func NewExecutor(clock ports.Clock, logger *zap.Logger) *Executor {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Executor{
		clock:    clock,
		logger:   logger,
		attempts: defaultAttempts,
		delay:    defaultRetryDelay,
	}
}

// Retry calls fn up to the configured number of attempts, sleeping between
// failed attempts. The bool result is false when every attempt failed.
func Retry[T any](ctx context.Context, e *Executor, op string, fn func(context.Context) (T, error)) (T, bool, error) {
	var zero T

	for attempt := 1; attempt <= e.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, false, err
		}

		value, err := fn(ctx)
		if err == nil {
			return value, true, nil
		}
		if domain.IsSessionFatal(err) {
			return zero, false, err
		}

		e.report(op, attempt, err)

		if attempt < e.attempts {
			if err := e.clock.Sleep(ctx, e.delay); err != nil {
				return zero, false, err
			}
		}
	}

	return zero, false, nil
}

// Once calls fn a single time.
func Once[T any](ctx context.Context, e *Executor, op string, fn func(context.Context) (T, error)) (T, bool, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	value, err := fn(ctx)
	if err == nil {
		return value, true, nil
	}
	if domain.IsSessionFatal(err) {
		return zero, false, err
	}

	e.report(op, 1, err)
	return zero, false, nil
}

// Do is Once for calls without a result.
func Do(ctx context.Context, e *Executor, op string, fn func(context.Context) error) (bool, error) {
	_, ok, err := Once(ctx, e, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return ok, err
}

func (e *Executor) report(op string, attempt int, err error) {
	fields := []zap.Field{zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err)}

	var statusErr *domain.StatusError
	var protocolErr *domain.ProtocolError

	switch {
	case errors.Is(err, domain.ErrEmptyResponse):
		e.logger.Debug("empty response", fields...)
	case errors.As(err, &protocolErr) && strings.Contains(protocolErr.Message, campaignInactiveMessage):
		e.logger.Warn("campaign inactive", fields...)
	case errors.As(err, &statusErr) && statusErr.StatusCode == 400:
		e.logger.Warn("request rejected", fields...)
	default:
		e.logger.Error("request failed", fields...)
	}
}
