package reliability

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/aashari/go-report-analyzer/internal/logger"
)

// RetryConfig defines configuration for retry behavior.
// MaxAttempts of 1 means a single try with no retry.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	// Jitter is the fraction of each delay that is randomised, 0..1
	Jitter      float64
	IsRetryable func(error) bool
}

// DefaultRetryConfig returns the provider retry policy for n attempts
func DefaultRetryConfig(maxAttempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:   maxAttempts,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      4 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        0.5,
	}
}

// RetryableError lets an error decide whether it is worth another attempt
type RetryableError interface {
	IsRetriable() bool
}

// RetryExecutor handles retry logic with exponential backoff
type RetryExecutor struct {
	config RetryConfig
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryExecutor creates a new retry executor with the given configuration
func NewRetryExecutor(config RetryConfig) *RetryExecutor {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.IsRetryable == nil {
		config.IsRetryable = defaultIsRetryable
	}
	return &RetryExecutor{config: config, sleep: sleepContext}
}

// ExecuteWithRetry runs operation until it succeeds, returns a
// non-retryable error, the attempts run out or ctx is done.
func (r *RetryExecutor) ExecuteWithRetry(ctx context.Context, operation func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := operation(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info(ctx, "Operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		lastErr = err

		if r.config.MaxAttempts == 1 {
			return err
		}
		if !r.config.IsRetryable(err) {
			return err
		}
		if attempt == r.config.MaxAttempts {
			break
		}

		delay := r.backoff(attempt)
		logger.Warn(logger.WithStage(ctx, logger.LogStages.Retry), "Operation failed, retrying",
			"attempt", attempt,
			"max_attempts", r.config.MaxAttempts,
			"delay_ms", delay.Milliseconds(),
			"error", err)

		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", r.config.MaxAttempts, lastErr)
}

// backoff returns InitialDelay * BackoffFactor^(attempt-1), capped, with jitter
func (r *RetryExecutor) backoff(attempt int) time.Duration {
	delay := float64(r.config.InitialDelay) * math.Pow(r.config.BackoffFactor, float64(attempt-1))
	if max := float64(r.config.MaxDelay); r.config.MaxDelay > 0 && delay > max {
		delay = max
	}
	if j := r.config.Jitter; j > 0 {
		if j > 1 {
			j = 1
		}
		delay = delay*(1-j) + delay*j*rand.Float64()
	}
	return time.Duration(delay)
}

func defaultIsRetryable(err error) bool {
	var re RetryableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Retry executes operation with config
func Retry(ctx context.Context, config RetryConfig, operation func(ctx context.Context) error) error {
	return NewRetryExecutor(config).ExecuteWithRetry(ctx, operation)
}
