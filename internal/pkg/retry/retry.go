package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"100ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"2s"`
}

// ToRetryOptions converts the config to retry-go options. Zero attempts means a
// single try; retry-go would read it as unlimited.
func (rc *RetryConfig) ToRetryOptions(ctx context.Context) []retry.Option {
	attempts := rc.Attempts
	if attempts == 0 {
		attempts = 1
	}
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.MaxDelay(rc.MaxDelay),
		retry.Delay(rc.Delay),
		retry.LastErrorOnly(true),
	}
}

// Do runs fn under the configured policy. Errors matched by permanent stop the loop at once.
func Do[T any](ctx context.Context, rc *RetryConfig, permanent func(error) bool, fn func() (T, error)) (T, error) {
	opts := rc.ToRetryOptions(ctx)
	if permanent != nil {
		opts = append(opts, retry.RetryIf(func(err error) bool {
			return !permanent(err)
		}))
	}
	return retry.DoWithData(fn, opts...)
}
