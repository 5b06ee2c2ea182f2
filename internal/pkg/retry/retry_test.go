package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFinal = errors.New("final")

func TestDo(t *testing.T) {
	rc := &RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		got, err := Do(context.Background(), rc, nil, func() (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("flaky")
			}
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent error stops at once", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), rc, func(err error) bool { return errors.Is(err, errFinal) }, func() (int, error) {
			calls++
			return 0, errFinal
		})

		assert.ErrorIs(t, err, errFinal)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero attempts is one try", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), &RetryConfig{}, nil, func() (int, error) {
			calls++
			return 0, errors.New("down")
		})

		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}
