package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noWait(int) time.Duration { return 0 }

func TestExponentialBackoff(t *testing.T) {
	backoff := ExponentialBackoff(10 * time.Millisecond)

	assert.Equal(t, 10*time.Millisecond, backoff(0))
	assert.Equal(t, 20*time.Millisecond, backoff(1))
	assert.Equal(t, 40*time.Millisecond, backoff(2))
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()

	assert.Equal(t, 3, p.MaxRetries)
	assert.Equal(t, 10*time.Millisecond, p.Backoff(0))
	assert.Equal(t, 40*time.Millisecond, p.Backoff(2))
}

func TestNewRetryPolicy_NegativeRetriesClamped(t *testing.T) {
	p := NewRetryPolicy(-2, time.Millisecond)
	assert.Equal(t, 0, p.MaxRetries)
}

func TestRetryPolicy_Run(t *testing.T) {
	conflict := &domain.ConcurrentModificationError{WalletID: uuid.New(), Version: 1}
	other := errors.New("boom")

	tests := []struct {
		name      string
		results   []error
		wantCalls int
		wantErr   error
	}{
		{"success first try", []error{nil}, 1, nil},
		{"success after conflicts", []error{conflict, conflict, nil}, 3, nil},
		{"exhausted", []error{conflict, conflict, conflict, conflict, nil}, 4, conflict},
		{"non-conflict aborts", []error{other, nil}, 1, other},
		{"conflict then other", []error{conflict, other, nil}, 2, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := RetryPolicy{MaxRetries: 3, Backoff: noWait}
			calls := 0
			var retried []int

			err := p.run(context.Background(), func(attempt int) error {
				assert.Equal(t, calls, attempt)
				calls++
				return tt.results[attempt]
			}, func(attempt int, _ time.Duration, _ error) {
				retried = append(retried, attempt)
			})

			assert.Equal(t, tt.wantCalls, calls)
			assert.Len(t, retried, tt.wantCalls-1)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRetryPolicy_Run_ReportsBackoff(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, Backoff: ExponentialBackoff(time.Microsecond)}
	conflict := &domain.ConcurrentModificationError{}

	var waits []time.Duration
	err := p.run(context.Background(), func(int) error {
		return conflict
	}, func(_ int, wait time.Duration, _ error) {
		waits = append(waits, wait)
	})

	require.Error(t, err)
	assert.Equal(t, []time.Duration{time.Microsecond, 2 * time.Microsecond, 4 * time.Microsecond}, waits)
}

func TestRetryPolicy_Run_StopsOnCancelledContext(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, Backoff: func(int) time.Duration { return time.Hour }}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := p.run(ctx, func(int) error {
		calls++
		cancel()
		return &domain.ConcurrentModificationError{}
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
