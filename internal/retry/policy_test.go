package retry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mlevkov/fastwell/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelayModes(t *testing.T) {
	fixed := NewPolicy(BackoffFixed, time.Second, 30*time.Second, 3)
	assert.Equal(t, time.Second, fixed.Delay(1))
	assert.Equal(t, time.Second, fixed.Delay(5))

	linear := NewPolicy(BackoffLinear, time.Second, 3*time.Second, 5)
	assert.Equal(t, time.Second, linear.Delay(1))
	assert.Equal(t, 2*time.Second, linear.Delay(2))
	assert.Equal(t, 3*time.Second, linear.Delay(4), "capped at max")

	exp := NewPolicy(BackoffExponential, time.Second, 10*time.Second, 5)
	assert.Equal(t, time.Second, exp.Delay(1))
	assert.Equal(t, 2*time.Second, exp.Delay(2))
	assert.Equal(t, 4*time.Second, exp.Delay(3))
	assert.Equal(t, 10*time.Second, exp.Delay(6), "capped at max")

	assert.Equal(t, time.Duration(0), exp.Delay(0))
}

func TestNewPolicyFallbacks(t *testing.T) {
	p := NewPolicy("bogus", 0, 0, -1)
	assert.Equal(t, DefaultPolicy(), p)

	p = NewPolicy(BackoffFixed, time.Minute, time.Second, 0)
	assert.Equal(t, time.Second, p.Initial, "initial clamped to max")
}

func TestValidate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())
	assert.Error(t, Policy{Initial: 0, Max: time.Second}.Validate())
	assert.Error(t, Policy{Initial: time.Second, Max: 0}.Validate())
	assert.Error(t, Policy{Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
}

func TestDo_RetriesOnlyTransient(t *testing.T) {
	p := NewPolicy(BackoffFixed, time.Millisecond, time.Millisecond, 2)

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("insert: %w", repository.ErrTransient)
	})
	assert.ErrorIs(t, err, repository.ErrTransient)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")

	calls = 0
	err = p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return repository.ErrConflict
	})
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, 1, calls, "non-transient errors are terminal")
}

func TestDo_SucceedsAfterTransient(t *testing.T) {
	p := NewPolicy(BackoffFixed, time.Millisecond, time.Millisecond, 3)

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("busy: %w", repository.ErrTransient)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnContextCancel(t *testing.T) {
	p := NewPolicy(BackoffFixed, time.Hour, time.Hour, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		return repository.ErrTransient
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "no hour-long sleep after cancellation")
}
