package refnum

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time { return time.UnixMilli(1760000012345) }

func TestGenerator_Formats(t *testing.T) {
	g := NewGeneratorWith(fixedClock, 42)

	bn := g.BookingNumber()
	on := g.OrderNumber()

	assert.Regexp(t, regexp.MustCompile(`^YC00012345\d{1,3}$`), bn)
	assert.Regexp(t, regexp.MustCompile(`^ORD-00012345\d{1,4}$`), on)
}

func TestRetry_RegeneratesOnConflict(t *testing.T) {
	seq := []string{"A", "B", "C"}
	i := 0
	next := func() string { s := seq[i]; i++; return s }

	var tried []string
	got, err := Retry(context.Background(), 5, next, func(n string) error {
		tried = append(tried, n)
		if n != "C" {
			return apperr.ErrConflict
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "C", got)
	assert.Equal(t, []string{"A", "B", "C"}, tried)
}

func TestRetry_StopsOnOtherErrors(t *testing.T) {
	boom := errors.New("db down")
	calls := 0
	_, err := Retry(context.Background(), 5, func() string { return "X" }, func(string) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetry_Exhausted(t *testing.T) {
	_, err := Retry(context.Background(), 3, func() string { return "X" }, func(string) error {
		return apperr.ErrConflict
	})
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Retry(ctx, 3, func() string { return "X" }, func(string) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
