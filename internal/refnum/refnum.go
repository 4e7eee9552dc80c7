// Package refnum generates human-readable booking and order references.
package refnum

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
)

const (
	BookingPrefix = "YC"
	OrderPrefix   = "ORD-"

	// DefaultAttempts bounds the retry loop on unique-constraint collisions.
	DefaultAttempts = 5
)

var ErrExhausted = errors.New("reference number attempts exhausted")

type Generator struct {
	mu   sync.Mutex
	now  func() time.Time
	rand *rand.Rand
}

func NewGenerator() *Generator {
	return &Generator{
		now:  time.Now,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewGeneratorWith is used by tests to pin the clock and the random source.
func NewGeneratorWith(now func() time.Time, seed int64) *Generator {
	return &Generator{now: now, rand: rand.New(rand.NewSource(seed))}
}

// BookingNumber: YC + last 8 digits of unix ms + 0..999.
func (g *Generator) BookingNumber() string {
	return BookingPrefix + g.stamp() + strconv.Itoa(g.intn(1000))
}

// OrderNumber: ORD- + last 8 digits of unix ms + 0..9999.
func (g *Generator) OrderNumber() string {
	return OrderPrefix + g.stamp() + strconv.Itoa(g.intn(10000))
}

func (g *Generator) stamp() string {
	ms := strconv.FormatInt(g.now().UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return ms
}

func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rand.Intn(n)
}

// Retry calls insert with fresh numbers until it stops reporting apperr.ErrConflict.
func Retry(ctx context.Context, attempts int, next func() string, insert func(number string) error) (string, error) {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		number := next()
		err := insert(number)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, apperr.ErrConflict) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrExhausted, attempts)
}
