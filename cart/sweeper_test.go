package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmaaza/surgical-mart-sub001/cart"
	"github.com/mmaaza/surgical-mart-sub001/models"
)

func TestSweeper_StopsWhenContextCancelled(t *testing.T) {
	gw := &mockGateway{snapshot: &models.Cart{}}
	m := newManager(t, gw)
	s := cart.NewSweeper(m, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestSweeper_SkipsUntilCartReady(t *testing.T) {
	gw := &mockGateway{snapshot: &models.Cart{}}
	m := newManager(t, gw)
	s := cart.NewSweeper(m, 2*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	assert.Empty(t, gw.calls, "no fetches before the cart was ever loaded")
}

func TestSweeper_CleansUpInvalidLines(t *testing.T) {
	gw := &mockGateway{snapshot: &models.Cart{Items: []models.CartItem{
		validItem("l1", "p1", 100, 1),
	}}}
	m := newManager(t, gw)
	require.NoError(t, m.Fetch(context.Background()))

	// A product disappears between sweeps.
	gw.snapshot = &models.Cart{Items: []models.CartItem{
		validItem("l1", "p1", 100, 1),
		invalidItem("l2"),
	}}

	s := cart.NewSweeper(m, 2*time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	assert.GreaterOrEqual(t, gw.callCount("fetch"), 1)
	assert.GreaterOrEqual(t, gw.callCount("cleanup"), 1)
	assert.False(t, m.HasInvalidItems())
}
