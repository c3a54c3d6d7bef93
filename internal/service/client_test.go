package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestClientRegistry_LazyCreate(t *testing.T) {
	built := 0
	r := NewClientRegistry(func(id string) *Client {
		built++
		return &Client{ID: id}
	})

	a := r.Client("a")
	assert.Same(t, a, r.Client("a"))
	r.Client("b")

	assert.Equal(t, 2, built)
	assert.Equal(t, 2, r.Len())
}

func TestClientRegistry_Sweep(t *testing.T) {
	now := testNow
	r := NewClientRegistry(func(id string) *Client {
		return &Client{ID: id, Timer: NewSessionTimer(time.Hour, nil)}
	})
	r.now = func() time.Time { return now }

	stale := r.Client("stale")
	stale.Timer.Arm()

	now = now.Add(20 * time.Minute)
	r.Client("fresh")

	assert.Equal(t, 1, r.Sweep(10*time.Minute))
	assert.Equal(t, 1, r.Len())
	assert.False(t, stale.Timer.Pending())
	assert.NotSame(t, stale, r.Client("stale"))
}

func TestClientRegistry_StartSweeper(t *testing.T) {
	r := NewClientRegistry(func(id string) *Client { return &Client{ID: id} })
	r.Client("a")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.StartSweeper(ctx, 5*time.Millisecond, 0, zap.NewNop())

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
}
