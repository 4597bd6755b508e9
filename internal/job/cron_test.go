package job

import (
	"context"
	"testing"
	"time"

	"evinburada/internal/logger"
	"evinburada/internal/model"
	"evinburada/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEvictor struct {
	calls chan struct{}
}

func (c *countingEvictor) EvictExpired() int {
	c.calls <- struct{}{}
	return 0
}

func TestSweep(t *testing.T) {
	store := service.NewMemoryStore(time.Nanosecond)
	require.NoError(t, store.Save(context.Background(), &model.Session{ID: "s1"}))
	time.Sleep(time.Millisecond)

	assert.Equal(t, 1, sweep(store, logger.NewTestLogger(t)))
	assert.Zero(t, store.Len())
}

func TestStartSessionSweeper(t *testing.T) {
	ev := &countingEvictor{calls: make(chan struct{}, 4)}

	c, err := StartSessionSweeper(ev, "@every 1s", logger.NewTestLogger(t))
	require.NoError(t, err)
	defer c.Stop()

	select {
	case <-ev.calls:
	case <-time.After(3 * time.Second):
		t.Fatal("sweeper did not run")
	}
}

func TestStartSessionSweeper_InvalidSpec(t *testing.T) {
	_, err := StartSessionSweeper(&countingEvictor{}, "every tuesday", logger.NewNoOpLogger())
	assert.Error(t, err)
}
