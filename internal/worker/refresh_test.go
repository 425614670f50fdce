package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/gateway"
	"github.com/BuzzLyutic/taskboard/internal/testutil"
)

type countingLoader struct {
	calls atomic.Int32
}

func (l *countingLoader) Load(ctx context.Context) gateway.Source {
	l.calls.Add(1)
	return gateway.SourceRemote
}

func TestRefresher_ReloadsOnInterval(t *testing.T) {
	loader := &countingLoader{}
	r := NewRefresher(loader, zap.NewNop(), 10*time.Millisecond, time.Second)
	r.Start(context.Background())

	ok := testutil.WaitForCondition(t, 2*time.Second, func() bool {
		return loader.calls.Load() >= 3
	})
	r.Stop()
	assert.True(t, ok, "board should be reloaded repeatedly")

	after := loader.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, loader.calls.Load(), "no reloads after Stop")
}

func TestRefresher_DisabledInterval(t *testing.T) {
	loader := &countingLoader{}
	r := NewRefresher(loader, zap.NewNop(), 0, time.Second)
	r.Start(context.Background())

	time.Sleep(30 * time.Millisecond)
	r.Stop()
	assert.Zero(t, loader.calls.Load())
}

func TestRefresher_StopsOnContextCancel(t *testing.T) {
	loader := &countingLoader{}
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRefresher(loader, zap.NewNop(), 10*time.Millisecond, 0)
	r.Start(ctx)

	cancel()
	r.Stop()
	r.Stop()
}
