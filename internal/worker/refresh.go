package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/gateway"
)

// Loader перезагружает коллекцию задач
type Loader interface {
	Load(ctx context.Context) gateway.Source
}

// Refresher periodically reloads the board so changes made by other clients
// of the same /todos endpoint show up without a restart.
type Refresher struct {
	loader   Loader
	logger   *zap.Logger
	interval time.Duration
	timeout  time.Duration
	wg       sync.WaitGroup
	stop     chan struct{}
	once     sync.Once
}

func NewRefresher(loader Loader, logger *zap.Logger, interval, timeout time.Duration) *Refresher {
	return &Refresher{
		loader:   loader,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
		stop:     make(chan struct{}),
	}
}

// Start is a no-op when interval is not positive.
func (r *Refresher) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	r.logger.Info("Starting board refresher", zap.Duration("interval", r.interval))

	r.wg.Add(1)
	go r.run(ctx)
}

func (r *Refresher) Stop() {
	r.once.Do(func() {
		close(r.stop)
	})
	r.wg.Wait()
	r.logger.Info("Board refresher stopped")
}

func (r *Refresher) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if src := r.loader.Load(ctx); src == gateway.SourceCache {
		r.logger.Warn("refresh served from cache")
	}
}
