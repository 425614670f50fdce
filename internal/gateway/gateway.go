package gateway

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/BuzzLyutic/taskboard/internal/cache"
	"github.com/BuzzLyutic/taskboard/internal/keylock"
	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/remote"
)

var (
	ErrNotFound      = errors.New("task not found")
	ErrRemote        = errors.New("remote failure")
	ErrInvalidStatus   = errors.New("status must be 0 or 1")
	ErrInvalidTaskType = errors.New("unknown task type")
)

// Remote определяет интерфейс удаленной коллекции задач
type Remote interface {
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id int64) (model.Task, error)
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Replace(ctx context.Context, t model.Task) (model.Task, error)
	Patch(ctx context.Context, id int64, fields map[string]any) (model.Task, error)
	Delete(ctx context.Context, id int64) error
}

// Source says where List got its data.
type Source int

const (
	SourceRemote Source = iota
	SourceCache
)

func (s Source) String() string {
	if s == SourceCache {
		return "cache"
	}
	return "remote"
}

// Gateway mirrors every confirmed remote result into the cache. It never
// touches the caller's collection; callers merge the returned records.
type Gateway struct {
	remote Remote
	cache  *cache.Cache
	logger *zap.Logger
	locks  *keylock.Locker
	group  singleflight.Group
}

func New(r Remote, c *cache.Cache, logger *zap.Logger) *Gateway {
	return &Gateway{
		remote: r,
		cache:  c,
		logger: logger,
		locks:  keylock.New(),
	}
}

// List fetches the remote collection and overwrites the cache with it. Any
// remote failure degrades to the cached collection; it is never an error.
func (g *Gateway) List(ctx context.Context) ([]model.Task, Source) {
	// Параллельные чтения схлопываются в один запрос. Общий вызов не
	// отменяется вместе с контекстом первого вызывающего.
	ctx = context.WithoutCancel(ctx)
	v, _, _ := g.group.Do("list", func() (any, error) {
		tasks, err := g.remote.List(ctx)
		if err != nil {
			g.logger.Warn("remote list failed, falling back to cache", zap.Error(err))
			return listResult{tasks: g.cached(ctx), source: SourceCache}, nil
		}

		if err := g.cache.Replace(ctx, tasks); err != nil {
			g.logger.Warn("failed to refresh cache", zap.Error(err))
		}
		return listResult{tasks: tasks, source: SourceRemote}, nil
	})

	res := v.(listResult)
	out := make([]model.Task, len(res.tasks))
	for i, t := range res.tasks {
		out[i] = t.Clone()
	}
	return out, res.source
}

type listResult struct {
	tasks  []model.Task
	source Source
}

func (g *Gateway) cached(ctx context.Context) []model.Task {
	tasks, err := g.cache.Load(ctx)
	if err != nil {
		g.logger.Warn("cache unreadable, returning empty collection", zap.Error(err))
		return []model.Task{}
	}
	return tasks
}

// Remove deletes id remotely and, only on success, drops it from the cache.
func (g *Gateway) Remove(ctx context.Context, id int64) error {
	unlock, err := g.locks.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if err := g.remote.Delete(ctx, id); err != nil {
		return g.fail("delete", id, err)
	}

	g.mirror(ctx, "delete", id, cache.Remove(id))
	return nil
}

// SetStatus sends a partial update of status only and patches the cached copy.
func (g *Gateway) SetStatus(ctx context.Context, id int64, status int) (model.Task, error) {
	if !model.ValidStatus(status) {
		return model.Task{}, fmt.Errorf("set status %d: %w", status, ErrInvalidStatus)
	}

	unlock, err := g.locks.Lock(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	defer unlock()

	updated, err := g.remote.Patch(ctx, id, map[string]any{"status": status})
	if err != nil {
		return model.Task{}, g.fail("set status", id, err)
	}
	if updated.ID == 0 {
		updated = model.Task{ID: id}
	}
	updated.Status = status

	g.mirror(ctx, "set status", id, cache.SetStatus(id, status))
	return updated, nil
}

// Create posts t and returns the record the remote confirmed.
func (g *Gateway) Create(ctx context.Context, t model.Task) (model.Task, error) {
	t = t.Normalize()
	if err := checkTask("create", t); err != nil {
		return model.Task{}, err
	}

	if t.ID != 0 {
		unlock, err := g.locks.Lock(ctx, t.ID)
		if err != nil {
			return model.Task{}, err
		}
		defer unlock()
	}

	created, err := g.remote.Create(ctx, t)
	if err != nil {
		return model.Task{}, g.fail("create", t.ID, err)
	}
	created = confirmed(created, t)

	g.mirror(ctx, "create", created.ID, cache.Put(created))
	return created, nil
}

// Update checks that t.ID still exists remotely, then replaces it. A missing
// task is reported as ErrNotFound and nothing is written.
func (g *Gateway) Update(ctx context.Context, t model.Task) (model.Task, error) {
	t = t.Normalize()
	if err := checkTask("update", t); err != nil {
		return model.Task{}, err
	}

	unlock, err := g.locks.Lock(ctx, t.ID)
	if err != nil {
		return model.Task{}, err
	}
	defer unlock()

	if _, err := g.remote.Get(ctx, t.ID); err != nil {
		return model.Task{}, g.fail("update lookup", t.ID, err)
	}

	updated, err := g.remote.Replace(ctx, t)
	if err != nil {
		return model.Task{}, g.fail("update", t.ID, err)
	}
	updated = confirmed(updated, t)

	g.mirror(ctx, "update", t.ID, cache.Put(updated))
	return updated, nil
}

func (g *Gateway) mirror(ctx context.Context, op string, id int64, fn func([]model.Task) []model.Task) {
	if err := g.cache.Update(ctx, fn); err != nil {
		g.logger.Warn("failed to mirror into cache",
			zap.String("op", op),
			zap.Int64("task_id", id),
			zap.Error(err),
		)
	}
}

func (g *Gateway) fail(op string, id int64, err error) error {
	if errors.Is(err, remote.ErrNotFound) {
		g.logger.Warn("task does not exist", zap.String("op", op), zap.Int64("task_id", id))
		return fmt.Errorf("%s %d: %w: %w", op, id, ErrNotFound, err)
	}
	g.logger.Error("remote call failed", zap.String("op", op), zap.Int64("task_id", id), zap.Error(err))
	return fmt.Errorf("%s %d: %w: %w", op, id, ErrRemote, err)
}

// checkTask refuses records that must never reach the remote or the cache.
func checkTask(op string, t model.Task) error {
	if !model.ValidStatus(t.Status) {
		return fmt.Errorf("%s %d: status %d: %w", op, t.ID, t.Status, ErrInvalidStatus)
	}
	if !model.ValidTaskType(t.TaskType) {
		return fmt.Errorf("%s %d: %q: %w", op, t.ID, t.TaskType, ErrInvalidTaskType)
	}
	return nil
}

// confirmed prefers the remote echo but falls back to what was sent when the
// remote answered without a record.
func confirmed(resp, sent model.Task) model.Task {
	if resp.ID == 0 {
		return sent
	}
	return resp.Normalize()
}
