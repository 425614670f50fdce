package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

// ErrEmpty is returned by a Backend that holds no entry yet.
var ErrEmpty = errors.New("cache: no entry")

// Backend хранит один сериализованный снимок коллекции задач
type Backend interface {
	Init(ctx context.Context) error
	Load(ctx context.Context) ([]model.Task, error)
	Save(ctx context.Context, tasks []model.Task) error
	Clear(ctx context.Context) error
	Close() error
}

// Cache is the local mirror of the remote collection. Read-modify-write
// updates are serialized so overlapping mutations cannot lose each other.
type Cache struct {
	mu      sync.Mutex
	backend Backend
}

func New(b Backend) *Cache {
	return &Cache{backend: b}
}

func (c *Cache) Init(ctx context.Context) error {
	if err := c.backend.Init(ctx); err != nil {
		return fmt.Errorf("cache init: %w", err)
	}
	return nil
}

// Load returns the cached collection. A missing entry is an empty collection.
func (c *Cache) Load(ctx context.Context) ([]model.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *Cache) Replace(ctx context.Context, tasks []model.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend.Save(ctx, clone(tasks))
}

// Update applies fn to the cached collection and stores the result.
func (c *Cache) Update(ctx context.Context, fn func([]model.Task) []model.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tasks, err := c.load(ctx)
	if err != nil {
		return err
	}
	return c.backend.Save(ctx, fn(tasks))
}

func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend.Clear(ctx)
}

func (c *Cache) Close() error {
	return c.backend.Close()
}

func (c *Cache) load(ctx context.Context) ([]model.Task, error) {
	tasks, err := c.backend.Load(ctx)
	if errors.Is(err, ErrEmpty) {
		return []model.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache load: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// Remove filters id out of tasks.
func Remove(id int64) func([]model.Task) []model.Task {
	return func(tasks []model.Task) []model.Task {
		return slices.DeleteFunc(tasks, func(t model.Task) bool { return t.ID == id })
	}
}

// Put replaces the task with the same id in place, or appends it.
func Put(task model.Task) func([]model.Task) []model.Task {
	return func(tasks []model.Task) []model.Task {
		for i := range tasks {
			if tasks[i].ID == task.ID {
				tasks[i] = task
				return tasks
			}
		}
		return append(tasks, task)
	}
}

// SetStatus patches status of the cached copy; unknown ids are left alone.
func SetStatus(id int64, status int) func([]model.Task) []model.Task {
	return func(tasks []model.Task) []model.Task {
		for i := range tasks {
			if tasks[i].ID == id {
				tasks[i].Status = status
			}
		}
		return tasks
	}
}

func clone(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
