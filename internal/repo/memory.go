package repo

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

// ErrInvalid is returned for records the store refuses, e.g. status outside {0,1}.
var ErrInvalid = errors.New("invalid record")

// MemoryRepo - хранилище в памяти для локального запуска и тестов
type MemoryRepo struct {
	mu    sync.Mutex
	tasks []model.Task
}

func NewMemoryRepo(seed ...model.Task) *MemoryRepo {
	r := &MemoryRepo{tasks: make([]model.Task, 0, len(seed))}
	for _, t := range seed {
		r.tasks = append(r.tasks, t.Clone())
	}
	return r
}

func (r *MemoryRepo) List(ctx context.Context) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Task, len(r.tasks))
	for i, t := range r.tasks {
		out[i] = t.Clone()
	}
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id int64) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return model.Task{}, ErrorNotFound
	}
	return r.tasks[i].Clone(), nil
}

func (r *MemoryRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	if !model.ValidStatus(t.Status) {
		return model.Task{}, ErrInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t = t.Clone().Normalize()
	if t.ID == 0 {
		t.ID = model.MaxID(r.tasks) + 1
	}
	if r.index(t.ID) >= 0 {
		return model.Task{}, ErrorConflict
	}
	r.tasks = append(r.tasks, t)
	return t.Clone(), nil
}

func (r *MemoryRepo) Replace(ctx context.Context, t model.Task) (model.Task, error) {
	if !model.ValidStatus(t.Status) {
		return model.Task{}, ErrInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(t.ID)
	if i < 0 {
		return model.Task{}, ErrorNotFound
	}
	r.tasks[i] = t.Clone().Normalize()
	return r.tasks[i].Clone(), nil
}

func (r *MemoryRepo) Patch(ctx context.Context, id int64, p Patch) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return model.Task{}, ErrorNotFound
	}
	t := p.Apply(r.tasks[i].Clone())
	if !model.ValidStatus(t.Status) {
		return model.Task{}, ErrInvalid
	}
	r.tasks[i] = t
	return t.Clone(), nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return ErrorNotFound
	}
	r.tasks = slices.Delete(r.tasks, i, i+1)
	return nil
}

func (r *MemoryRepo) index(id int64) int {
	return slices.IndexFunc(r.tasks, func(t model.Task) bool { return t.ID == id })
}
