package repo

import (
	"context"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

// TodoRepository определяет интерфейс хранилища коллекции /todos
type TodoRepository interface {
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id int64) (model.Task, error)
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Replace(ctx context.Context, t model.Task) (model.Task, error)
	Patch(ctx context.Context, id int64, p Patch) (model.Task, error)
	Delete(ctx context.Context, id int64) error
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Task        *string         `json:"task"`
	Username    *string         `json:"username"`
	Date        *string         `json:"date"`
	TaskType    *model.TaskType `json:"task_type"`
	Status      *int            `json:"status"`
	Priority    *model.Priority `json:"priority"`
	Description *string         `json:"description"`
}

func (p Patch) Apply(t model.Task) model.Task {
	if p.Task != nil {
		t.Task = *p.Task
	}
	if p.Username != nil {
		t.Username = *p.Username
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.TaskType != nil {
		t.TaskType = *p.TaskType
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = model.Ptr(*p.Priority)
	}
	if p.Description != nil {
		t.Description = model.Ptr(*p.Description)
	}
	return t
}
