package model

import (
	"slices"
	"strings"
)

// Статусы задачи: только 0 и 1
const (
	StatusPending   = 0
	StatusCompleted = 1
)

type TaskType string

const (
	TaskTypeOffice   TaskType = "Office"
	TaskTypePersonal TaskType = "Personal"
	TaskTypeFamily   TaskType = "Family"
	TaskTypeFriends  TaskType = "Friends"
	TaskTypeOther    TaskType = "Other"
)

// TaskTypes in the order the editor offers them.
var TaskTypes = []TaskType{TaskTypeOffice, TaskTypePersonal, TaskTypeFamily, TaskTypeFriends, TaskTypeOther}

// ValidTaskType reports whether t is one of TaskTypes.
func ValidTaskType(t TaskType) bool {
	return slices.Contains(TaskTypes, t)
}

// Palette is the display color set for a task type badge.
type Palette struct {
	Bg     string `json:"bg"`
	Text   string `json:"text"`
	Border string `json:"border"`
}

var palettes = map[TaskType]Palette{
	TaskTypeOffice:   {Bg: "bg-blue-100", Text: "text-blue-800", Border: "border-blue-200"},
	TaskTypePersonal: {Bg: "bg-green-100", Text: "text-green-800", Border: "border-green-200"},
	TaskTypeFamily:   {Bg: "bg-yellow-100", Text: "text-yellow-800", Border: "border-yellow-200"},
	TaskTypeFriends:  {Bg: "bg-purple-100", Text: "text-purple-800", Border: "border-purple-200"},
	TaskTypeOther:    {Bg: "bg-gray-100", Text: "text-gray-800", Border: "border-gray-200"},
}

// Palette returns the badge colors, falling back to a neutral gray for unknown types.
func (t TaskType) Palette() Palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return Palette{Bg: "bg-gray-200", Text: "text-gray-700", Border: "border-gray-200"}
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank orders priorities Low < Medium < High. Unknown values rank as Low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

func ParsePriority(s string) (Priority, bool) {
	for _, p := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		if strings.EqualFold(string(p), s) {
			return p, true
		}
	}
	return "", false
}

type Task struct {
	ID          int64     `json:"id"`
	Task        string    `json:"task"`
	Username    string    `json:"username"`
	Date        string    `json:"date"`
	TaskType    TaskType  `json:"task_type"`
	Status      int       `json:"status"`
	Priority    *Priority `json:"priority,omitempty"`
	Description *string   `json:"description,omitempty"`
}

// PriorityOrDefault возвращает приоритет, отсутствующий считается Low
func (t Task) PriorityOrDefault() Priority {
	if t.Priority == nil || *t.Priority == "" {
		return PriorityLow
	}
	return *t.Priority
}

func (t Task) DescriptionOrEmpty() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// Normalize applies boundary defaults: an empty task type becomes Office.
func (t Task) Normalize() Task {
	if t.TaskType == "" {
		t.TaskType = TaskTypeOffice
	}
	return t
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.Priority != nil {
		p := *t.Priority
		t.Priority = &p
	}
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	return t
}

func ValidStatus(status int) bool {
	return status == StatusPending || status == StatusCompleted
}

// ToggleStatus flips between pending and completed.
func ToggleStatus(status int) int {
	if status == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// MaxID returns the largest id in tasks, or 0.
func MaxID(tasks []Task) int64 {
	var id int64
	for _, t := range tasks {
		if t.ID > id {
			id = t.ID
		}
	}
	return id
}

func Ptr[T any](v T) *T {
	return &v
}
