// Package editor holds the task form: a draft, its validation errors, and
// whether it creates a new task or edits an existing one.
package editor

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/validate"
)

var (
	ErrNotEditing   = errors.New("editor is not in edit mode")
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid field value")
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

type IntentKind string

const (
	IntentCreate IntentKind = "create"
	IntentUpdate IntentKind = "update"
)

// Intent is what a successful submit asks the board to persist.
type Intent struct {
	Kind IntentKind `json:"kind"`
	Task model.Task `json:"task"`
}

// IDFunc generates the id for a new task.
type IDFunc func() int64

// TimeIDs выдает id по времени, как форма в браузере
func TimeIDs() int64 {
	return time.Now().UnixMilli()
}

type Editor struct {
	mode   Mode
	target int64
	draft  model.Task
	errs   validate.Errors
	nextID IDFunc
}

func New(nextID IDFunc) *Editor {
	if nextID == nil {
		nextID = TimeIDs
	}
	e := &Editor{nextID: nextID}
	e.reset()
	return e
}

func emptyDraft() model.Task {
	return model.Task{TaskType: model.TaskTypeOffice, Status: model.StatusPending}
}

func (e *Editor) reset() {
	e.mode = ModeCreate
	e.target = 0
	e.draft = emptyDraft()
	e.errs = validate.Errors{}
}

func (e *Editor) Mode() Mode { return e.mode }

// Target returns the id being edited, or 0 in create mode.
func (e *Editor) Target() int64 { return e.target }

func (e *Editor) Draft() model.Task { return e.draft.Clone() }

func (e *Editor) Errors() validate.Errors {
	out := make(validate.Errors, len(e.errs))
	for k, v := range e.errs {
		out[k] = v
	}
	return out
}

// Edit loads t verbatim into the draft and switches to edit mode.
func (e *Editor) Edit(t model.Task) {
	e.mode = ModeEdit
	e.target = t.ID
	e.draft = t.Clone()
	e.errs = validate.Errors{}
}

// SetDraft replaces the draft. In edit mode the target id is kept. A draft
// with a status outside {0,1} or an unknown task type is refused and the
// current draft stays as it was.
func (e *Editor) SetDraft(t model.Task) error {
	if !model.ValidStatus(t.Status) {
		return fmt.Errorf("status %d: %w", t.Status, ErrInvalidValue)
	}
	if t.TaskType != "" && !model.ValidTaskType(t.TaskType) {
		return fmt.Errorf("task_type %q: %w", t.TaskType, ErrInvalidValue)
	}

	e.draft = t.Clone()
	if e.mode == ModeEdit {
		e.draft.ID = e.target
	}
	return nil
}

// SetFields applies several fields at once. Either all of them are applied or,
// on the first bad one, none are.
func (e *Editor) SetFields(fields map[string]string) error {
	saved := e.draft.Clone()
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if err := e.SetField(name, fields[name]); err != nil {
			e.draft = saved
			return err
		}
	}
	return nil
}

// SetField updates one form field. Validation errors are left as they are
// until the next submit.
func (e *Editor) SetField(name, value string) error {
	switch name {
	case "task":
		e.draft.Task = value
	case "username":
		e.draft.Username = value
	case "date":
		e.draft.Date = value
	case "task_type":
		tt := model.TaskType(value)
		if value != "" && !model.ValidTaskType(tt) {
			return fmt.Errorf("task_type %q: %w", value, ErrUnknownField)
		}
		e.draft.TaskType = tt
	case "description":
		if value == "" {
			e.draft.Description = nil
		} else {
			e.draft.Description = model.Ptr(value)
		}
	case "priority":
		if value == "" {
			e.draft.Priority = nil
			return nil
		}
		p, ok := model.ParsePriority(value)
		if !ok {
			return fmt.Errorf("priority %q: %w", value, ErrUnknownField)
		}
		e.draft.Priority = model.Ptr(p)
	case "status":
		s, err := strconv.Atoi(value)
		if err != nil || !model.ValidStatus(s) {
			return fmt.Errorf("status %q: %w", value, ErrUnknownField)
		}
		e.draft.Status = s
	default:
		return fmt.Errorf("%s: %w", name, ErrUnknownField)
	}
	return nil
}

// Submit validates the draft. On success it returns the intent and resets to
// an empty create form; on failure the errors stay attached to the draft.
func (e *Editor) Submit() (Intent, bool) {
	e.errs = validate.Task(e.draft)
	if !e.errs.OK() {
		return Intent{}, false
	}

	t := e.draft.Clone().Normalize()
	var in Intent
	if e.mode == ModeEdit {
		t.ID = e.target
		in = Intent{Kind: IntentUpdate, Task: t}
	} else {
		t.ID = e.nextID()
		t.Status = model.StatusPending
		in = Intent{Kind: IntentCreate, Task: t}
	}

	e.reset()
	return in, true
}

// Cancel discards the draft. Only valid in edit mode.
func (e *Editor) Cancel() error {
	if e.mode != ModeEdit {
		return ErrNotEditing
	}
	e.reset()
	return nil
}

// Forget leaves edit mode if id is the task being edited, e.g. after a delete.
func (e *Editor) Forget(id int64) bool {
	if e.mode == ModeEdit && e.target == id {
		e.reset()
		return true
	}
	return false
}
