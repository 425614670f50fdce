package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/editor"
	"github.com/BuzzLyutic/taskboard/internal/gateway"
	"github.com/BuzzLyutic/taskboard/internal/keylock"
	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/validate"
	"github.com/BuzzLyutic/taskboard/internal/view"
)

var (
	ErrUnknownTask = errors.New("no such task on the board")
	ErrBadPage     = errors.New("unknown page navigation")
)

// Сообщения баннера об ошибке
const (
	BannerAddFailed    = "Failed to add task"
	BannerUpdateFailed = "Failed to update task"
	BannerMissing      = "Task no longer exists"
	BannerDeleteFailed = "Delete failed"
	BannerStatusFailed = "Status update failed"
)

// TaskGateway определяет интерфейс для работы с удаленным хранилищем
type TaskGateway interface {
	List(ctx context.Context) ([]model.Task, gateway.Source)
	Remove(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status int) (model.Task, error)
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
}

type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

type EditorState struct {
	Mode   editor.Mode     `json:"mode"`
	Target int64           `json:"target,omitempty"`
	Draft  model.Task      `json:"draft"`
	Errors validate.Errors `json:"errors"`
}

// Snapshot is everything a UI needs to render the board at one instant.
type Snapshot struct {
	View   view.Page   `json:"view"`
	State  view.State  `json:"state"`
	Stats  Stats       `json:"stats"`
	Editor EditorState `json:"editor"`
	Banner string      `json:"banner,omitempty"`
	Source string      `json:"source"`
}

// Board owns the canonical task collection. The collection only changes after
// the gateway confirms a mutation.
type Board struct {
	gw     TaskGateway
	logger *zap.Logger
	locks  *keylock.Locker

	mu       sync.Mutex
	tasks    []model.Task
	editor   *editor.Editor
	state    view.State
	banner   string
	source   gateway.Source
	reserved int64
}

func NewBoard(gw TaskGateway, logger *zap.Logger, pageSize int) *Board {
	b := &Board{
		gw:     gw,
		logger: logger,
		locks:  keylock.New(),
		tasks:  []model.Task{},
		state:  view.NewState(pageSize),
	}
	b.editor = editor.New(b.nextID)
	return b
}

// nextID is max(id)+1, never reusing an id handed out to a create still in flight.
// Called with b.mu held.
func (b *Board) nextID() int64 {
	id := max(model.MaxID(b.tasks), b.reserved) + 1
	b.reserved = id
	return id
}

// Load replaces the collection with whatever the gateway lists.
func (b *Board) Load(ctx context.Context) gateway.Source {
	tasks, src := b.gw.List(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = tasks
	b.source = src
	b.logger.Info("board loaded", zap.Int("tasks", len(tasks)), zap.Stringer("source", src))
	return src
}

// Submit validates the editor draft and persists it. Validation problems are
// returned as data with a nil error.
func (b *Board) Submit(ctx context.Context) (validate.Errors, error) {
	b.mu.Lock()
	intent, ok := b.editor.Submit()
	errs := b.editor.Errors()
	b.mu.Unlock()

	if !ok {
		return errs, nil
	}

	switch intent.Kind {
	case editor.IntentCreate:
		return nil, b.create(ctx, intent.Task)
	default:
		return nil, b.update(ctx, intent.Task)
	}
}

func (b *Board) create(ctx context.Context, t model.Task) error {
	created, err := b.gw.Create(ctx, t)
	if err != nil {
		b.fail(BannerAddFailed, err)
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = append(b.tasks, created)
	return nil
}

func (b *Board) update(ctx context.Context, t model.Task) error {
	updated, err := b.gw.Update(ctx, t)
	if err != nil {
		if gateway.OutcomeOf(err) == gateway.OutcomeNotFound {
			b.fail(BannerMissing, err)
		} else {
			b.fail(BannerUpdateFailed, err)
		}
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(updated.ID); i >= 0 {
		b.tasks[i] = updated
	}
	return nil
}

// Delete removes id remotely and then from the board.
func (b *Board) Delete(ctx context.Context, id int64) error {
	unlock, err := b.locks.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if err := b.gw.Remove(ctx, id); err != nil {
		b.fail(BannerDeleteFailed, err)
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = slices.DeleteFunc(b.tasks, func(t model.Task) bool { return t.ID == id })
	b.editor.Forget(id)
	return nil
}

// ToggleStatus flips id between pending and completed. Toggles of the same id
// run one after another so each sees the previous result.
func (b *Board) ToggleStatus(ctx context.Context, id int64) (int, error) {
	unlock, err := b.locks.Lock(ctx, id)
	if err != nil {
		return 0, err
	}
	defer unlock()

	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return 0, fmt.Errorf("toggle %d: %w", id, ErrUnknownTask)
	}
	next := model.ToggleStatus(b.tasks[i].Status)
	b.mu.Unlock()

	if _, err := b.gw.SetStatus(ctx, id, next); err != nil {
		b.fail(BannerStatusFailed, err)
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(id); i >= 0 {
		b.tasks[i].Status = next
	}
	return next, nil
}

// Edit loads id into the editor.
func (b *Board) Edit(id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return fmt.Errorf("edit %d: %w", id, ErrUnknownTask)
	}
	b.editor.Edit(b.tasks[i])
	return nil
}

func (b *Board) Cancel() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.editor.Cancel()
}

func (b *Board) SetDraft(t model.Task) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.editor.SetDraft(t)
}

// SetFields sets several form fields; nothing changes if any of them is bad.
func (b *Board) SetFields(fields map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.editor.SetFields(fields)
}

func (b *Board) SetSearch(term string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Search = term
}

func (b *Board) ToggleSort(key view.SortKey) view.Sort {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Sort = b.state.Sort.Toggle(key)
	return b.state.Sort
}

func (b *Board) SetSort(s view.Sort) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Sort = s
}

// SetPage moves to page, clamped to the pages that currently exist.
func (b *Board) SetPage(page int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Page = view.Clamp(page, view.Compute(b.tasks, b.state).TotalPages)
	return b.state.Page
}

// Navigate handles the pager buttons: first, prev, next, last.
func (b *Board) Navigate(to string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := view.Compute(b.tasks, b.state)
	switch to {
	case "first":
		b.state.Page = 1
	case "prev":
		b.state.Page = view.Clamp(p.Page-1, p.TotalPages)
	case "next":
		b.state.Page = view.Clamp(p.Page+1, p.TotalPages)
	case "last":
		b.state.Page = view.Clamp(p.TotalPages, p.TotalPages)
	default:
		return p.Page, fmt.Errorf("%q: %w", to, ErrBadPage)
	}
	return b.state.Page, nil
}

func (b *Board) View() view.Page {
	b.mu.Lock()
	defer b.mu.Unlock()
	return view.Compute(b.tasks, b.state)
}

// Query computes a page for st without touching the board's own UI state.
func (b *Board) Query(st view.State) view.Page {
	b.mu.Lock()
	defer b.mu.Unlock()
	return view.Compute(b.tasks, st)
}

func (b *Board) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats()
}

func (b *Board) stats() Stats {
	s := Stats{Total: len(b.tasks)}
	for _, t := range b.tasks {
		if t.Completed() {
			s.Completed++
		} else {
			s.Pending++
		}
	}
	return s
}

func (b *Board) Tasks() []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]model.Task, len(b.tasks))
	for i, t := range b.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (b *Board) Banner() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.banner
}

func (b *Board) DismissBanner() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.banner = ""
}

func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Snapshot{
		View:  view.Compute(b.tasks, b.state),
		State: b.state,
		Stats: b.stats(),
		Editor: EditorState{
			Mode:   b.editor.Mode(),
			Target: b.editor.Target(),
			Draft:  b.editor.Draft(),
			Errors: b.editor.Errors(),
		},
		Banner: b.banner,
		Source: b.source.String(),
	}
}

func (b *Board) fail(banner string, err error) {
	b.logger.Error(banner, zap.Error(err))

	b.mu.Lock()
	defer b.mu.Unlock()
	b.banner = banner
}

func (b *Board) indexOf(id int64) int {
	return slices.IndexFunc(b.tasks, func(t model.Task) bool { return t.ID == id })
}
