package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/validate"
)

func fixedID(id int64) IDFunc {
	return func() int64 { return id }
}

func fill(t *testing.T, e *Editor, fields map[string]string) {
	t.Helper()
	for k, v := range fields {
		require.NoError(t, e.SetField(k, v))
	}
}

func TestEditor_CreateFlow(t *testing.T) {
	e := New(fixedID(42))
	assert.Equal(t, ModeCreate, e.Mode())
	assert.Equal(t, model.TaskTypeOffice, e.Draft().TaskType)

	fill(t, e, map[string]string{"task": "Buy milk", "username": "alice", "date": "12-May-2025", "status": "1"})

	in, ok := e.Submit()
	require.True(t, ok)
	assert.Equal(t, IntentCreate, in.Kind)
	assert.Equal(t, int64(42), in.Task.ID)
	assert.Equal(t, model.StatusPending, in.Task.Status, "new tasks always start pending")
	assert.Equal(t, model.TaskTypeOffice, in.Task.TaskType)

	assert.Equal(t, ModeCreate, e.Mode())
	assert.Equal(t, emptyDraft(), e.Draft())
	assert.Empty(t, e.Errors())
}

func TestEditor_SubmitInvalidKeepsDraft(t *testing.T) {
	e := New(fixedID(1))
	fill(t, e, map[string]string{"task": "  ", "username": "bob", "date": "May 12"})

	_, ok := e.Submit()
	require.False(t, ok)

	errs := e.Errors()
	assert.Equal(t, validate.MsgTaskRequired, errs["task"])
	assert.Equal(t, validate.MsgDateFormat, errs["date"])
	assert.NotContains(t, errs, "username")
	assert.Equal(t, "bob", e.Draft().Username)

	// ошибки пересчитываются только при следующей отправке
	fill(t, e, map[string]string{"task": "Fixed", "date": "12-May-2025"})
	assert.Len(t, e.Errors(), 2)

	_, ok = e.Submit()
	assert.True(t, ok)
	assert.Empty(t, e.Errors())
}

func TestEditor_EditFlow(t *testing.T) {
	existing := model.Task{
		ID: 7, Task: "Report", Username: "carol", Date: "1-Jun-2025",
		TaskType: model.TaskTypeFamily, Status: 1, Priority: model.Ptr(model.PriorityHigh),
	}

	e := New(fixedID(99))
	e.Edit(existing)
	assert.Equal(t, ModeEdit, e.Mode())
	assert.Equal(t, int64(7), e.Target())
	assert.Equal(t, existing, e.Draft())

	fill(t, e, map[string]string{"task": "Report v2"})
	in, ok := e.Submit()
	require.True(t, ok)

	assert.Equal(t, IntentUpdate, in.Kind)
	assert.Equal(t, int64(7), in.Task.ID)
	assert.Equal(t, "Report v2", in.Task.Task)
	assert.Equal(t, 1, in.Task.Status, "edit keeps status")
	assert.Equal(t, model.PriorityHigh, in.Task.PriorityOrDefault())
	assert.Equal(t, ModeCreate, e.Mode())
}

func TestEditor_EditDraftIsIsolated(t *testing.T) {
	existing := model.Task{ID: 1, Description: model.Ptr("orig")}
	e := New(nil)
	e.Edit(existing)

	require.NoError(t, e.SetField("description", "changed"))

	assert.Equal(t, "orig", *existing.Description)
}

func TestEditor_Cancel(t *testing.T) {
	e := New(nil)
	assert.ErrorIs(t, e.Cancel(), ErrNotEditing)

	e.Edit(model.Task{ID: 3, Task: "x"})
	require.NoError(t, e.Cancel())
	assert.Equal(t, ModeCreate, e.Mode())
	assert.Equal(t, emptyDraft(), e.Draft())
}

func TestEditor_SetDraftKeepsTarget(t *testing.T) {
	e := New(nil)
	e.Edit(model.Task{ID: 3})
	require.NoError(t, e.SetDraft(model.Task{ID: 100, Task: "other"}))

	assert.Equal(t, int64(3), e.Draft().ID)
	assert.Equal(t, "other", e.Draft().Task)
}

func TestEditor_SetField(t *testing.T) {
	e := New(nil)

	assert.ErrorIs(t, e.SetField("color", "red"), ErrUnknownField)
	assert.ErrorIs(t, e.SetField("status", "2"), ErrUnknownField)
	assert.ErrorIs(t, e.SetField("priority", "urgent"), ErrUnknownField)

	require.NoError(t, e.SetField("priority", "medium"))
	assert.Equal(t, model.PriorityMedium, *e.Draft().Priority)

	require.NoError(t, e.SetField("priority", ""))
	assert.Nil(t, e.Draft().Priority)
}

func TestEditor_Forget(t *testing.T) {
	e := New(nil)
	e.Edit(model.Task{ID: 5})

	assert.False(t, e.Forget(6))
	assert.Equal(t, ModeEdit, e.Mode())

	assert.True(t, e.Forget(5))
	assert.Equal(t, ModeCreate, e.Mode())
}

func TestEditor_SetDraftRejectsOutOfRange(t *testing.T) {
	existing := model.Task{ID: 1, Task: "Buy milk", Username: "alice", Date: "12-May-2025", TaskType: model.TaskTypePersonal}

	tests := []struct {
		name  string
		draft model.Task
	}{
		{name: "status 7", draft: model.Task{Task: "x", Username: "y", Date: "1-Jan-2025", Status: 7}},
		{name: "negative status", draft: model.Task{Task: "x", Username: "y", Date: "1-Jan-2025", Status: -1}},
		{name: "unknown task type", draft: model.Task{Task: "x", Username: "y", Date: "1-Jan-2025", TaskType: "Bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(fixedID(9))
			e.Edit(existing)

			assert.ErrorIs(t, e.SetDraft(tt.draft), ErrInvalidValue)
			assert.Equal(t, existing, e.Draft())

			in, ok := e.Submit()
			require.True(t, ok)
			assert.Equal(t, IntentUpdate, in.Kind)
			assert.Equal(t, model.StatusPending, in.Task.Status)
			assert.Equal(t, model.TaskTypePersonal, in.Task.TaskType)
		})
	}
}

func TestEditor_SetDraftEmptyTaskTypeDefaults(t *testing.T) {
	e := New(fixedID(9))
	require.NoError(t, e.SetDraft(model.Task{Task: "x", Username: "y", Date: "1-Jan-2025"}))

	in, ok := e.Submit()
	require.True(t, ok)
	assert.Equal(t, model.TaskTypeOffice, in.Task.TaskType)
}

func TestEditor_SetFieldsAllOrNothing(t *testing.T) {
	e := New(nil)
	before := e.Draft()

	err := e.SetFields(map[string]string{"task": "Buy milk", "username": "alice", "task_type": "Bogus", "date": "12-May-2025"})
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, before, e.Draft(), "no field applied when one is bad")

	err = e.SetFields(map[string]string{"task": "Buy milk", "priority": "urgent"})
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, before, e.Draft())

	require.NoError(t, e.SetFields(map[string]string{"task": "Buy milk", "task_type": "Friends"}))
	assert.Equal(t, "Buy milk", e.Draft().Task)
	assert.Equal(t, model.TaskTypeFriends, e.Draft().TaskType)
}
