package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

func validTask() model.Task {
	return model.Task{Task: "Buy milk", Username: "alice", Date: "12-May-2025", TaskType: model.TaskTypeOffice}
}

func TestTask(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*model.Task)
		wantFields []string
	}{
		{
			name:   "valid task",
			mutate: func(*model.Task) {},
		},
		{
			name:       "empty task",
			mutate:     func(t *model.Task) { t.Task = "" },
			wantFields: []string{"task"},
		},
		{
			name:       "whitespace task",
			mutate:     func(t *model.Task) { t.Task = " \t\n" },
			wantFields: []string{"task"},
		},
		{
			name:       "whitespace username",
			mutate:     func(t *model.Task) { t.Username = "   " },
			wantFields: []string{"username"},
		},
		{
			name:       "bad date",
			mutate:     func(t *model.Task) { t.Date = "2025-05-12" },
			wantFields: []string{"date"},
		},
		{
			name: "everything missing",
			mutate: func(t *model.Task) {
				*t = model.Task{}
			},
			wantFields: []string{"task", "username", "date"},
		},
		{
			name: "priority and type are not checked",
			mutate: func(t *model.Task) {
				t.TaskType = "Whatever"
				t.Priority = model.Ptr(model.Priority("Urgent"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := validTask()
			tt.mutate(&task)

			errs := Task(task)

			assert.Len(t, errs, len(tt.wantFields))
			for _, f := range tt.wantFields {
				assert.Contains(t, errs, f)
			}
			assert.Equal(t, len(tt.wantFields) == 0, errs.OK())
		})
	}
}

func TestTask_Messages(t *testing.T) {
	errs := Task(model.Task{})

	assert.Equal(t, MsgTaskRequired, errs["task"])
	assert.Equal(t, MsgUsernameRequired, errs["username"])
	assert.Equal(t, MsgDateFormat, errs["date"])
}

func TestDate(t *testing.T) {
	valid := []string{
		"12-May-2025",
		"1-jan-2024",
		"01-JAN-2024",
		"31-Dec-1999",
		"31-Feb-2025", // формат верный, календарь не проверяется
		"9-sEp-0000",
	}
	for _, d := range valid {
		assert.True(t, Date(d), d)
	}

	invalid := []string{
		"",
		"0-May-2025",
		"32-May-2025",
		"12-Mayo-2025",
		"12-May-25",
		"12-May-20255",
		"12/May/2025",
		" 12-May-2025",
		"12-May-2025 ",
		"001-May-2025",
	}
	for _, d := range invalid {
		assert.False(t, Date(d), d)
		assert.Contains(t, Task(model.Task{Task: "x", Username: "y", Date: d}), "date")
	}
}
