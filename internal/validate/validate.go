// Package validate checks a task draft before it may be persisted.
package validate

import (
	"regexp"
	"strings"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

const (
	MsgTaskRequired     = "Task description is required"
	MsgUsernameRequired = "Username is required"
	MsgDateFormat       = "Enter date in DD-MMM-YYYY format (e.g. 12-May-2025)"
)

// Только формат, без проверки календаря: 31-Feb-2025 проходит
var datePattern = regexp.MustCompile(`(?i)^(0?[1-9]|[12][0-9]|3[01])-(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)-\d{4}$`)

// Errors maps a field name to its message. Empty means the task may be persisted.
type Errors map[string]string

func (v Errors) OK() bool {
	return len(v) == 0
}

// Task checks task, username and date. Priority and task type are not checked.
func Task(t model.Task) Errors {
	errs := Errors{}

	if strings.TrimSpace(t.Task) == "" {
		errs["task"] = MsgTaskRequired
	}
	if strings.TrimSpace(t.Username) == "" {
		errs["username"] = MsgUsernameRequired
	}
	if !Date(t.Date) {
		errs["date"] = MsgDateFormat
	}

	return errs
}

func Date(s string) bool {
	return datePattern.MatchString(s)
}
