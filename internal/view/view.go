// Package view derives the visible page of tasks from the full collection:
// filter by search term, stable sort, then paginate.
package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

const DefaultPageSize = 5

type SortKey string

const (
	SortNone     SortKey = ""
	SortTask     SortKey = "task"
	SortUsername SortKey = "username"
	SortDate     SortKey = "date"
	SortTaskType SortKey = "task_type"
	SortPriority SortKey = "priority"
)

// SortKeys are the sortable columns in display order.
var SortKeys = []SortKey{SortTask, SortUsername, SortDate, SortTaskType, SortPriority}

func ParseSortKey(s string) (SortKey, bool) {
	if s == "" {
		return SortNone, true
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, true
		}
	}
	return SortNone, false
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type Sort struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// Toggle selects key: the same key flips direction, a new key starts ascending.
func (s Sort) Toggle(key SortKey) Sort {
	if s.Key == key && s.Direction != Desc {
		return Sort{Key: key, Direction: Desc}
	}
	return Sort{Key: key, Direction: Asc}
}

type State struct {
	Search   string `json:"search"`
	Sort     Sort   `json:"sort"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

func NewState(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{Sort: Sort{Direction: Asc}, Page: 1, PageSize: pageSize}
}

// Page is the visible slice. From and To are 1-based and both 0 when Total is 0.
type Page struct {
	Tasks      []model.Task `json:"tasks"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	From       int          `json:"from"`
	To         int          `json:"to"`
	Total      int          `json:"total"`
}

// Compute returns the page described by st. The requested page is clamped to
// [1, max(TotalPages, 1)]; TotalPages is 0 for an empty result.
func Compute(tasks []model.Task, st State) Page {
	size := st.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	sorted := Sorted(Filter(tasks, st.Search), st.Sort)

	total := len(sorted)
	totalPages := (total + size - 1) / size
	page := Clamp(st.Page, totalPages)

	start := min((page-1)*size, total)
	end := min(page*size, total)

	p := Page{
		Tasks:      slices.Clone(sorted[start:end]),
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}
	if total > 0 {
		p.From = start + 1
		p.To = end
	}
	return p
}

// Clamp keeps page inside [1, max(totalPages, 1)].
func Clamp(page, totalPages int) int {
	return max(1, min(page, max(totalPages, 1)))
}

// Filter keeps tasks where any searchable field contains term, ignoring case.
func Filter(tasks []model.Task, term string) []model.Task {
	q := strings.ToLower(term)
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, q) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t model.Task, q string) bool {
	fields := []string{t.Task, t.Username, string(t.TaskType), t.Date}
	if t.Description != nil {
		fields = append(fields, *t.Description)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Sorted returns a stably sorted copy. Ties keep their input order in both directions.
func Sorted(tasks []model.Task, s Sort) []model.Task {
	out := slices.Clone(tasks)
	if s.Key == SortNone {
		return out
	}

	sign := 1
	if s.Direction == Desc {
		sign = -1
	}
	slices.SortStableFunc(out, func(a, b model.Task) int {
		return sign * compare(a, b, s.Key)
	})
	return out
}

// compare orders string keys by bytes. Priority is the exception: it orders by
// rank (Low < Medium < High, absent as Low), not by its string value.
func compare(a, b model.Task, key SortKey) int {
	switch key {
	case SortTask:
		return strings.Compare(a.Task, b.Task)
	case SortUsername:
		return strings.Compare(a.Username, b.Username)
	case SortDate:
		return strings.Compare(a.Date, b.Date)
	case SortTaskType:
		return strings.Compare(string(a.TaskType), string(b.TaskType))
	case SortPriority:
		return cmp.Compare(a.PriorityOrDefault().Rank(), b.PriorityOrDefault().Rank())
	}
	return 0
}
