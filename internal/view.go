package internal

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sort identifies how a task list is ordered.
type Sort string

const (
	SortDefault  Sort = "default"
	SortDue      Sort = "due"
	SortTitle    Sort = "title"
	SortStatus   Sort = "status"
	SortPriority Sort = "priority"
)

// ParseSort converts a query value into a Sort, unknown values mean SortDefault.
func ParseSort(s string) Sort {
	switch v := Sort(s); v {
	case SortDue, SortTitle, SortStatus, SortPriority:
		return v
	}

	return SortDefault
}

// ViewParams holds the optional filters and sort applied to a task list.
type ViewParams struct {
	Tag    string
	Search string
	Sort   Sort
}

// TaskView is a Task annotated with values computed at read time.
type TaskView struct {
	Task
	IsOverdue bool
}

// BuildView filters, sorts and annotates tasks. Tag filtering happens first, then the
// search, then a stable sort; overdue flags are computed against now last.
func BuildView(tasks []Task, params ViewParams, now time.Time) []TaskView {
	lower := cases.Lower(language.Und)

	res := make([]Task, 0, len(tasks))

	for _, task := range tasks {
		if params.Tag != "" && !task.HasTag(params.Tag) {
			continue
		}

		res = append(res, task)
	}

	if query := lower.String(params.Search); query != "" {
		found := res[:0]

		for _, task := range res {
			if strings.Contains(lower.String(task.Title), query) ||
				strings.Contains(lower.String(task.Description), query) {
				found = append(found, task)
			}
		}

		res = found
	}

	sortTasks(res, params.Sort, lower)

	views := make([]TaskView, len(res))
	for i, task := range res {
		views[i] = TaskView{
			Task:      task,
			IsOverdue: IsOverdue(task, now),
		}
	}

	return views
}

func sortTasks(tasks []Task, by Sort, lower cases.Caser) {
	var less func(a, b Task) bool

	switch by {
	case SortDue:
		less = func(a, b Task) bool { return a.DueDate < b.DueDate }
	case SortTitle:
		titles := make(map[string]string, len(tasks))
		for _, t := range tasks {
			titles[t.Title] = lower.String(t.Title)
		}

		less = func(a, b Task) bool { return titles[a.Title] < titles[b.Title] }
	case SortStatus:
		less = func(a, b Task) bool { return !a.Completed && b.Completed }
	case SortPriority:
		less = func(a, b Task) bool { return a.Priority.Rank() < b.Priority.Rank() }
	default:
		return
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return less(tasks[i], tasks[j])
	})
}

// IsOverdue indicates whether an incomplete task's due date is strictly before now.
// Missing or unparseable due dates are never overdue.
func IsOverdue(task Task, now time.Time) bool {
	if task.Completed || task.DueDate == "" {
		return false
	}

	due, err := time.ParseInLocation(DueDateLayout, task.DueDate, now.Location())
	if err != nil {
		return false
	}

	return due.Before(now)
}
