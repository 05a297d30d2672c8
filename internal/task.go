package internal

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DueDateLayout is the only accepted due date format, YYYY-MM-DD.
const DueDateLayout = "2006-01-02"

// Priority indicates how important a Task is.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank returns the sort rank of the priority, unknown values rank as Medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	}

	return 1
}

// Task is an activity owned by a single user.
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     string
	Completed   bool
	Priority    Priority
	Tags        []string
	UserID      int64
}

// HasTag reports whether the task carries exactly tag.
func (t Task) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if v == tag {
			return true
		}
	}

	return false
}

// TaskParams defines the user editable fields of a Task, used for creating and updating.
type TaskParams struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     string   `json:"due_date"`
	Priority    Priority `json:"priority"`
	Tags        []string `json:"tags"`
}

// NewTaskParams normalizes raw form values into TaskParams.
func NewTaskParams(title, description, dueDate, tags, priority string) TaskParams {
	return TaskParams{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		DueDate:     strings.TrimSpace(dueDate),
		Priority:    Priority(priority),
		Tags:        ParseTags(tags),
	}
}

// Validate indicates whether the fields are valid.
func (p TaskParams) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Title,
			validation.Required.Error("Title is required!")),
		validation.Field(&p.DueDate,
			validation.Date(DueDateLayout).Error("Invalid date format. Use YYYY-MM-DD.")),
		validation.Field(&p.Priority,
			validation.Required.Error("Invalid priority. Choose High, Medium, or Low."),
			validation.In(PriorityHigh, PriorityMedium, PriorityLow).Error("Invalid priority. Choose High, Medium, or Low.")),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "invalid values")
	}

	return nil
}

// ParseTags splits comma separated tags, surrounding whitespace and empty elements are dropped.
func ParseTags(s string) []string {
	res := []string{}

	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			res = append(res, tag)
		}
	}

	return res
}

// JoinTags is the inverse of ParseTags, used by stores and forms holding tags as text.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
