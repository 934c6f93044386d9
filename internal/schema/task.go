package schema

import (
	"encoding/json"
	"fmt"
)

// TaskList is the list reference embedded in a task.
type TaskList struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Access bool   `json:"access"`
}

// IDElement is an id-only reference embedded in a task (project, folder, space).
type IDElement struct {
	ID string `json:"id"`
}

// Priority is a task priority.
type Priority struct {
	ID         string  `json:"id"`
	Priority   string  `json:"priority"`
	Color      string  `json:"color"`
	OrderIndex FlexInt `json:"orderindex"`
}

// Task is a ClickUp task. Subtasks are tasks with a non-nil Parent.
type Task struct {
	ID          string    `json:"id"`
	CustomID    *string   `json:"custom_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Status      Status    `json:"status"`
	OrderIndex  FlexFloat `json:"orderindex"`
	DateCreated string    `json:"date_created"`
	DateUpdated string    `json:"date_updated"`
	DateClosed  *string   `json:"date_closed"`
	Archived    bool      `json:"archived"`

	Creator   json.RawMessage   `json:"creator"`
	Assignees []json.RawMessage `json:"assignees"`
	Tags      []json.RawMessage `json:"tags"`

	Parent    *string    `json:"parent"`
	Priority  *Priority  `json:"priority"`
	DueDate   *string    `json:"due_date"`
	StartDate *string    `json:"start_date"`
	Points    *FlexFloat `json:"points"`

	// TimeEstimate and TimeSpent are in milliseconds.
	TimeEstimate *int64 `json:"time_estimate"`
	TimeSpent    *int64 `json:"time_spent"`

	CustomFields []CustomFieldValue `json:"custom_fields"`
	Dependencies []json.RawMessage  `json:"dependencies"`
	LinkedTasks  []json.RawMessage  `json:"linked_tasks"`

	TeamID          string `json:"team_id"`
	URL             string `json:"url"`
	PermissionLevel string `json:"permission_level"`

	List    TaskList  `json:"list"`
	Project IDElement `json:"project"`
	Folder  IDElement `json:"folder"`
	Space   IDElement `json:"space"`
}

// Validate checks if the Task has valid field values.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("task %s: name is required", t.ID)
	}
	if err := t.Status.Validate(); err != nil {
		return fmt.Errorf("task %s: %w", t.ID, err)
	}
	if t.DateCreated == "" {
		return fmt.Errorf("task %s: date_created is required", t.ID)
	}
	if t.List.ID == "" {
		return fmt.Errorf("task %s: list is required", t.ID)
	}
	if t.Space.ID == "" {
		return fmt.Errorf("task %s: space is required", t.ID)
	}
	for i := range t.CustomFields {
		if err := t.CustomFields[i].Validate(); err != nil {
			return fmt.Errorf("task %s: custom field %d: %w", t.ID, i, err)
		}
	}
	return nil
}

// TimeEntryTaskStatus is the status snapshot embedded in a time entry's task.
type TimeEntryTaskStatus struct {
	Status     string    `json:"status"`
	Color      string    `json:"color"`
	Type       string    `json:"type"`
	OrderIndex FlexFloat `json:"orderindex"`
}

// TimeEntryTask is the task reference embedded in a time entry.
type TimeEntryTask struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Status     TimeEntryTaskStatus `json:"status"`
	CustomType *string             `json:"custom_type"`
}

// TimeEntry is a tracked span of time, optionally against a task.
type TimeEntry struct {
	ID          string          `json:"id"`
	Task        *TimeEntryTask  `json:"task"`
	WID         string          `json:"wid"`
	User        User            `json:"user"`
	Billable    bool            `json:"billable"`
	Start       Millis          `json:"start"`
	End         Millis          `json:"end"`
	Duration    Duration        `json:"duration"`
	Description string          `json:"description"`
	Tags        json.RawMessage `json:"tags"`
	Source      string          `json:"source"`
	At          Millis          `json:"at"`
}

// UnmarshalJSON decodes a time entry. ClickUp encodes "no task" as the
// literal string "0"; that and null both leave Task nil.
func (e *TimeEntry) UnmarshalJSON(data []byte) error {
	type plain TimeEntry
	var aux struct {
		plain
		Task json.RawMessage `json:"task"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = TimeEntry(aux.plain)
	e.Task = nil

	switch string(aux.Task) {
	case "", "null", `"0"`:
		return nil
	}
	var task TimeEntryTask
	if err := json.Unmarshal(aux.Task, &task); err != nil {
		return fmt.Errorf("time entry %s: task: %w", e.ID, err)
	}
	e.Task = &task
	return nil
}

// Validate checks if the TimeEntry has valid field values.
func (e *TimeEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("time entry id is required")
	}
	if err := e.User.Validate(); err != nil {
		return fmt.Errorf("time entry %s: %w", e.ID, err)
	}
	if e.Start.IsZero() {
		return fmt.Errorf("time entry %s: start is required", e.ID)
	}
	if e.Task != nil && e.Task.ID == "" {
		return fmt.Errorf("time entry %s: task id is required", e.ID)
	}
	return nil
}
