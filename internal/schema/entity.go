package schema

import (
	"encoding/json"
	"fmt"
)

// User is a ClickUp user as embedded in team memberships and time entries.
type User struct {
	ID             int64   `json:"id"`
	Username       *string `json:"username"`
	Email          string  `json:"email"`
	Color          *string `json:"color"`
	Initials       string  `json:"initials"`
	ProfilePicture *string `json:"profilePicture"`
}

// Validate checks if the User has valid field values.
func (u *User) Validate() error {
	if u.ID == 0 {
		return fmt.Errorf("user id is required")
	}
	if u.Email == "" {
		return fmt.Errorf("user %d: email is required", u.ID)
	}
	if u.Initials == "" {
		return fmt.Errorf("user %d: initials is required", u.ID)
	}
	return nil
}

// UserContainer wraps a user inside a team's member list.
type UserContainer struct {
	User User `json:"user"`
}

// Team is a ClickUp workspace (called "team" by the v2 API).
type Team struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Color   string          `json:"color"`
	Avatar  *string         `json:"avatar"`
	Members []UserContainer `json:"members"`
}

// Validate checks if the Team and its members have valid field values.
func (t *Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team %s: name is required", t.ID)
	}
	for i := range t.Members {
		if err := t.Members[i].User.Validate(); err != nil {
			return fmt.Errorf("team %s: member %d: %w", t.ID, i, err)
		}
	}
	return nil
}

// Status is a workflow status definition.
type Status struct {
	ID         string  `json:"id,omitempty"`
	Status     string  `json:"status"`
	Type       string  `json:"type"`
	OrderIndex FlexInt `json:"orderindex"`
	Color      string  `json:"color"`
}

// Validate checks if the Status has valid field values.
func (s *Status) Validate() error {
	if s.Status == "" {
		return fmt.Errorf("status name is required")
	}
	return nil
}

// Space is a ClickUp space belonging to one team.
type Space struct {
	ID       string                     `json:"id"`
	Name     string                     `json:"name"`
	Private  bool                       `json:"private"`
	Statuses []Status                   `json:"statuses"`
	Features map[string]json.RawMessage `json:"features"`
	Archived bool                       `json:"archived"`
}

// Validate checks if the Space has valid field values.
func (s *Space) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("space id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("space %s: name is required", s.ID)
	}
	for i := range s.Statuses {
		if err := s.Statuses[i].Validate(); err != nil {
			return fmt.Errorf("space %s: status %d: %w", s.ID, i, err)
		}
	}
	return nil
}

// Ref is a nested reference to another entity. Only the id is relied upon;
// the rest of the object is ignored.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Folder is a ClickUp folder. The API embeds the folder's lists.
type Folder struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	OrderIndex       FlexInt  `json:"orderindex"`
	OverrideStatuses bool     `json:"override_statuses"`
	Hidden           bool     `json:"hidden"`
	Space            *Ref     `json:"space"`
	TaskCount        FlexInt  `json:"task_count"`
	Archived         bool     `json:"archived"`
	Statuses         []Status `json:"statuses"`
	Lists            []List   `json:"lists"`
	PermissionLevel  string   `json:"permission_level"`
}

// Validate checks if the Folder and its lists have valid field values.
func (f *Folder) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("folder id is required")
	}
	if f.Space == nil || f.Space.ID == "" {
		return fmt.Errorf("folder %s: space is required", f.ID)
	}
	for i := range f.Lists {
		if err := f.Lists[i].Validate(); err != nil {
			return fmt.Errorf("folder %s: %w", f.ID, err)
		}
	}
	return nil
}

// List is a ClickUp list, either inside a folder or directly in a space
// ("folderless").
type List struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	OrderIndex       FlexInt         `json:"orderindex"`
	Content          *string         `json:"content"`
	Status           json.RawMessage `json:"status"`
	Priority         json.RawMessage `json:"priority"`
	Assignee         json.RawMessage `json:"assignee"`
	TaskCount        *FlexInt        `json:"task_count"`
	DueDate          *string         `json:"due_date"`
	StartDate        *string         `json:"start_date"`
	Folder           *Ref            `json:"folder"`
	Space            *Ref            `json:"space"`
	Archived         bool            `json:"archived"`
	OverrideStatuses *bool           `json:"override_statuses"`
	Statuses         []Status        `json:"statuses"`
	PermissionLevel  string          `json:"permission_level"`
}

// Validate checks if the List has valid field values.
func (l *List) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("list id is required")
	}
	if l.Space == nil || l.Space.ID == "" {
		return fmt.Errorf("list %s: space is required", l.ID)
	}
	return nil
}
