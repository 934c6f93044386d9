package schema

// TeamRow is a flattened team; members live in MemberRow.
type TeamRow struct {
	ID     string  `db:"id" json:"id"`
	Name   string  `db:"name" json:"name"`
	Color  string  `db:"color" json:"color"`
	Avatar *string `db:"avatar" json:"avatar"`
}

// MemberRow is one (team, user) membership. A user belonging to several
// teams has one row per team.
type MemberRow struct {
	ID             int64   `db:"id" json:"id"`
	TeamID         string  `db:"team_id" json:"team_id"`
	Username       *string `db:"username" json:"username"`
	Email          string  `db:"email" json:"email"`
	Color          *string `db:"color" json:"color"`
	Initials       string  `db:"initials" json:"initials"`
	ProfilePicture *string `db:"profile_picture" json:"profile_picture"`
}

// SpaceRow is a flattened space.
type SpaceRow struct {
	ID       string   `db:"id" json:"id"`
	TeamID   string   `db:"team_id" json:"team_id"`
	Name     string   `db:"name" json:"name"`
	Private  bool     `db:"private" json:"private"`
	Archived bool     `db:"archived" json:"archived"`
	Statuses JSONText `db:"statuses" json:"statuses"`
	Features JSONText `db:"features" json:"features"`
}

// FolderRow is a flattened folder; its lists live in ListRow.
type FolderRow struct {
	ID               string   `db:"id" json:"id"`
	SpaceID          string   `db:"space_id" json:"space_id"`
	Name             string   `db:"name" json:"name"`
	OrderIndex       int64    `db:"orderindex" json:"orderindex"`
	OverrideStatuses bool     `db:"override_statuses" json:"override_statuses"`
	Hidden           bool     `db:"hidden" json:"hidden"`
	TaskCount        int64    `db:"task_count" json:"task_count"`
	Archived         bool     `db:"archived" json:"archived"`
	Statuses         JSONText `db:"statuses" json:"statuses"`
	PermissionLevel  string   `db:"permission_level" json:"permission_level"`
}

// ListRow is a flattened list. FolderID is nil for folderless lists.
type ListRow struct {
	ID               string   `db:"id" json:"id"`
	FolderID         *string  `db:"folder_id" json:"folder_id"`
	SpaceID          string   `db:"space_id" json:"space_id"`
	Name             string   `db:"name" json:"name"`
	OrderIndex       int64    `db:"orderindex" json:"orderindex"`
	Content          *string  `db:"content" json:"content"`
	Status           JSONText `db:"status" json:"status"`
	Priority         JSONText `db:"priority" json:"priority"`
	Assignee         JSONText `db:"assignee" json:"assignee"`
	TaskCount        *int64   `db:"task_count" json:"task_count"`
	DueDate          *string  `db:"due_date" json:"due_date"`
	StartDate        *string  `db:"start_date" json:"start_date"`
	Archived         bool     `db:"archived" json:"archived"`
	OverrideStatuses *bool    `db:"override_statuses" json:"override_statuses"`
	Statuses         JSONText `db:"statuses" json:"statuses"`
	PermissionLevel  string   `db:"permission_level" json:"permission_level"`
}

// TaskRow is a flattened task. The nested list, project, folder and space
// objects are reduced to their ids.
type TaskRow struct {
	ID              string   `db:"id" json:"id"`
	CustomID        *string  `db:"custom_id" json:"custom_id"`
	Name            string   `db:"name" json:"name"`
	Description     *string  `db:"description" json:"description"`
	Status          JSONText `db:"status" json:"status"`
	OrderIndex      float64  `db:"orderindex" json:"orderindex"`
	DateCreated     string   `db:"date_created" json:"date_created"`
	DateUpdated     string   `db:"date_updated" json:"date_updated"`
	DateClosed      *string  `db:"date_closed" json:"date_closed"`
	Archived        bool     `db:"archived" json:"archived"`
	Creator         JSONText `db:"creator" json:"creator"`
	Assignees       JSONText `db:"assignees" json:"assignees"`
	Tags            JSONText `db:"tags" json:"tags"`
	Parent          *string  `db:"parent" json:"parent"`
	Priority        JSONText `db:"priority" json:"priority"`
	DueDate         *string  `db:"due_date" json:"due_date"`
	StartDate       *string  `db:"start_date" json:"start_date"`
	Points          *float64 `db:"points" json:"points"`
	TimeEstimate    *int64   `db:"time_estimate" json:"time_estimate"`
	TimeSpent       *int64   `db:"time_spent" json:"time_spent"`
	CustomFields    JSONText `db:"custom_fields" json:"custom_fields"`
	Dependencies    JSONText `db:"dependencies" json:"dependencies"`
	LinkedTasks     JSONText `db:"linked_tasks" json:"linked_tasks"`
	TeamID          string   `db:"team_id" json:"team_id"`
	URL             string   `db:"url" json:"url"`
	PermissionLevel string   `db:"permission_level" json:"permission_level"`
	ListID          string   `db:"list_id" json:"list_id"`
	ProjectID       string   `db:"project_id" json:"project_id"`
	FolderID        string   `db:"folder_id" json:"folder_id"`
	SpaceID         string   `db:"space_id" json:"space_id"`
}

// TimeEntryRow is a flattened time entry. Duration is in seconds and
// instants are RFC 3339 strings.
type TimeEntryRow struct {
	ID          string   `db:"id" json:"id"`
	TaskID      *string  `db:"task_id" json:"task_id"`
	WID         string   `db:"wid" json:"wid"`
	UserID      int64    `db:"user_id" json:"user_id"`
	TeamID      string   `db:"team_id" json:"team_id"`
	Billable    bool     `db:"billable" json:"billable"`
	Start       string   `db:"start" json:"start"`
	End         *string  `db:"end" json:"end"`
	Duration    float64  `db:"duration" json:"duration"`
	Description string   `db:"description" json:"description"`
	Tags        JSONText `db:"tags" json:"tags"`
	Source      string   `db:"source" json:"source"`
	At          *string  `db:"at" json:"at"`
}
