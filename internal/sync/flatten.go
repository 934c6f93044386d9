package sync

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/schema"
)

// FlattenTeam returns the team row and one member row per user of the team.
func FlattenTeam(team schema.Team) (schema.TeamRow, []schema.MemberRow) {
	row := schema.TeamRow{
		ID:     team.ID,
		Name:   team.Name,
		Color:  team.Color,
		Avatar: team.Avatar,
	}

	members := make([]schema.MemberRow, 0, len(team.Members))
	for _, m := range team.Members {
		u := m.User
		members = append(members, schema.MemberRow{
			ID:             u.ID,
			TeamID:         team.ID,
			Username:       u.Username,
			Email:          u.Email,
			Color:          u.Color,
			Initials:       u.Initials,
			ProfilePicture: u.ProfilePicture,
		})
	}
	return row, members
}

// FlattenSpace returns the row of a space belonging to teamID.
func FlattenSpace(teamID string, space schema.Space) (schema.SpaceRow, error) {
	statuses, err := schema.ToJSONText(space.Statuses)
	if err != nil {
		return schema.SpaceRow{}, goerr.Wrap(err, "failed to encode statuses", goerr.V("space_id", space.ID))
	}
	features, err := schema.ToJSONText(space.Features)
	if err != nil {
		return schema.SpaceRow{}, goerr.Wrap(err, "failed to encode features", goerr.V("space_id", space.ID))
	}

	return schema.SpaceRow{
		ID:       space.ID,
		TeamID:   teamID,
		Name:     space.Name,
		Private:  space.Private,
		Archived: space.Archived,
		Statuses: statuses,
		Features: features,
	}, nil
}

// FlattenFolder returns the folder row and the rows of the lists it embeds.
// Each list row points at the folder; its space comes from the list's own
// space reference, falling back to the folder's.
func FlattenFolder(folder schema.Folder) (schema.FolderRow, []schema.ListRow, error) {
	statuses, err := schema.ToJSONText(folder.Statuses)
	if err != nil {
		return schema.FolderRow{}, nil, goerr.Wrap(err, "failed to encode statuses", goerr.V("folder_id", folder.ID))
	}

	row := schema.FolderRow{
		ID:               folder.ID,
		SpaceID:          refID(folder.Space),
		Name:             folder.Name,
		OrderIndex:       int64(folder.OrderIndex),
		OverrideStatuses: folder.OverrideStatuses,
		Hidden:           folder.Hidden,
		TaskCount:        int64(folder.TaskCount),
		Archived:         folder.Archived,
		Statuses:         statuses,
		PermissionLevel:  folder.PermissionLevel,
	}

	folderID := folder.ID
	lists := make([]schema.ListRow, 0, len(folder.Lists))
	for _, l := range folder.Lists {
		if l.Space == nil {
			l.Space = folder.Space
		}
		list, err := FlattenList(l, &folderID)
		if err != nil {
			return schema.FolderRow{}, nil, err
		}
		lists = append(lists, list)
	}
	return row, lists, nil
}

// FlattenList returns the row of a list. folderID is nil for folderless
// lists.
func FlattenList(list schema.List, folderID *string) (schema.ListRow, error) {
	row := schema.ListRow{
		ID:               list.ID,
		FolderID:         folderID,
		SpaceID:          refID(list.Space),
		Name:             list.Name,
		OrderIndex:       int64(list.OrderIndex),
		Content:          list.Content,
		DueDate:          list.DueDate,
		StartDate:        list.StartDate,
		Archived:         list.Archived,
		OverrideStatuses: list.OverrideStatuses,
		PermissionLevel:  list.PermissionLevel,
	}
	if list.TaskCount != nil {
		n := int64(*list.TaskCount)
		row.TaskCount = &n
	}

	var err error
	fields := []struct {
		name string
		dst  *schema.JSONText
		src  any
	}{
		{"status", &row.Status, list.Status},
		{"priority", &row.Priority, list.Priority},
		{"assignee", &row.Assignee, list.Assignee},
		{"statuses", &row.Statuses, list.Statuses},
	}
	for _, f := range fields {
		if *f.dst, err = schema.ToJSONText(f.src); err != nil {
			return schema.ListRow{}, goerr.Wrap(err, "failed to encode list field",
				goerr.V("list_id", list.ID), goerr.V("field", f.name))
		}
	}
	return row, nil
}

// FlattenTask returns the row of a task. The nested list, project, folder
// and space objects are replaced by their ids.
func FlattenTask(task schema.Task) (schema.TaskRow, error) {
	row := schema.TaskRow{
		ID:              task.ID,
		CustomID:        task.CustomID,
		Name:            task.Name,
		Description:     task.Description,
		OrderIndex:      float64(task.OrderIndex),
		DateCreated:     task.DateCreated,
		DateUpdated:     task.DateUpdated,
		DateClosed:      task.DateClosed,
		Archived:        task.Archived,
		Parent:          task.Parent,
		DueDate:         task.DueDate,
		StartDate:       task.StartDate,
		TimeEstimate:    task.TimeEstimate,
		TimeSpent:       task.TimeSpent,
		TeamID:          task.TeamID,
		URL:             task.URL,
		PermissionLevel: task.PermissionLevel,
		ListID:          task.List.ID,
		ProjectID:       task.Project.ID,
		FolderID:        task.Folder.ID,
		SpaceID:         task.Space.ID,
	}
	if task.Points != nil {
		p := float64(*task.Points)
		row.Points = &p
	}

	var err error
	fields := []struct {
		name string
		dst  *schema.JSONText
		src  any
	}{
		{"status", &row.Status, task.Status},
		{"creator", &row.Creator, task.Creator},
		{"assignees", &row.Assignees, task.Assignees},
		{"tags", &row.Tags, task.Tags},
		{"priority", &row.Priority, task.Priority},
		{"custom_fields", &row.CustomFields, task.CustomFields},
		{"dependencies", &row.Dependencies, task.Dependencies},
		{"linked_tasks", &row.LinkedTasks, task.LinkedTasks},
	}
	for _, f := range fields {
		if *f.dst, err = schema.ToJSONText(f.src); err != nil {
			return schema.TaskRow{}, goerr.Wrap(err, "failed to encode task field",
				goerr.V("task_id", task.ID), goerr.V("field", f.name))
		}
	}
	return row, nil
}

// FlattenTimeEntry returns the row of a time entry fetched for teamID.
// Duration is stored in seconds and instants as RFC 3339 UTC strings.
func FlattenTimeEntry(teamID string, entry schema.TimeEntry) schema.TimeEntryRow {
	row := schema.TimeEntryRow{
		ID:          entry.ID,
		WID:         entry.WID,
		UserID:      entry.User.ID,
		TeamID:      teamID,
		Billable:    entry.Billable,
		Start:       formatInstant(entry.Start.Time),
		End:         optionalInstant(entry.End.Time),
		Duration:    entry.Duration.Seconds(),
		Description: entry.Description,
		Tags:        schema.JSONText(entry.Tags),
		Source:      entry.Source,
		At:          optionalInstant(entry.At.Time),
	}
	if len(entry.Tags) == 0 || string(entry.Tags) == "null" {
		row.Tags = nil
	}
	if entry.Task != nil {
		id := entry.Task.ID
		row.TaskID = &id
	}
	return row
}

// refID reduces a nested reference to its id.
func refID(ref *schema.Ref) string {
	if ref == nil {
		return ""
	}
	return ref.ID
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func optionalInstant(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := formatInstant(t)
	return &s
}
