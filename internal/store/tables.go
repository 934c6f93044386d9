package store

import (
	"fmt"
	"strings"
)

// Table names.
const (
	TableTeams       = "teams"
	TableMembers     = "members"
	TableSpaces      = "spaces"
	TableFolders     = "folders"
	TableLists       = "lists"
	TableTasks       = "tasks"
	TableTimeEntries = "timeentries"
)

// Tables lists the entity tables in load order.
var Tables = []string{
	TableTeams,
	TableMembers,
	TableSpaces,
	TableFolders,
	TableLists,
	TableTasks,
	TableTimeEntries,
}

// table describes the columns of an entity table. Column names match the db
// tags of the corresponding schema row type.
type table struct {
	name    string
	key     []string
	columns []string
}

var (
	teamsTable = table{
		name:    TableTeams,
		key:     []string{"id"},
		columns: []string{"id", "name", "color", "avatar"},
	}
	membersTable = table{
		name:    TableMembers,
		key:     []string{"id", "team_id"},
		columns: []string{"id", "team_id", "username", "email", "color", "initials", "profile_picture"},
	}
	spacesTable = table{
		name:    TableSpaces,
		key:     []string{"id"},
		columns: []string{"id", "team_id", "name", "private", "archived", "statuses", "features"},
	}
	foldersTable = table{
		name: TableFolders,
		key:  []string{"id"},
		columns: []string{
			"id", "space_id", "name", "orderindex", "override_statuses", "hidden",
			"task_count", "archived", "statuses", "permission_level",
		},
	}
	listsTable = table{
		name: TableLists,
		key:  []string{"id"},
		columns: []string{
			"id", "folder_id", "space_id", "name", "orderindex", "content", "status",
			"priority", "assignee", "task_count", "due_date", "start_date", "archived",
			"override_statuses", "statuses", "permission_level",
		},
	}
	tasksTable = table{
		name: TableTasks,
		key:  []string{"id"},
		columns: []string{
			"id", "custom_id", "name", "description", "status", "orderindex",
			"date_created", "date_updated", "date_closed", "archived", "creator",
			"assignees", "tags", "parent", "priority", "due_date", "start_date",
			"points", "time_estimate", "time_spent", "custom_fields", "dependencies",
			"linked_tasks", "team_id", "url", "permission_level", "list_id",
			"project_id", "folder_id", "space_id",
		},
	}
	timeEntriesTable = table{
		name: TableTimeEntries,
		key:  []string{"id"},
		columns: []string{
			"id", "task_id", "wid", "user_id", "team_id", "billable", "start", "end",
			"duration", "description", "tags", "source", "at",
		},
	}
)

func isTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// upsertSQL builds a named INSERT that overwrites every non-key column of an
// existing row with the same key.
func (t table) upsertSQL() string {
	cols := make([]string, len(t.columns))
	params := make([]string, len(t.columns))
	for i, c := range t.columns {
		cols[i] = quote(c)
		params[i] = ":" + c
	}

	keys := make([]string, len(t.key))
	isKey := make(map[string]bool, len(t.key))
	for i, k := range t.key {
		keys[i] = quote(k)
		isKey[k] = true
	}

	var updates []string
	for _, c := range t.columns {
		if isKey[c] {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", quote(c), quote(c)))
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		quote(t.name),
		strings.Join(cols, ", "),
		strings.Join(params, ", "),
		strings.Join(keys, ", "),
		strings.Join(updates, ", "),
	)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS teams (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	color TEXT,
	avatar TEXT
);

CREATE TABLE IF NOT EXISTS members (
	id INTEGER NOT NULL,
	team_id TEXT NOT NULL,
	username TEXT,
	email TEXT NOT NULL,
	color TEXT,
	initials TEXT,
	profile_picture TEXT,
	PRIMARY KEY (id, team_id)
);

CREATE TABLE IF NOT EXISTS spaces (
	id TEXT PRIMARY KEY,
	team_id TEXT,
	name TEXT NOT NULL,
	private INTEGER NOT NULL DEFAULT 0,
	archived INTEGER NOT NULL DEFAULT 0,
	statuses TEXT,  -- JSON array
	features TEXT   -- JSON object
);

CREATE TABLE IF NOT EXISTS folders (
	id TEXT PRIMARY KEY,
	space_id TEXT,
	name TEXT NOT NULL,
	orderindex INTEGER,
	override_statuses INTEGER NOT NULL DEFAULT 0,
	hidden INTEGER NOT NULL DEFAULT 0,
	task_count INTEGER,
	archived INTEGER NOT NULL DEFAULT 0,
	statuses TEXT,  -- JSON array
	permission_level TEXT
);

CREATE TABLE IF NOT EXISTS lists (
	id TEXT PRIMARY KEY,
	folder_id TEXT,  -- NULL for folderless lists
	space_id TEXT,
	name TEXT NOT NULL,
	orderindex INTEGER,
	content TEXT,
	status TEXT,    -- JSON
	priority TEXT,  -- JSON
	assignee TEXT,  -- JSON
	task_count INTEGER,
	due_date TEXT,
	start_date TEXT,
	archived INTEGER NOT NULL DEFAULT 0,
	override_statuses INTEGER,
	statuses TEXT,  -- JSON array
	permission_level TEXT
);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	custom_id TEXT,
	name TEXT NOT NULL,
	description TEXT,
	status TEXT,  -- JSON
	orderindex REAL,
	date_created TEXT,
	date_updated TEXT,
	date_closed TEXT,
	archived INTEGER NOT NULL DEFAULT 0,
	creator TEXT,    -- JSON
	assignees TEXT,  -- JSON array
	tags TEXT,       -- JSON array
	parent TEXT,
	priority TEXT,   -- JSON
	due_date TEXT,
	start_date TEXT,
	points REAL,
	time_estimate INTEGER,
	time_spent INTEGER,
	custom_fields TEXT,  -- JSON array
	dependencies TEXT,   -- JSON array
	linked_tasks TEXT,   -- JSON array
	team_id TEXT,
	url TEXT,
	permission_level TEXT,
	list_id TEXT,
	project_id TEXT,
	folder_id TEXT,
	space_id TEXT
);

CREATE TABLE IF NOT EXISTS timeentries (
	id TEXT PRIMARY KEY,
	task_id TEXT,  -- NULL when not tracked against a task
	wid TEXT,
	user_id INTEGER,
	team_id TEXT,
	billable INTEGER NOT NULL DEFAULT 0,
	start TEXT,
	"end" TEXT,
	duration REAL,  -- seconds
	description TEXT,
	tags TEXT,  -- JSON array
	source TEXT,
	at TEXT
);

-- Declared relationships between tables. Advisory only: never enforced.
CREATE TABLE IF NOT EXISTS foreign_keys (
	table_name TEXT NOT NULL,
	column_name TEXT NOT NULL,
	other_table TEXT NOT NULL,
	other_column TEXT NOT NULL,
	PRIMARY KEY (table_name, column_name)
);

CREATE INDEX IF NOT EXISTS idx_members_team ON members(team_id);
CREATE INDEX IF NOT EXISTS idx_spaces_team ON spaces(team_id);
CREATE INDEX IF NOT EXISTS idx_folders_space ON folders(space_id);
CREATE INDEX IF NOT EXISTS idx_lists_space ON lists(space_id);
CREATE INDEX IF NOT EXISTS idx_lists_folder ON lists(folder_id);
CREATE INDEX IF NOT EXISTS idx_tasks_list ON tasks(list_id);
CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent);
CREATE INDEX IF NOT EXISTS idx_tasks_team ON tasks(team_id);
CREATE INDEX IF NOT EXISTS idx_timeentries_task ON timeentries(task_id);
CREATE INDEX IF NOT EXISTS idx_timeentries_user ON timeentries(user_id);
`
