package sync

import (
	"context"
	"iter"
	"time"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/clickup"
	"github.com/gregmuellegger/clickup-to-sqlite/internal/schema"
)

// API is the part of the ClickUp client the syncer reads from.
// *clickup.Client satisfies it.
type API interface {
	GetTeams(ctx context.Context) ([]schema.Team, error)
	GetSpaces(ctx context.Context, teamID string, archived bool) ([]schema.Space, error)
	GetFolders(ctx context.Context, spaceID string, archived bool) ([]schema.Folder, error)
	GetFolderlessLists(ctx context.Context, spaceID string, archived bool) ([]schema.List, error)
	GetFilteredTeamTasks(ctx context.Context, teamID string, params clickup.Params) iter.Seq2[*schema.Task, error]
	GetTimeEntriesWithinDateRange(ctx context.Context, teamID string, start, end time.Time, assignee *int64) ([]schema.TimeEntry, error)
}

var _ API = (*clickup.Client)(nil)

// Syncer loads ClickUp data into the store.
//
// Each stage fetches one kind of entity, flattens it, upserts it in a single
// transaction and declares the foreign keys of the table it wrote. Stages
// that depend on parent ids read them from the store, so running a stage
// alone only covers parents loaded by an earlier run.
type Syncer interface {
	// SyncTeams loads all teams visible to the token and their members.
	SyncTeams(ctx context.Context) error

	// SyncSpaces loads the spaces of every stored team.
	SyncSpaces(ctx context.Context) error

	// SyncHierarchy loads the folders and lists of every stored space.
	// Lists inside a folder carry its id; folderless lists have none.
	SyncHierarchy(ctx context.Context) error

	// SyncTasks loads every task of every stored team, including closed
	// tasks and subtasks.
	SyncTasks(ctx context.Context) error

	// SyncTimeEntries loads the time entries of every stored team that fall
	// inside the configured window.
	SyncTimeEntries(ctx context.Context) error

	// Run executes all stages in order and stops at the first error.
	// Collections written before the error stay in the store.
	//
	// The returned Stats count rows written during this run, also when an
	// error is returned.
	Run(ctx context.Context) (*Stats, error)
}

// Stats summarizes a run.
type Stats struct {
	// Rows is the number of rows upserted per table.
	Rows    map[string]int
	Elapsed time.Duration
}
