package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/clickup"
	"github.com/gregmuellegger/clickup-to-sqlite/internal/schema"
	"github.com/gregmuellegger/clickup-to-sqlite/internal/store"
)

// Options tune a run. The zero value loads time entries over the default
// window in a single request per team.
type Options struct {
	// Since and Until bound the time entry window. A zero value falls back
	// to the corresponding edge of DefaultWindow.
	Since time.Time
	Until time.Time

	// Chunk splits the time entry window into requests covering at most
	// this long. Zero requests the whole window at once.
	Chunk time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// foreignKeys lists the relationships declared after each table is written.
var foreignKeys = map[string][]store.ForeignKey{
	store.TableMembers: {
		{Table: store.TableMembers, Column: "team_id", OtherTable: store.TableTeams, OtherColumn: "id"},
	},
	store.TableSpaces: {
		{Table: store.TableSpaces, Column: "team_id", OtherTable: store.TableTeams, OtherColumn: "id"},
	},
	store.TableFolders: {
		{Table: store.TableFolders, Column: "space_id", OtherTable: store.TableSpaces, OtherColumn: "id"},
	},
	store.TableLists: {
		{Table: store.TableLists, Column: "folder_id", OtherTable: store.TableFolders, OtherColumn: "id"},
		{Table: store.TableLists, Column: "space_id", OtherTable: store.TableSpaces, OtherColumn: "id"},
	},
	store.TableTasks: {
		{Table: store.TableTasks, Column: "list_id", OtherTable: store.TableLists, OtherColumn: "id"},
		{Table: store.TableTasks, Column: "folder_id", OtherTable: store.TableFolders, OtherColumn: "id"},
		{Table: store.TableTasks, Column: "space_id", OtherTable: store.TableSpaces, OtherColumn: "id"},
		{Table: store.TableTasks, Column: "team_id", OtherTable: store.TableTeams, OtherColumn: "id"},
	},
	store.TableTimeEntries: {
		{Table: store.TableTimeEntries, Column: "task_id", OtherTable: store.TableTasks, OtherColumn: "id"},
		{Table: store.TableTimeEntries, Column: "user_id", OtherTable: store.TableMembers, OtherColumn: "id"},
		{Table: store.TableTimeEntries, Column: "team_id", OtherTable: store.TableTeams, OtherColumn: "id"},
	},
}

// syncer implements the Syncer interface.
type syncer struct {
	db     *store.DB
	api    API
	logger *slog.Logger
	opts   Options
	rows   map[string]int
}

// New creates a new Syncer instance.
//
// The database must have its schema initialized before passing it to this
// function. If logger is nil, slog.Default() is used.
func New(database *store.DB, api API, logger *slog.Logger, opts Options) Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &syncer{
		db:     database,
		api:    api,
		logger: logger,
		opts:   opts,
		rows:   make(map[string]int),
	}
}

// Run implements Syncer.Run.
func (s *syncer) Run(ctx context.Context) (*Stats, error) {
	start := s.opts.Now()
	s.rows = make(map[string]int)

	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"teams", s.SyncTeams},
		{"spaces", s.SyncSpaces},
		{"hierarchy", s.SyncHierarchy},
		{"tasks", s.SyncTasks},
		{"time_entries", s.SyncTimeEntries},
	}

	var err error
	for _, stage := range stages {
		if err = ctx.Err(); err != nil {
			err = goerr.Wrap(err, "sync cancelled", goerr.V("stage", stage.name))
			break
		}
		if err = stage.fn(ctx); err != nil {
			err = goerr.Wrap(err, "sync stage failed", goerr.V("stage", stage.name))
			break
		}
	}

	stats := &Stats{
		Rows:    make(map[string]int, len(s.rows)),
		Elapsed: s.opts.Now().Sub(start),
	}
	for table, n := range s.rows {
		stats.Rows[table] = n
	}
	if err != nil {
		return stats, err
	}

	s.logger.Info("sync complete", "elapsed", stats.Elapsed, "rows", stats.Rows)
	return stats, nil
}

// SyncTeams implements Syncer.SyncTeams.
func (s *syncer) SyncTeams(ctx context.Context) error {
	teams, err := s.api.GetTeams(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to fetch teams")
	}

	var (
		teamRows   []schema.TeamRow
		memberRows []schema.MemberRow
	)
	for _, team := range teams {
		row, members := FlattenTeam(team)
		teamRows = append(teamRows, row)
		memberRows = append(memberRows, members...)
	}

	if err := s.write(ctx, store.TableTeams, len(teamRows), func() error {
		return s.db.UpsertTeams(ctx, teamRows)
	}); err != nil {
		return err
	}
	return s.write(ctx, store.TableMembers, len(memberRows), func() error {
		return s.db.UpsertMembers(ctx, memberRows)
	})
}

// SyncSpaces implements Syncer.SyncSpaces.
func (s *syncer) SyncSpaces(ctx context.Context) error {
	teamIDs, err := s.db.TeamIDs(ctx)
	if err != nil {
		return err
	}

	var rows []schema.SpaceRow
	for _, teamID := range teamIDs {
		spaces, err := s.api.GetSpaces(ctx, teamID, false)
		if err != nil {
			return goerr.Wrap(err, "failed to fetch spaces", goerr.V("team_id", teamID))
		}
		for _, space := range spaces {
			row, err := FlattenSpace(teamID, space)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		s.logger.Debug("fetched spaces", "team_id", teamID, "count", len(spaces))
	}

	return s.write(ctx, store.TableSpaces, len(rows), func() error {
		return s.db.UpsertSpaces(ctx, rows)
	})
}

// SyncHierarchy implements Syncer.SyncHierarchy.
func (s *syncer) SyncHierarchy(ctx context.Context) error {
	spaceIDs, err := s.db.SpaceIDs(ctx)
	if err != nil {
		return err
	}

	var (
		folderRows []schema.FolderRow
		listRows   []schema.ListRow
	)
	for _, spaceID := range spaceIDs {
		folders, err := s.api.GetFolders(ctx, spaceID, false)
		if err != nil {
			return goerr.Wrap(err, "failed to fetch folders", goerr.V("space_id", spaceID))
		}
		for _, folder := range folders {
			row, lists, err := FlattenFolder(folder)
			if err != nil {
				return err
			}
			folderRows = append(folderRows, row)
			listRows = append(listRows, lists...)
		}

		lists, err := s.api.GetFolderlessLists(ctx, spaceID, false)
		if err != nil {
			return goerr.Wrap(err, "failed to fetch folderless lists", goerr.V("space_id", spaceID))
		}
		for _, list := range lists {
			row, err := FlattenList(list, nil)
			if err != nil {
				return err
			}
			listRows = append(listRows, row)
		}
		s.logger.Debug("fetched hierarchy", "space_id", spaceID,
			"folders", len(folders), "folderless_lists", len(lists))
	}

	if err := s.write(ctx, store.TableFolders, len(folderRows), func() error {
		return s.db.UpsertFolders(ctx, folderRows)
	}); err != nil {
		return err
	}
	return s.write(ctx, store.TableLists, len(listRows), func() error {
		return s.db.UpsertLists(ctx, listRows)
	})
}

// SyncTasks implements Syncer.SyncTasks.
func (s *syncer) SyncTasks(ctx context.Context) error {
	teamIDs, err := s.db.TeamIDs(ctx)
	if err != nil {
		return err
	}

	params := clickup.Params{
		"include_closed": true,
		"subtasks":       true,
	}

	var rows []schema.TaskRow
	for _, teamID := range teamIDs {
		count := 0
		for task, err := range s.api.GetFilteredTeamTasks(ctx, teamID, params) {
			if err != nil {
				return goerr.Wrap(err, "failed to fetch tasks", goerr.V("team_id", teamID))
			}
			row, err := FlattenTask(*task)
			if err != nil {
				return err
			}
			rows = append(rows, row)
			count++
		}
		s.logger.Debug("fetched tasks", "team_id", teamID, "count", count)
	}

	return s.write(ctx, store.TableTasks, len(rows), func() error {
		return s.db.UpsertTasks(ctx, rows)
	})
}

// SyncTimeEntries implements Syncer.SyncTimeEntries.
func (s *syncer) SyncTimeEntries(ctx context.Context) error {
	window := s.window()
	if err := window.Validate(); err != nil {
		return err
	}

	teamIDs, err := s.db.TeamIDs(ctx)
	if err != nil {
		return err
	}

	var rows []schema.TimeEntryRow
	for _, teamID := range teamIDs {
		for _, w := range window.Split(s.opts.Chunk) {
			entries, err := s.api.GetTimeEntriesWithinDateRange(ctx, teamID, w.Start, w.End, nil)
			if err != nil {
				return goerr.Wrap(err, "failed to fetch time entries",
					goerr.V("team_id", teamID), goerr.V("start", w.Start), goerr.V("end", w.End))
			}
			for _, entry := range entries {
				rows = append(rows, FlattenTimeEntry(teamID, entry))
			}
			s.logger.Debug("fetched time entries", "team_id", teamID,
				"start", w.Start, "end", w.End, "count", len(entries))
		}
	}

	return s.write(ctx, store.TableTimeEntries, len(rows), func() error {
		return s.db.UpsertTimeEntries(ctx, rows)
	})
}

// window resolves the time entry window from the options.
func (s *syncer) window() Window {
	w := DefaultWindow(s.opts.Now())
	if !s.opts.Since.IsZero() {
		w.Start = s.opts.Since
	}
	if !s.opts.Until.IsZero() {
		w.End = s.opts.Until
	}
	return w
}

// write runs upsert for table, then declares the table's foreign keys.
func (s *syncer) write(ctx context.Context, table string, n int, upsert func() error) error {
	if err := upsert(); err != nil {
		return goerr.Wrap(err, "failed to write rows", goerr.V("table", table), goerr.V("rows", n))
	}
	for _, fk := range foreignKeys[table] {
		if err := s.db.AddForeignKey(ctx, fk); err != nil {
			return err
		}
	}

	s.rows[table] += n
	s.logger.Info("synced", "table", table, "rows", n)
	return nil
}
