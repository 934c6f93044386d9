package sync

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/clickup"
	"github.com/gregmuellegger/clickup-to-sqlite/internal/schema"
	"github.com/gregmuellegger/clickup-to-sqlite/internal/store"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *store.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.InitSchema(context.Background()); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}
	return database
}

type timeEntryCall struct {
	teamID     string
	start, end time.Time
}

// fakeAPI serves a fixed account from memory.
type fakeAPI struct {
	teams       []schema.Team
	spaces      map[string][]schema.Space
	folders     map[string][]schema.Folder
	lists       map[string][]schema.List
	tasks       map[string][]schema.Task
	timeEntries map[string][]schema.TimeEntry

	tasksErr       error
	taskParams     []clickup.Params
	timeEntryCalls []timeEntryCall
}

func (f *fakeAPI) GetTeams(ctx context.Context) ([]schema.Team, error) {
	return f.teams, nil
}

func (f *fakeAPI) GetSpaces(ctx context.Context, teamID string, archived bool) ([]schema.Space, error) {
	return f.spaces[teamID], nil
}

func (f *fakeAPI) GetFolders(ctx context.Context, spaceID string, archived bool) ([]schema.Folder, error) {
	return f.folders[spaceID], nil
}

func (f *fakeAPI) GetFolderlessLists(ctx context.Context, spaceID string, archived bool) ([]schema.List, error) {
	return f.lists[spaceID], nil
}

func (f *fakeAPI) GetFilteredTeamTasks(ctx context.Context, teamID string, params clickup.Params) iter.Seq2[*schema.Task, error] {
	f.taskParams = append(f.taskParams, params)
	return func(yield func(*schema.Task, error) bool) {
		if f.tasksErr != nil {
			yield(nil, f.tasksErr)
			return
		}
		tasks := f.tasks[teamID]
		for i := range tasks {
			if !yield(&tasks[i], nil) {
				return
			}
		}
	}
}

func (f *fakeAPI) GetTimeEntriesWithinDateRange(ctx context.Context, teamID string, start, end time.Time, assignee *int64) ([]schema.TimeEntry, error) {
	f.timeEntryCalls = append(f.timeEntryCalls, timeEntryCall{teamID, start, end})

	var entries []schema.TimeEntry
	for _, e := range f.timeEntries[teamID] {
		if !e.Start.Before(start) && e.Start.Before(end) {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func newFakeAccount() *fakeAPI {
	user := schema.User{ID: 7, Email: "ann@example.com", Initials: "A"}
	space := &schema.Ref{ID: "s1"}

	return &fakeAPI{
		teams: []schema.Team{
			{ID: "1", Name: "Acme", Color: "#fff", Members: []schema.UserContainer{{User: user}}},
		},
		spaces: map[string][]schema.Space{
			"1": {{ID: "s1", Name: "Space"}},
		},
		folders: map[string][]schema.Folder{
			"s1": {{
				ID:    "f1",
				Name:  "Folder",
				Space: space,
				Lists: []schema.List{{ID: "l1", Name: "In folder", Space: space}},
			}},
		},
		lists: map[string][]schema.List{
			"s1": {{ID: "l2", Name: "Folderless", Space: space}},
		},
		tasks: map[string][]schema.Task{
			"1": {
				{
					ID: "t1", Name: "Parent", DateCreated: "1700000000000",
					Status: schema.Status{Status: "open"}, TeamID: "1",
					List: schema.TaskList{ID: "l1"}, Folder: schema.IDElement{ID: "f1"},
					Project: schema.IDElement{ID: "f1"}, Space: schema.IDElement{ID: "s1"},
				},
				{
					ID: "t2", Name: "Child", DateCreated: "1700000000000", Parent: strPtr("t1"),
					Status: schema.Status{Status: "closed"}, TeamID: "1",
					List: schema.TaskList{ID: "l2"}, Space: schema.IDElement{ID: "s1"},
				},
			},
		},
		timeEntries: map[string][]schema.TimeEntry{
			"1": {
				{
					ID: "e1", User: user, Task: &schema.TimeEntryTask{ID: "t1"},
					Start:    schema.Millis{Time: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
					Duration: schema.Duration{Duration: time.Hour},
				},
				{
					ID: "e2", User: user,
					Start:    schema.Millis{Time: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)},
					Duration: schema.Duration{Duration: 90 * time.Second},
				},
			},
		},
	}
}

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestRun(t *testing.T) {
	database := setupTestDB(t)
	api := newFakeAccount()
	ctx := context.Background()

	syncer := New(database, api, nil, Options{Now: func() time.Time { return fixedNow }})
	stats, err := syncer.Run(ctx)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	want := map[string]int{
		store.TableTeams:       1,
		store.TableMembers:     1,
		store.TableSpaces:      1,
		store.TableFolders:     1,
		store.TableLists:       2,
		store.TableTasks:       2,
		store.TableTimeEntries: 2,
	}
	if diff := cmp.Diff(want, stats.Rows); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	counts, err := database.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() failed: %v", err)
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}

	// Folder lists point at their folder; folderless lists have none.
	inFolder, err := database.GetList(ctx, "l1")
	if err != nil {
		t.Fatalf("GetList(l1) failed: %v", err)
	}
	if inFolder.FolderID == nil || *inFolder.FolderID != "f1" {
		t.Errorf("l1 FolderID = %v, want f1", inFolder.FolderID)
	}
	folderless, err := database.GetList(ctx, "l2")
	if err != nil {
		t.Fatalf("GetList(l2) failed: %v", err)
	}
	if folderless.FolderID != nil {
		t.Errorf("l2 FolderID = %q, want NULL", *folderless.FolderID)
	}

	child, err := database.GetTask(ctx, "t2")
	if err != nil {
		t.Fatalf("GetTask(t2) failed: %v", err)
	}
	if child.Parent == nil || *child.Parent != "t1" {
		t.Errorf("t2 Parent = %v, want t1", child.Parent)
	}

	entry, err := database.GetTimeEntry(ctx, "e2")
	if err != nil {
		t.Fatalf("GetTimeEntry(e2) failed: %v", err)
	}
	if entry.TaskID != nil {
		t.Errorf("e2 TaskID = %q, want NULL", *entry.TaskID)
	}
	if entry.Duration != 90 {
		t.Errorf("e2 Duration = %v, want 90", entry.Duration)
	}
	if entry.TeamID != "1" || entry.UserID != 7 {
		t.Errorf("e2 (team, user) = (%s, %d), want (1, 7)", entry.TeamID, entry.UserID)
	}

	// Tasks are requested with closed tasks and subtasks.
	wantParams := []clickup.Params{{"include_closed": true, "subtasks": true}}
	if diff := cmp.Diff(wantParams, api.taskParams); diff != "" {
		t.Errorf("task params mismatch (-want +got):\n%s", diff)
	}

	// One request over now ± 10 years.
	wantCalls := []timeEntryCall{{
		teamID: "1",
		start:  time.Date(2014, 6, 1, 0, 0, 0, 0, time.UTC),
		end:    time.Date(2034, 6, 1, 0, 0, 0, 0, time.UTC),
	}}
	if diff := cmp.Diff(wantCalls, api.timeEntryCalls, cmp.AllowUnexported(timeEntryCall{})); diff != "" {
		t.Errorf("time entry calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_ForeignKeys(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	syncer := New(database, newFakeAccount(), nil, Options{})
	if _, err := syncer.Run(ctx); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	// Declarations survive a second run unchanged.
	if _, err := syncer.Run(ctx); err != nil {
		t.Fatalf("second Run() failed: %v", err)
	}

	fks, err := database.ForeignKeys(ctx)
	if err != nil {
		t.Fatalf("ForeignKeys() failed: %v", err)
	}

	got := make(map[string]string, len(fks))
	for _, fk := range fks {
		got[fk.Table+"."+fk.Column] = fk.OtherTable + "." + fk.OtherColumn
	}
	want := map[string]string{
		"members.team_id":     "teams.id",
		"spaces.team_id":      "teams.id",
		"folders.space_id":    "spaces.id",
		"lists.folder_id":     "folders.id",
		"lists.space_id":      "spaces.id",
		"tasks.list_id":       "lists.id",
		"tasks.folder_id":     "folders.id",
		"tasks.space_id":      "spaces.id",
		"tasks.team_id":       "teams.id",
		"timeentries.task_id": "tasks.id",
		"timeentries.user_id": "members.id",
		"timeentries.team_id": "teams.id",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("foreign keys mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Idempotent(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	api := newFakeAccount()

	for i := 0; i < 2; i++ {
		if _, err := New(database, api, nil, Options{}).Run(ctx); err != nil {
			t.Fatalf("Run() #%d failed: %v", i, err)
		}
	}

	// Renamed upstream: the row is replaced, not duplicated.
	api.teams[0].Name = "Acme Corp"
	if _, err := New(database, api, nil, Options{}).Run(ctx); err != nil {
		t.Fatalf("Run() after rename failed: %v", err)
	}

	team, err := database.GetTeam(ctx, "1")
	if err != nil {
		t.Fatalf("GetTeam() failed: %v", err)
	}
	if team.Name != "Acme Corp" {
		t.Errorf("Name = %q, want %q", team.Name, "Acme Corp")
	}
	n, err := database.Count(ctx, store.TableTeams)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("teams = %d, want 1", n)
	}
}

func TestRun_StopsAtFailedStage(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	api := newFakeAccount()
	api.tasksErr = errors.New("boom")

	stats, err := New(database, api, nil, Options{}).Run(ctx)
	if err == nil {
		t.Fatal("Run() succeeded, want error")
	}
	if !errors.Is(err, api.tasksErr) {
		t.Errorf("Run() error = %v, want wrapping %v", err, api.tasksErr)
	}

	// Earlier collections were committed.
	if stats.Rows[store.TableLists] != 2 {
		t.Errorf("lists = %d, want 2", stats.Rows[store.TableLists])
	}
	n, err := database.Count(ctx, store.TableLists)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("stored lists = %d, want 2", n)
	}
	if len(api.timeEntryCalls) != 0 {
		t.Errorf("time entries fetched %d times after failure, want 0", len(api.timeEntryCalls))
	}
}

func TestRun_Cancelled(t *testing.T) {
	database := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(database, newFakeAccount(), nil, Options{}).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestSyncTimeEntries_Chunked(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	api := newFakeAccount()

	s := New(database, api, nil, Options{
		Since: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Until: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Chunk: 7 * 24 * time.Hour,
	})
	if err := s.SyncTeams(ctx); err != nil {
		t.Fatalf("SyncTeams() failed: %v", err)
	}
	if err := s.SyncTimeEntries(ctx); err != nil {
		t.Fatalf("SyncTimeEntries() failed: %v", err)
	}

	if len(api.timeEntryCalls) != 5 {
		t.Fatalf("requests = %d, want 5", len(api.timeEntryCalls))
	}
	last := api.timeEntryCalls[len(api.timeEntryCalls)-1]
	if want := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC); !last.end.Equal(want) {
		t.Errorf("last end = %v, want %v", last.end, want)
	}

	n, err := database.Count(ctx, store.TableTimeEntries)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("time entries = %d, want 2", n)
	}
}

func TestSyncTimeEntries_InvertedWindow(t *testing.T) {
	database := setupTestDB(t)

	s := New(database, newFakeAccount(), nil, Options{
		Since: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Until: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err := s.SyncTimeEntries(context.Background()); err == nil {
		t.Error("SyncTimeEntries() succeeded with inverted window, want error")
	}
}
