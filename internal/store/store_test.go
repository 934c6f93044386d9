package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/schema"
)

// openTestDB opens a fresh database with the schema applied.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() failed: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "clickup.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
}

func TestInitSchema_Tables(t *testing.T) {
	db := openTestDB(t)

	tables := append([]string{"foreign_keys"}, Tables...)
	for _, table := range tables {
		var count int
		query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`
		if err := db.conn.QueryRow(query, table).Scan(&count); err != nil {
			t.Fatalf("Failed to query table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("Table %s does not exist", table)
		}
	}
}

func TestInitSchema_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.UpsertTeams(ctx, []schema.TeamRow{{ID: "1", Name: "Acme", Color: "#fff"}}); err != nil {
		t.Fatalf("UpsertTeams() failed: %v", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		t.Fatalf("Second InitSchema() failed: %v", err)
	}

	n, err := db.Count(ctx, TableTeams)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("teams = %d, want 1", n)
	}
}

func TestForeignKeyEnforcementOff(t *testing.T) {
	db := openTestDB(t)

	var enabled int
	if err := db.conn.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("PRAGMA foreign_keys failed: %v", err)
	}
	if enabled != 0 {
		t.Errorf("foreign_keys = %d, want 0", enabled)
	}
}

func TestUpsertTeams_ReplacesExisting(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := []schema.TeamRow{{ID: "1", Name: "Acme", Color: "#fff"}}
	if err := db.UpsertTeams(ctx, first); err != nil {
		t.Fatalf("UpsertTeams() failed: %v", err)
	}

	second := []schema.TeamRow{
		{ID: "1", Name: "Acme Corp", Color: "#000", Avatar: strPtr("a.png")},
		{ID: "2", Name: "Other", Color: "#123"},
	}
	if err := db.UpsertTeams(ctx, second); err != nil {
		t.Fatalf("UpsertTeams() failed: %v", err)
	}

	got, err := db.GetTeam(ctx, "1")
	if err != nil {
		t.Fatalf("GetTeam() failed: %v", err)
	}
	if diff := cmp.Diff(&second[0], got); diff != "" {
		t.Errorf("team mismatch (-want +got):\n%s", diff)
	}

	ids, err := db.TeamIDs(ctx)
	if err != nil {
		t.Fatalf("TeamIDs() failed: %v", err)
	}
	if diff := cmp.Diff([]string{"1", "2"}, ids); diff != "" {
		t.Errorf("TeamIDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsertMembers_CompositeKey(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rows := []schema.MemberRow{
		{ID: 7, TeamID: "1", Email: "a@example.com", Initials: "A"},
		{ID: 7, TeamID: "2", Email: "a@example.com", Initials: "A"},
	}
	if err := db.UpsertMembers(ctx, rows); err != nil {
		t.Fatalf("UpsertMembers() failed: %v", err)
	}

	// Same user, changed email: updates in place.
	changed := []schema.MemberRow{
		{ID: 7, TeamID: "1", Email: "b@example.com", Initials: "B", Username: strPtr("bee")},
	}
	if err := db.UpsertMembers(ctx, changed); err != nil {
		t.Fatalf("UpsertMembers() failed: %v", err)
	}

	n, err := db.Count(ctx, TableMembers)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("members = %d, want 2", n)
	}

	got, err := db.Members(ctx, "1")
	if err != nil {
		t.Fatalf("Members() failed: %v", err)
	}
	if diff := cmp.Diff(changed, got); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsertTasks_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	points := 3.5
	estimate := int64(3600000)
	row := schema.TaskRow{
		ID:           "abc",
		Name:         "Write docs",
		Status:       schema.JSONText(`{"status":"open"}`),
		OrderIndex:   12.5,
		DateCreated:  "1700000000000",
		DateUpdated:  "1700000001000",
		Archived:     true,
		Creator:      schema.JSONText(`{"id":1}`),
		Assignees:    schema.JSONText(`[]`),
		Tags:         schema.JSONText(`[]`),
		Parent:       strPtr("parent"),
		Points:       &points,
		TimeEstimate: &estimate,
		CustomFields: schema.JSONText(`[]`),
		TeamID:       "1",
		URL:          "https://app.clickup.com/t/abc",
		ListID:       "l1",
		ProjectID:    "f1",
		FolderID:     "f1",
		SpaceID:      "s1",
	}
	if err := db.UpsertTasks(ctx, []schema.TaskRow{row}); err != nil {
		t.Fatalf("UpsertTasks() failed: %v", err)
	}

	got, err := db.GetTask(ctx, "abc")
	if err != nil {
		t.Fatalf("GetTask() failed: %v", err)
	}
	if diff := cmp.Diff(&row, got); diff != "" {
		t.Errorf("task mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsertTimeEntries_EndColumn(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	row := schema.TimeEntryRow{
		ID:       "te1",
		WID:      "1",
		UserID:   7,
		TeamID:   "1",
		Start:    "2024-01-01T10:00:00Z",
		End:      strPtr("2024-01-01T11:00:00Z"),
		Duration: 3600,
		Tags:     schema.JSONText(`[]`),
		Source:   "clickup",
	}
	if err := db.UpsertTimeEntries(ctx, []schema.TimeEntryRow{row}); err != nil {
		t.Fatalf("UpsertTimeEntries() failed: %v", err)
	}

	got, err := db.GetTimeEntry(ctx, "te1")
	if err != nil {
		t.Fatalf("GetTimeEntry() failed: %v", err)
	}
	if diff := cmp.Diff(&row, got); diff != "" {
		t.Errorf("time entry mismatch (-want +got):\n%s", diff)
	}
	if got.TaskID != nil {
		t.Errorf("TaskID = %q, want nil", *got.TaskID)
	}
}

func TestUpsert_Empty(t *testing.T) {
	db := openTestDB(t)

	if err := db.UpsertLists(context.Background(), nil); err != nil {
		t.Errorf("UpsertLists(nil) failed: %v", err)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetTask(context.Background(), "missing")
	if err == nil {
		t.Fatal("GetTask() succeeded, want error")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
}

func TestAddForeignKey_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	fk := ForeignKey{Table: TableTasks, Column: "list_id", OtherTable: TableLists, OtherColumn: "id"}
	for i := 0; i < 2; i++ {
		if err := db.AddForeignKey(ctx, fk); err != nil {
			t.Fatalf("AddForeignKey() #%d failed: %v", i, err)
		}
	}

	fks, err := db.ForeignKeys(ctx)
	if err != nil {
		t.Fatalf("ForeignKeys() failed: %v", err)
	}
	if diff := cmp.Diff([]ForeignKey{fk}, fks); diff != "" {
		t.Errorf("ForeignKeys() mismatch (-want +got):\n%s", diff)
	}
}

func TestAddForeignKey_UnknownTable(t *testing.T) {
	db := openTestDB(t)

	err := db.AddForeignKey(context.Background(), ForeignKey{
		Table: "nope", Column: "x", OtherTable: TableTasks, OtherColumn: "id",
	})
	if err == nil {
		t.Fatal("AddForeignKey() succeeded, want error")
	}
}

func TestCounts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	spaces := []schema.SpaceRow{
		{ID: "s1", TeamID: "1", Name: "One"},
		{ID: "s2", TeamID: "1", Name: "Two"},
	}
	if err := db.UpsertSpaces(ctx, spaces); err != nil {
		t.Fatalf("UpsertSpaces() failed: %v", err)
	}

	counts, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() failed: %v", err)
	}
	want := map[string]int{
		TableTeams: 0, TableMembers: 0, TableSpaces: 2, TableFolders: 0,
		TableLists: 0, TableTasks: 0, TableTimeEntries: 0,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("Counts() mismatch (-want +got):\n%s", diff)
	}

	ids, err := db.SpaceIDs(ctx)
	if err != nil {
		t.Fatalf("SpaceIDs() failed: %v", err)
	}
	if diff := cmp.Diff([]string{"s1", "s2"}, ids); diff != "" {
		t.Errorf("SpaceIDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestCount_UnknownTable(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.Count(context.Background(), "sqlite_master"); err == nil {
		t.Error("Count() succeeded for non-entity table, want error")
	}
}

func TestUpsertSQL(t *testing.T) {
	got := membersTable.upsertSQL()

	for _, want := range []string{
		`INSERT INTO "members"`,
		`ON CONFLICT("id", "team_id")`,
		`"email" = excluded."email"`,
		`:profile_picture`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("upsertSQL() = %q, missing %q", got, want)
		}
	}
	if strings.Contains(got, `"id" = excluded`) {
		t.Errorf("upsertSQL() updates a key column: %q", got)
	}
}

func TestCounts_WithoutSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	if _, err := db.conn.ExecContext(ctx, `CREATE TABLE "teams" (id TEXT PRIMARY KEY)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	counts, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() failed: %v", err)
	}
	if diff := cmp.Diff(map[string]int{TableTeams: 0}, counts); diff != "" {
		t.Errorf("Counts() mismatch (-want +got):\n%s", diff)
	}

	fks, err := db.ForeignKeys(ctx)
	if err != nil {
		t.Fatalf("ForeignKeys() failed: %v", err)
	}
	if len(fks) != 0 {
		t.Errorf("ForeignKeys() = %v, want none", fks)
	}

	var tables int
	if err := db.conn.GetContext(ctx, &tables, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'`); err != nil {
		t.Fatalf("failed to count tables: %v", err)
	}
	if tables != 1 {
		t.Errorf("database has %d tables, want 1 (reads must not create any)", tables)
	}
}
