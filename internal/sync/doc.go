// Package sync copies a ClickUp account into the local SQLite store.
//
// Overview
//
// A run walks the ClickUp hierarchy top-down and writes each collection
// before fetching the next, because later stages read the ids of earlier
// ones back from the store:
//
//	teams (+ members)
//	     ↓  team ids from store
//	spaces
//	     ↓  space ids from store
//	folders (+ their lists), folderless lists
//	     ↓  team ids from store
//	tasks (closed tasks and subtasks included)
//	     ↓
//	time entries (per team, over a date window)
//
// Flattening
//
// The Flatten* functions turn API records into store rows without touching
// storage. Nested references (a task's list, a folder's space) are reduced to
// their ids, nested collections that have no table of their own (statuses,
// tags, custom fields) are kept as JSON columns, and a team's members become
// one row per (team, user).
//
// Relationships
//
// After each collection is written the syncer declares its foreign keys in
// the store. Declarations are advisory and idempotent; nothing checks that a
// referenced row exists.
//
// Usage
//
//	database, err := store.Open("clickup.db")
//	if err != nil {
//	    return err
//	}
//	defer database.Close()
//
//	if err := database.InitSchema(ctx); err != nil {
//	    return err
//	}
//
//	syncer := sync.New(database, clickup.New(token), nil, sync.Options{})
//	stats, err := syncer.Run(ctx)
package sync
