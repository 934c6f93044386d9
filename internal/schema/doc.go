// Package schema defines the typed records decoded from ClickUp API payloads
// and the flat rows written to the local SQLite store.
//
// # Records
//
// Records mirror the shapes returned by the ClickUp v2 REST API. Decoding is
// done with encoding/json; each record has a Validate method that checks the
// fields the rest of the pipeline relies on (IDs, names, emails), since the
// JSON decoder alone does not report missing keys.
//
// ClickUp is loose with scalar encodings: task order indexes arrive as decimal
// strings, timestamps as millisecond strings, and time-entry durations as
// either numbers or strings. FlexInt, FlexFloat, Millis and Duration accept
// both forms.
//
// # Rows
//
// Rows are the flattened, storage-facing form of records: nested references
// (a task's list, a list's folder, a time entry's user) are replaced with
// id-only foreign keys, and nested structures without a table of their own
// are kept as JSON text columns.
//
//	task.List.ID   -> TaskRow.ListID
//	entry.Task     -> TimeEntryRow.TaskID (NULL when the entry has no task)
//	entry.Duration -> TimeEntryRow.Duration (float seconds)
package schema
