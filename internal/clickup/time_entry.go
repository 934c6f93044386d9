package clickup

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/schema"
)

// GetTimeEntriesWithinDateRange returns the time entries of a team between
// start and end. When assignee is non-nil only that user's entries are
// returned; otherwise the API returns the token owner's entries.
func (c *Client) GetTimeEntriesWithinDateRange(ctx context.Context, teamID string, start, end time.Time, assignee *int64) ([]schema.TimeEntry, error) {
	path := fmt.Sprintf("team/%s/time_entries", teamID)
	params := Params{
		"start_date": TimeToPosix(start),
		"end_date":   TimeToPosix(end),
	}
	if assignee != nil {
		params["assignee"] = *assignee
	}

	body, err := c.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return decodeList[schema.TimeEntry](path, body, "data")
}

// TimeToPosix formats t as milliseconds since the Unix epoch.
func TimeToPosix(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// DateToPosix formats midnight (local time) of the given date as milliseconds
// since the Unix epoch.
func DateToPosix(year int, month time.Month, day int) string {
	return TimeToPosix(time.Date(year, month, day, 0, 0, 0, 0, time.Local))
}

// PosixToTime parses a millisecond timestamp as sent by ClickUp.
func PosixToTime(timestamp string) (time.Time, error) {
	ms, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid millisecond timestamp", goerr.V("timestamp", timestamp))
	}
	return time.UnixMilli(ms), nil
}
