package config

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/sync"
)

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseTime parses a window bound relative to now. It accepts RFC 3339
// timestamps, YYYY-MM-DD dates (midnight UTC) and English expressions
// understood by olebedev/when. An empty string yields the zero time.
func ParseTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}

	r, err := dateParser.Parse(s, now)
	if err != nil {
		return time.Time{}, goerr.Wrap(ErrInvalidDate, err.Error(), goerr.V("value", s))
	}
	if r == nil {
		return time.Time{}, goerr.Wrap(ErrInvalidDate, "unrecognized date", goerr.V("value", s))
	}
	return r.Time.UTC(), nil
}

// Window resolves the time entry settings into sync options.
func (c TimeEntriesConfig) Window(now time.Time) (sync.Options, error) {
	since, err := ParseTime(c.Since, now)
	if err != nil {
		return sync.Options{}, goerr.Wrap(err, "invalid time_entries.since")
	}
	until, err := ParseTime(c.Until, now)
	if err != nil {
		return sync.Options{}, goerr.Wrap(err, "invalid time_entries.until")
	}
	chunk, err := ParseDuration(c.Chunk)
	if err != nil {
		return sync.Options{}, goerr.Wrap(err, "invalid time_entries.chunk")
	}

	if !since.IsZero() && !until.IsZero() && until.Before(since) {
		return sync.Options{}, goerr.Wrap(ErrInvalidDate, "until is before since",
			goerr.V("since", since), goerr.V("until", until))
	}

	return sync.Options{
		Since: since,
		Until: until,
		Chunk: chunk,
	}, nil
}
