package sync

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultWindowYears is how far the default time entry window reaches into
// the past and the future.
const DefaultWindowYears = 10

// Window is a time range [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// DefaultWindow returns the window of DefaultWindowYears around now, in UTC.
func DefaultWindow(now time.Time) Window {
	now = now.UTC()
	return Window{
		Start: now.AddDate(-DefaultWindowYears, 0, 0),
		End:   now.AddDate(DefaultWindowYears, 0, 0),
	}
}

// Validate checks that the window is not inverted.
func (w Window) Validate() error {
	if w.End.Before(w.Start) {
		return goerr.New("window ends before it starts",
			goerr.V("start", w.Start), goerr.V("end", w.End))
	}
	return nil
}

// Split cuts the window into consecutive sub-windows of at most size. Each
// sub-window starts where the previous one ended and the last one ends at
// w.End. A non-positive size returns the window unchanged.
func (w Window) Split(size time.Duration) []Window {
	if size <= 0 || w.End.Sub(w.Start) <= size {
		return []Window{w}
	}

	var windows []Window
	for start := w.Start; start.Before(w.End); start = start.Add(size) {
		end := start.Add(size)
		if end.After(w.End) {
			end = w.End
		}
		windows = append(windows, Window{Start: start, End: end})
	}
	return windows
}
