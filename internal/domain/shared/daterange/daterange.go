package daterange

import (
	"errors"
	"time"
)

var ErrInvalidWindow = errors.New("daterange: window end must be after start")

// Window is a half-open interval [From, To). Scans and reminder checks use it
// so a timestamp falls into exactly one window.
type Window struct {
	From time.Time
	To   time.Time
}

func New(from, to time.Time) (Window, error) {
	w := Window{From: from.UTC(), To: to.UTC()}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Minute returns the window covering the minute now falls in.
func Minute(now time.Time) Window {
	from := now.UTC().Truncate(time.Minute)
	return Window{From: from, To: from.Add(time.Minute)}
}

// Before returns the window of the given length ending at t.
func Before(t time.Time, length time.Duration) Window {
	t = t.UTC()
	return Window{From: t.Add(-length), To: t}
}

func (w Window) Validate() error {
	if w.From.IsZero() || w.To.IsZero() || !w.To.After(w.From) {
		return ErrInvalidWindow
	}
	return nil
}

func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.From) && t.Before(w.To)
}

// Shift moves both bounds forward by d. A minute window shifted by the
// reminder lead selects bookings due that far ahead.
func (w Window) Shift(d time.Duration) Window {
	return Window{From: w.From.Add(d), To: w.To.Add(d)}
}
