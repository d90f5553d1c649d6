// Package report computes the date windows used by the daily and ranged
// activity views.
package report

import (
	"time"

	"tasktracker/internal/apperr"
	"tasktracker/internal/models"
)

// Window is a half-open timestamp range [From, To) together with the
// calendar dates it was built from.
type Window struct {
	Start models.Date
	End   models.Date
	From  time.Time
	To    time.Time
}

// Label renders the range the way the report echoes it back.
func (w Window) Label() string {
	return w.Start.String() + " to " + w.End.String()
}

// DayBounds returns the window covering the calendar day of now in loc.
func DayBounds(now time.Time, loc *time.Location) Window {
	day := models.DateOf(now.In(loc))
	from := day.Midnight(loc)
	return Window{
		Start: day,
		End:   day,
		From:  from,
		To:    from.AddDate(0, 0, 1),
	}
}

// RangeBounds returns the window from start 00:00:00 through the end of the
// end date, both inclusive.
func RangeBounds(start, end models.Date, loc *time.Location) (Window, error) {
	if end.Before(start.Time) {
		return Window{}, apperr.Validation("end_date", "the end date must be a date after or equal to start date")
	}
	return Window{
		Start: start,
		End:   end,
		From:  start.Midnight(loc),
		To:    end.Midnight(loc).AddDate(0, 0, 1),
	}, nil
}

// MonthToDate returns the first day of now's month through now's date.
func MonthToDate(now time.Time, loc *time.Location) (models.Date, models.Date) {
	local := now.In(loc)
	today := models.DateOf(local)
	first := models.NewDate(local.Year(), local.Month(), 1)
	return first, today
}
