package scale

import (
	"time"

	"github.com/matzehuels/ganttrow/pkg/core/timeline"
)

// SlotStart returns the start of the slot containing t: the hour for the
// day scale, midnight for week and month, the first of the month for year.
// The result keeps t's location.
func (c Config) SlotStart(t time.Time) time.Time {
	y, mo, d := t.Date()
	switch c.Unit {
	case Day:
		return time.Date(y, mo, d, t.Hour(), 0, 0, 0, t.Location())
	case Year:
		return time.Date(y, mo, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
	}
}

// NextSlot returns the start of the slot after the one beginning at start.
func (c Config) NextSlot(start time.Time) time.Time {
	switch c.Unit {
	case Day:
		return start.Add(time.Hour)
	case Year:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// Slots returns the slots covering the window, in order. The first slot
// starts at the slot boundary at or before the window start.
func (c Config) Slots(w timeline.Window) []timeline.Slot {
	if !w.Stop.After(w.Start) {
		return nil
	}
	var slots []timeline.Slot
	for s := c.SlotStart(w.Start); s.Before(w.Stop); {
		next := c.NextSlot(s)
		slots = append(slots, timeline.Slot{Start: s, Stop: next})
		s = next
	}
	return slots
}

// Cells splits a slot into its CellPart sub-cells.
func (c Config) Cells(slot timeline.Slot) []timeline.Window {
	n := c.CellPart()
	size := slot.Stop.Sub(slot.Start) / time.Duration(n)
	cells := make([]timeline.Window, n)
	for i := range n {
		start := slot.Start.Add(time.Duration(i) * size)
		stop := start.Add(size)
		if i == n-1 {
			stop = slot.Stop
		}
		cells[i] = timeline.Window{Start: start, Stop: stop}
	}
	return cells
}

// Grid returns every sub-cell of every slot covering the window.
func (c Config) Grid(w timeline.Window) []timeline.Window {
	var cells []timeline.Window
	for _, s := range c.Slots(w) {
		cells = append(cells, c.Cells(s)...)
	}
	return cells
}

// SubCell returns the duration of the sub-cell containing t.
func (c Config) SubCell(t time.Time) time.Duration {
	start := c.SlotStart(t)
	return c.NextSlot(start).Sub(start) / time.Duration(c.CellPart())
}

// SnapTime rounds t to the nearest sub-cell boundary; halfway rounds up.
// The year scale does not snap.
func (c Config) SnapTime(t time.Time) time.Time {
	if c.Unit == Year {
		return t
	}
	start := c.SlotStart(t)
	size := c.SubCell(t)
	if size <= 0 {
		return t
	}
	offset := t.Sub(start)
	n := offset / size
	if offset%size*2 >= size {
		n++
	}
	return start.Add(n * size)
}

// Shift moves t by units of the snap unit. It translates diff values back
// into absolute times.
func (c Config) Shift(t time.Time, units int) time.Time {
	switch c.SnapUnit {
	case SnapMinute:
		return t.Add(time.Duration(units) * time.Minute)
	case SnapHour:
		return t.Add(time.Duration(units) * time.Hour)
	case SnapMonth:
		return t.AddDate(0, units, 0)
	}
	return t
}

// WindowAround returns the page of the given unit containing t: the day, the
// ISO week starting Monday, the month or the year.
func WindowAround(t time.Time, unit Unit) timeline.Window {
	y, mo, d := t.Date()
	day := time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
	switch unit {
	case Week:
		weekday := int(day.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start := day.AddDate(0, 0, 1-weekday)
		return timeline.Window{Start: start, Stop: start.AddDate(0, 0, 7)}
	case Month:
		start := time.Date(y, mo, 1, 0, 0, 0, 0, t.Location())
		return timeline.Window{Start: start, Stop: start.AddDate(0, 1, 0)}
	case Year:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, t.Location())
		return timeline.Window{Start: start, Stop: start.AddDate(1, 0, 0)}
	default:
		return timeline.Window{Start: day, Stop: day.AddDate(0, 0, 1)}
	}
}

// DaysIn returns the number of days in t's month.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
