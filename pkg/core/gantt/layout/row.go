package layout

import (
	"slices"
	"sort"
	"time"

	"github.com/matzehuels/ganttrow/pkg/core/gantt/aggregate"
	"github.com/matzehuels/ganttrow/pkg/core/gantt/geometry"
	"github.com/matzehuels/ganttrow/pkg/core/gantt/level"
	"github.com/matzehuels/ganttrow/pkg/core/gantt/unavail"
	"github.com/matzehuels/ganttrow/pkg/core/scale"
	"github.com/matzehuels/ganttrow/pkg/core/timeline"
	"github.com/matzehuels/ganttrow/pkg/errors"
)

const (
	DefaultPillHeight  = 29
	DefaultLevelHeight = DefaultPillHeight + 2
)

// RowInput is everything needed to lay out one row.
type RowInput struct {
	ID      string
	Name    string
	Grouped bool

	Records          []timeline.Record
	Unavailabilities []timeline.Period

	Scale         scale.Config
	Window        timeline.Window
	Consolidation *aggregate.Consolidation
}

// Row is a laid-out row.
type Row struct {
	ID      string
	Name    string
	Grouped bool

	Pills []timeline.Pill
	Slots []timeline.Slot
	// Level is the number of stacking levels; always 0 for group rows.
	Level            int
	Unavailabilities []timeline.Period
	Height           int
}

// Option configures BuildRow.
type Option func(*options)

type options struct {
	levelHeight int
	pillHeight  int
	snap        bool
}

// WithLevelHeight sets the vertical distance between stacking levels.
func WithLevelHeight(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.levelHeight = px
		}
	}
}

// WithPillHeight sets the rendered height of a pill.
func WithPillHeight(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.pillHeight = px
		}
	}
}

// WithoutSnapping disables rounding record times to the grid.
func WithoutSnapping() Option {
	return func(o *options) { o.snap = false }
}

// BuildRow lays out a single row.
func BuildRow(in RowInput, opts ...Option) (Row, error) {
	o := options{
		levelHeight: DefaultLevelHeight,
		pillHeight:  DefaultPillHeight,
		snap:        true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := validate(in); err != nil {
		return Row{}, err
	}

	visible := clip(in.Records, in.Window)
	if o.snap {
		for i := range visible {
			snapRecord(&visible[i].Record, in.Scale, in.Window)
		}
	}

	row := Row{
		ID:               in.ID,
		Name:             in.Name,
		Grouped:          in.Grouped,
		Slots:            in.Scale.Slots(in.Window),
		Unavailabilities: periodsIn(in.Unavailabilities, in.Window),
	}

	if in.Grouped {
		records := make([]timeline.Record, len(visible))
		for i, v := range visible {
			records[i] = v.Record
		}
		row.Pills = aggregate.Aggregate(in.ID, records, in.Scale.Grid(in.Window), in.Consolidation)
	} else {
		row.Pills = leafPills(visible)
		row.Level = level.AssignPills(row.Pills)
	}

	for i := range row.Pills {
		p := &row.Pills[i]
		if err := geometry.Apply(p, in.Scale.Unit); err != nil {
			return Row{}, err
		}
		p.TopPadding = p.Level * o.levelHeight
		p.Height = o.pillHeight
	}

	anchor(row.Pills, row.Slots)
	unavail.Annotate(row.Slots, row.Unavailabilities, in.Scale.Unit, in.Scale.Precision)
	row.Height = max(row.Level, 1) * o.levelHeight
	return row, nil
}

func validate(in RowInput) error {
	if err := errors.ValidateID(in.ID); err != nil {
		return err
	}
	if err := in.Scale.Validate(); err != nil {
		return err
	}
	if err := in.Window.Validate(); err != nil {
		return err
	}
	if err := in.Consolidation.Validate(); err != nil {
		return err
	}
	for _, r := range in.Records {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	for _, p := range in.Unavailabilities {
		if p.Stop.Before(p.Start) {
			return errors.New(errors.ErrCodeInvalidRange, "row %q: unavailability stop %s is before start %s",
				in.ID, p.Stop.Format(time.RFC3339), p.Start.Format(time.RFC3339))
		}
	}
	return nil
}

// clipped is a record restricted to the window.
type clipped struct {
	timeline.Record
	startClipped bool
	stopClipped  bool
}

func clip(records []timeline.Record, w timeline.Window) []clipped {
	out := make([]clipped, 0, len(records))
	for _, r := range records {
		c, startClipped, stopClipped, ok := w.Clip(r)
		if !ok {
			continue
		}
		out = append(out, clipped{Record: c, startClipped: startClipped, stopClipped: stopClipped})
	}
	return out
}

// snapRecord rounds the record to the grid and keeps it inside the window.
// A record that snapping collapses is widened by one sub-cell.
func snapRecord(r *timeline.Record, c scale.Config, w timeline.Window) {
	if c.Unit == scale.Year {
		return
	}
	wasDegenerate := !r.Stop.After(r.Start)

	start := clampTime(c.SnapTime(r.Start), w)
	stop := clampTime(c.SnapTime(r.Stop), w)
	if !wasDegenerate && !stop.After(start) {
		if next := start.Add(c.SubCell(start)); !next.After(w.Stop) {
			stop = next
		} else {
			start = clampTime(stop.Add(-c.SubCell(stop.Add(-time.Nanosecond))), w)
		}
	}
	r.Start, r.Stop = start, stop
}

func clampTime(t time.Time, w timeline.Window) time.Time {
	if t.Before(w.Start) {
		return w.Start
	}
	if t.After(w.Stop) {
		return w.Stop
	}
	return t
}

func leafPills(records []clipped) []timeline.Pill {
	pills := make([]timeline.Pill, len(records))
	for i, r := range records {
		pills[i] = timeline.Pill{
			Interval:           r.Interval(),
			Name:               r.Name,
			Responsible:        r.Responsible,
			GroupKey:           r.GroupKey,
			DisableStartResize: r.startClipped,
			DisableStopResize:  r.stopClipped,
		}
	}
	slices.SortStableFunc(pills, func(a, b timeline.Pill) int {
		return a.Start.Compare(b.Start)
	})
	return pills
}

// anchor sets SlotIndex on each pill and records the pill in its slot.
// Pills starting before the first slot anchor to it.
func anchor(pills []timeline.Pill, slots []timeline.Slot) {
	if len(slots) == 0 {
		return
	}
	for i := range pills {
		idx := sort.Search(len(slots), func(j int) bool {
			return slots[j].Stop.After(pills[i].Start)
		})
		if idx == len(slots) {
			idx = len(slots) - 1
		}
		pills[i].SlotIndex = idx
		slots[idx].Pills = append(slots[idx].Pills, i)
	}
}

func periodsIn(periods []timeline.Period, w timeline.Window) []timeline.Period {
	var out []timeline.Period
	for _, p := range periods {
		if p.Overlaps(w.Start, w.Stop) {
			out = append(out, p)
		}
	}
	return out
}
