package chart

import (
	"cmp"
	"slices"
	"time"

	"github.com/matzehuels/ganttrow/pkg/core/gantt/aggregate"
	"github.com/matzehuels/ganttrow/pkg/core/recurrence"
	"github.com/matzehuels/ganttrow/pkg/core/timeline"
	"github.com/matzehuels/ganttrow/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

// Grouping keys for flat record lists.
const (
	GroupByResponsible = "responsible"
	GroupByGroupKey    = "group_key"
)

// UnassignedRowID is the row holding records without a grouping key.
const UnassignedRowID = "__unassigned__"

// =============================================================================
// Chart - Input Format
// =============================================================================

// Chart is the canonical input format: a scale, an optional window and the
// rows to lay out.
type Chart struct {
	Title         string                   `json:"title,omitempty" yaml:"title,omitempty" toml:"title"`
	Scale         Scale                    `json:"scale" yaml:"scale" toml:"scale"`
	Window        *Window                  `json:"window,omitempty" yaml:"window,omitempty" toml:"window"`
	Consolidation *aggregate.Consolidation `json:"consolidation,omitempty" yaml:"consolidation,omitempty" toml:"consolidation"`
	Rows          []Row                    `json:"rows,omitempty" yaml:"rows,omitempty" toml:"rows"`

	// Flat records, grouped into rows by GroupBy.
	Records  []Record `json:"records,omitempty" yaml:"records,omitempty" toml:"records"`
	GroupBy  string   `json:"group_by,omitempty" yaml:"group_by,omitempty" toml:"group_by"`
	Collapse bool     `json:"collapse,omitempty" yaml:"collapse,omitempty" toml:"collapse"`
}

// Scale names the unit and precision.
type Scale struct {
	Unit      string `json:"unit" yaml:"unit" toml:"unit"`
	Precision string `json:"precision,omitempty" yaml:"precision,omitempty" toml:"precision"`
}

// Window is the visible date range.
type Window struct {
	Start time.Time `json:"start" yaml:"start" toml:"start"`
	Stop  time.Time `json:"stop" yaml:"stop" toml:"stop"`
}

// Row is one row of the chart. Rows with children are group rows.
type Row struct {
	ID               string      `json:"id" yaml:"id" toml:"id"`
	Name             string      `json:"name,omitempty" yaml:"name,omitempty" toml:"name"`
	Grouped          bool        `json:"grouped,omitempty" yaml:"grouped,omitempty" toml:"grouped"`
	Records          []Record    `json:"records,omitempty" yaml:"records,omitempty" toml:"records"`
	Unavailabilities []Period    `json:"unavailabilities,omitempty" yaml:"unavailabilities,omitempty" toml:"unavailabilities"`
	Recurring        []Recurring `json:"recurring,omitempty" yaml:"recurring,omitempty" toml:"recurring"`
	Children         []Row       `json:"children,omitempty" yaml:"children,omitempty" toml:"children"`
}

// DisplayName returns the name if set, otherwise the ID.
func (r *Row) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// Record is a scheduled item.
type Record struct {
	ID          string             `json:"id" yaml:"id" toml:"id"`
	Name        string             `json:"name,omitempty" yaml:"name,omitempty" toml:"name"`
	Start       time.Time          `json:"start" yaml:"start" toml:"start"`
	Stop        time.Time          `json:"stop" yaml:"stop" toml:"stop"`
	Responsible string             `json:"responsible,omitempty" yaml:"responsible,omitempty" toml:"responsible"`
	GroupKey    string             `json:"group_key,omitempty" yaml:"group_key,omitempty" toml:"group_key"`
	Values      map[string]float64 `json:"values,omitempty" yaml:"values,omitempty" toml:"values"`
	Flags       map[string]bool    `json:"flags,omitempty" yaml:"flags,omitempty" toml:"flags"`
}

// Timeline converts the record to its internal form.
func (r Record) Timeline() timeline.Record {
	return timeline.Record{
		ID:          r.ID,
		Name:        r.Name,
		Start:       r.Start,
		Stop:        r.Stop,
		Responsible: r.Responsible,
		GroupKey:    r.GroupKey,
		Values:      r.Values,
		Flags:       r.Flags,
	}
}

// Period is a fixed unavailability period.
type Period struct {
	Start time.Time `json:"start" yaml:"start" toml:"start"`
	Stop  time.Time `json:"stop" yaml:"stop" toml:"stop"`
}

// Recurring is a recurring unavailability period.
type Recurring struct {
	RRule    string    `json:"rrule" yaml:"rrule" toml:"rrule"`
	DTStart  time.Time `json:"dtstart" yaml:"dtstart" toml:"dtstart"`
	Duration Duration  `json:"duration" yaml:"duration" toml:"duration"`
}

// Rule converts the entry to a recurrence rule.
func (r Recurring) Rule() recurrence.Rule {
	return recurrence.Rule{RRule: r.RRule, DTStart: r.DTStart, Duration: time.Duration(r.Duration)}
}

// Duration is a time.Duration written as "8h30m" in chart files.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "duration %q", text)
	}
	*d = Duration(v)
	return nil
}

// =============================================================================
// Grouping
// =============================================================================

// GroupRecords builds one row per distinct value of the grouping key, in
// key order. Records without a key go to a trailing "Unassigned" row. With
// collapse set, every row is a group row.
func GroupRecords(records []Record, by string, collapse bool) ([]Row, error) {
	key, err := groupKeyFunc(by)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string][]Record)
	var keys []string
	for _, r := range records {
		k := key(r)
		if _, seen := byKey[k]; !seen {
			keys = append(keys, k)
		}
		byKey[k] = append(byKey[k], r)
	}
	slices.SortFunc(keys, func(a, b string) int {
		// Unassigned sorts last.
		if (a == "") != (b == "") {
			if a == "" {
				return 1
			}
			return -1
		}
		return cmp.Compare(a, b)
	})

	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		row := Row{ID: k, Name: k, Grouped: collapse, Records: byKey[k]}
		if k == "" {
			row.ID, row.Name = UnassignedRowID, "Unassigned"
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func groupKeyFunc(by string) (func(Record) string, error) {
	switch by {
	case GroupByResponsible, "":
		return func(r Record) string { return r.Responsible }, nil
	case GroupByGroupKey:
		return func(r Record) string { return r.GroupKey }, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown group_by %q (want %s or %s)", by, GroupByResponsible, GroupByGroupKey)
}

// =============================================================================
// Helpers
// =============================================================================

// Walk visits rows depth-first, parents before children.
func Walk(rows []Row, fn func(r *Row, depth int, parent string)) {
	var walk func(rows []Row, depth int, parent string)
	walk = func(rows []Row, depth int, parent string) {
		for i := range rows {
			fn(&rows[i], depth, parent)
			walk(rows[i].Children, depth+1, rows[i].ID)
		}
	}
	walk(rows, 0, "")
}

// Descendants returns the records of r and of all its descendants.
func (r *Row) Descendants() []Record {
	out := slices.Clone(r.Records)
	for i := range r.Children {
		out = append(out, r.Children[i].Descendants()...)
	}
	return out
}

// EarliestStart returns the earliest record start in the chart, or false
// when the chart has no records.
func (c *Chart) EarliestStart() (time.Time, bool) {
	var (
		earliest time.Time
		found    bool
	)
	consider := func(records []Record) {
		for _, r := range records {
			if !found || r.Start.Before(earliest) {
				earliest, found = r.Start, true
			}
		}
	}
	consider(c.Records)
	Walk(c.Rows, func(r *Row, _ int, _ string) { consider(r.Records) })
	return earliest, found
}
