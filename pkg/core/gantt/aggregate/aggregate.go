// Package aggregate builds the synthetic count pills of group rows.
//
// A group row does not show its records one by one. Instead, every sub-cell
// of the visible grid is checked for the records overlapping it, and the
// number of overlapping records becomes a pill. Adjacent sub-cells with the
// same count that share at least one record are merged into a single pill,
// so a steady workload reads as one bar.
//
// When a [Consolidation] is configured, each pill also carries the sum of a
// numeric field over its records, compared against a maximum, and the grey
// count shade is replaced by a success or danger status. A zero maximum
// flags every pill whose sum is positive.
package aggregate

import (
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/ganttrow/pkg/core/timeline"
	"github.com/matzehuels/ganttrow/pkg/errors"
)

// Shade bounds: one record is drawn light, the busiest pill dark.
const (
	MinShade = 100
	MaxShade = 215
)

// namespace scopes the name-based UUIDs given to aggregate pills.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/ganttrow/aggregate"))

// Consolidation sums Field over the records of each aggregate, skipping
// records whose ExcludeField flag is set.
type Consolidation struct {
	Field        string  `json:"field" yaml:"field" toml:"field"`
	ExcludeField string  `json:"exclude_field,omitempty" yaml:"exclude_field,omitempty" toml:"exclude_field"`
	MaxValue     float64 `json:"max_value,omitempty" yaml:"max_value,omitempty" toml:"max_value"`
}

// Validate checks field names and the maximum.
func (c *Consolidation) Validate() error {
	if c == nil {
		return nil
	}
	if err := errors.ValidateFieldName(c.Field); err != nil {
		return err
	}
	if c.ExcludeField != "" {
		if err := errors.ValidateFieldName(c.ExcludeField); err != nil {
			return err
		}
	}
	if c.MaxValue < 0 || math.IsNaN(c.MaxValue) || math.IsInf(c.MaxValue, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "consolidation max value must be a finite non-negative number, got %v", c.MaxValue)
	}
	return nil
}

func (c *Consolidation) sum(records []timeline.Record) float64 {
	var total float64
	for _, r := range records {
		if r.Flag(c.ExcludeField) {
			continue
		}
		total += r.Value(c.Field)
	}
	return total
}

// Aggregate returns the count pills of a group row over the given sub-cells.
// Cells must be ordered and contiguous; records must already be validated.
// Pills are returned at level 0 without geometry.
func Aggregate(rowID string, records []timeline.Record, cells []timeline.Window, cons *Consolidation) []timeline.Pill {
	if len(records) == 0 || len(cells) == 0 {
		return nil
	}

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b timeline.Record) int {
		return a.Start.Compare(b.Start)
	})

	var (
		pills   []timeline.Pill
		sources []map[string]bool
	)
	for _, cell := range cells {
		selection := overlapping(sorted, cell)
		if len(selection) == 0 {
			continue
		}

		if n := len(pills); n > 0 && pills[n-1].Count == len(selection) && sharesAny(sources[n-1], selection) {
			prev := &pills[n-1]
			prev.Stop = cell.Stop
			for _, r := range selection {
				if !sources[n-1][r.ID] {
					sources[n-1][r.ID] = true
					prev.AggregatedPills = append(prev.AggregatedPills, r.Interval())
				}
			}
			if cons != nil {
				prev.ConsolidationValue = math.Max(prev.ConsolidationValue, cons.sum(selection))
			}
			continue
		}

		p, ids := newPill(selection, cell)
		if cons != nil {
			p.Consolidated = true
			p.ConsolidationValue = cons.sum(selection)
		}
		pills = append(pills, p)
		sources = append(sources, ids)
	}

	finish(rowID, pills, cons)
	return pills
}

func overlapping(records []timeline.Record, cell timeline.Window) []timeline.Record {
	var out []timeline.Record
	for _, r := range records {
		if !r.Start.Before(cell.Stop) {
			// Sorted by start: nothing later overlaps this cell.
			break
		}
		if r.Interval().Overlaps(cell.Start, cell.Stop) {
			out = append(out, r)
		}
	}
	return out
}

func sharesAny(ids map[string]bool, selection []timeline.Record) bool {
	for _, r := range selection {
		if ids[r.ID] {
			return true
		}
	}
	return false
}

func newPill(selection []timeline.Record, cell timeline.Window) (timeline.Pill, map[string]bool) {
	minStart, maxStop := selection[0].Start, selection[0].Stop
	ids := make(map[string]bool, len(selection))
	agg := make([]timeline.Interval, 0, len(selection))
	for _, r := range selection {
		if r.Start.Before(minStart) {
			minStart = r.Start
		}
		if r.Stop.After(maxStop) {
			maxStop = r.Stop
		}
		ids[r.ID] = true
		agg = append(agg, r.Interval())
	}

	return timeline.Pill{
		Interval: timeline.Interval{
			Start: later(minStart, cell.Start),
			Stop:  earlier(maxStop, cell.Stop),
		},
		Count:           len(selection),
		AggregatedPills: agg,
	}, ids
}

// finish assigns ids, the consolidation verdict and the shade.
func finish(rowID string, pills []timeline.Pill, cons *Consolidation) {
	maxCount := 0
	for _, p := range pills {
		maxCount = max(maxCount, p.Count)
	}

	for i := range pills {
		p := &pills[i]
		p.ID = ID(rowID, p.Start, p.Stop)
		if cons == nil {
			p.Shade = Shade(p.Count, maxCount)
			continue
		}
		p.ConsolidationMaxValue = cons.MaxValue
		p.ConsolidationExceeded = p.ConsolidationValue > cons.MaxValue
		p.Status = timeline.StatusSuccess
		if p.ConsolidationExceeded {
			p.Status = timeline.StatusDanger
		}
	}
}

// Shade maps a count to a grey level between MaxShade (one record) and
// MinShade. A zero maxCount yields MaxShade.
func Shade(count, maxCount int) int {
	if maxCount <= 0 || count <= 1 {
		return MaxShade
	}
	frac := float64(count-1) / float64(maxCount)
	return MaxShade - int(math.Round(frac*(MaxShade-MinShade)))
}

// ID returns the deterministic id of the aggregate of rowID over [start, stop).
func ID(rowID string, start, stop time.Time) string {
	name := rowID + "|" + start.UTC().Format(time.RFC3339Nano) + "|" + stop.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(namespace, []byte(name)).String()
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
