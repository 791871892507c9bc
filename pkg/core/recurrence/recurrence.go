// Package recurrence expands recurring unavailability, written as RFC 5545
// recurrence rules, into concrete periods.
//
// A weekly day off or a nightly maintenance slot is easier to state once
// than to list; [Expand] turns such a rule into the periods that touch the
// visible window so the unavailability merger can treat them like any other.
package recurrence

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/matzehuels/ganttrow/pkg/core/timeline"
	"github.com/matzehuels/ganttrow/pkg/errors"
)

// Rule is a recurring period: every occurrence of RRule starting from
// DTStart lasts Duration.
type Rule struct {
	RRule    string        `json:"rrule" yaml:"rrule" toml:"rrule"`
	DTStart  time.Time     `json:"dtstart" yaml:"dtstart" toml:"dtstart"`
	Duration time.Duration `json:"duration" yaml:"duration" toml:"duration"`
}

// Validate parses the rule and checks its start and duration.
func (r Rule) Validate() error {
	_, err := r.parse()
	return err
}

func (r Rule) parse() (*rrule.RRule, error) {
	if r.DTStart.IsZero() {
		return nil, errors.New(errors.ErrCodeInvalidRecurrence, "recurrence %q: dtstart is required", r.RRule)
	}
	if r.Duration <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidRecurrence, "recurrence %q: duration must be positive, got %s", r.RRule, r.Duration)
	}
	rr, err := rrule.StrToRRule(strings.TrimPrefix(strings.TrimSpace(r.RRule), "RRULE:"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRecurrence, err, "recurrence %q", r.RRule)
	}
	rr.DTStart(r.DTStart)
	return rr, nil
}

// Expand returns the occurrences of r that overlap the window, in order.
// Occurrences that began before the window but are still running are
// included.
func Expand(r Rule, w timeline.Window) ([]timeline.Period, error) {
	rr, err := r.parse()
	if err != nil {
		return nil, err
	}
	var out []timeline.Period
	for _, start := range rr.Between(w.Start.Add(-r.Duration), w.Stop, true) {
		p := timeline.Period{Start: start, Stop: start.Add(r.Duration)}
		if p.Overlaps(w.Start, w.Stop) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ExpandAll expands every rule and appends the results to fixed.
func ExpandAll(fixed []timeline.Period, rules []Rule, w timeline.Window) ([]timeline.Period, error) {
	out := append([]timeline.Period(nil), fixed...)
	for _, r := range rules {
		periods, err := Expand(r, w)
		if err != nil {
			return nil, err
		}
		out = append(out, periods...)
	}
	return out, nil
}
