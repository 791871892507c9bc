// Package snap converts pixel offsets from drag and resize gestures into
// signed counts of scale intervals.
//
// A drop produces an [Event] carrying the diff; translating the diff back
// into dates is left to the caller (see scale.Config.Shift).
package snap

import (
	"math"

	"github.com/matzehuels/ganttrow/pkg/core/scale"
	"github.com/matzehuels/ganttrow/pkg/errors"
)

// Diff returns round(offsetPx/cellWidthPx) * intervalSize. A non-positive
// or non-finite cell width yields 0.
//
// Halves round away from zero in both directions: +0.5 cells snaps to +1
// and -0.5 cells to -1, so left and right drags of the same distance move
// a pill symmetrically.
func Diff(offsetPx, cellWidthPx float64, intervalSize int) int {
	if cellWidthPx <= 0 || math.IsNaN(cellWidthPx) || math.IsInf(cellWidthPx, 0) {
		return 0
	}
	cells := math.Round(offsetPx / cellWidthPx)
	if math.IsNaN(cells) || math.IsInf(cells, 0) {
		return 0
	}
	return int(cells) * intervalSize
}

// CellWidth returns the width of one sub-cell given the rendered width of
// a full slot. Callers measure the reference width again whenever the
// viewport changes.
func CellWidth(referenceWidthPx float64, precision scale.Precision) float64 {
	return referenceWidthPx / float64(precision.CellPart())
}

// DiffFor is Diff with the cell width and interval size taken from c.
func DiffFor(c scale.Config, offsetPx, referenceWidthPx float64) int {
	return Diff(offsetPx, CellWidth(referenceWidthPx, c.Precision), c.IntervalSize)
}

// Action is what the drop should do with the pill.
type Action string

const (
	Reschedule Action = "reschedule"
	Copy       Action = "copy"
)

// ParseAction parses an action name. The empty string means reschedule.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case "", Reschedule:
		return Reschedule, nil
	case Copy:
		return Copy, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown action %q (want reschedule or copy)", s)
}

// Event is the payload emitted when a drag or resize is dropped.
type Event struct {
	PillID      string `json:"pill_id" yaml:"pill_id"`
	DiffUnits   int    `json:"diff_units" yaml:"diff_units"`
	OldGroupKey string `json:"old_group_key,omitempty" yaml:"old_group_key,omitempty"`
	NewGroupKey string `json:"new_group_key,omitempty" yaml:"new_group_key,omitempty"`
	Action      Action `json:"action" yaml:"action"`
}

// NewEvent builds a drop event for a pill moved by offsetPx.
func NewEvent(c scale.Config, pillID string, offsetPx, referenceWidthPx float64, oldGroup, newGroup string, action Action) (Event, error) {
	if err := errors.ValidateID(pillID); err != nil {
		return Event{}, err
	}
	if err := c.Validate(); err != nil {
		return Event{}, err
	}
	if action == "" {
		action = Reschedule
	}
	return Event{
		PillID:      pillID,
		DiffUnits:   DiffFor(c, offsetPx, referenceWidthPx),
		OldGroupKey: oldGroup,
		NewGroupKey: newGroup,
		Action:      action,
	}, nil
}

// Moved reports whether applying the event changes anything.
func (e Event) Moved() bool {
	return e.DiffUnits != 0 || e.OldGroupKey != e.NewGroupKey || e.Action == Copy
}
