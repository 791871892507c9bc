package chart

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matzehuels/ganttrow/pkg/core/gantt/layout"
	"github.com/matzehuels/ganttrow/pkg/core/scale"
	"github.com/matzehuels/ganttrow/pkg/core/timeline"
)

// =============================================================================
// Layout - Output Format
// =============================================================================

// Layout is the serialization format of a laid-out chart. Rows appear in
// tree order: every group row is followed by its descendants.
type Layout struct {
	Title  string       `json:"title,omitempty" yaml:"title,omitempty"`
	Scale  scale.Config `json:"scale" yaml:"scale"`
	Window Window       `json:"window" yaml:"window"`
	Height int          `json:"height" yaml:"height"`
	Rows   []RowLayout  `json:"rows" yaml:"rows"`
}

// RowLayout is a laid-out row.
type RowLayout struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Grouped bool   `json:"grouped,omitempty" yaml:"grouped,omitempty"`
	Depth   int    `json:"depth,omitempty" yaml:"depth,omitempty"`
	Parent  string `json:"parent,omitempty" yaml:"parent,omitempty"`

	// Top is the row's vertical offset in the chart, in pixels.
	Top              int          `json:"top" yaml:"top"`
	Height           int          `json:"height" yaml:"height"`
	Level            int          `json:"level" yaml:"level"`
	Pills            []PillLayout `json:"pills" yaml:"pills"`
	Slots            []SlotLayout `json:"slots" yaml:"slots"`
	Unavailabilities []Period     `json:"unavailabilities,omitempty" yaml:"unavailabilities,omitempty"`
}

// PillLayout is a positioned pill.
type PillLayout struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name,omitempty" yaml:"name,omitempty"`
	Start       time.Time `json:"start" yaml:"start"`
	Stop        time.Time `json:"stop" yaml:"stop"`
	Responsible string    `json:"responsible,omitempty" yaml:"responsible,omitempty"`
	GroupKey    string    `json:"group_key,omitempty" yaml:"group_key,omitempty"`

	Level         int     `json:"level" yaml:"level"`
	LeftMarginPct float64 `json:"left_margin_pct" yaml:"left_margin_pct"`
	Width         string  `json:"width" yaml:"width"`
	WidthPct      float64 `json:"width_pct" yaml:"width_pct"`
	WidthPx       int     `json:"width_px,omitempty" yaml:"width_px,omitempty"`
	TopPadding    int     `json:"top_padding" yaml:"top_padding"`
	Height        int     `json:"height" yaml:"height"`
	SlotIndex     int     `json:"slot_index" yaml:"slot_index"`

	DisableStartResize bool `json:"disable_start_resize,omitempty" yaml:"disable_start_resize,omitempty"`
	DisableStopResize  bool `json:"disable_stop_resize,omitempty" yaml:"disable_stop_resize,omitempty"`

	Count           int      `json:"count,omitempty" yaml:"count,omitempty"`
	AggregatedPills []string `json:"aggregated_pills,omitempty" yaml:"aggregated_pills,omitempty"`

	Consolidation *ConsolidationLayout `json:"consolidation,omitempty" yaml:"consolidation,omitempty"`
	Shade         int                  `json:"shade,omitempty" yaml:"shade,omitempty"`
	Status        string               `json:"status,omitempty" yaml:"status,omitempty"`
}

// ConsolidationLayout is the consolidation outcome of an aggregate pill.
type ConsolidationLayout struct {
	Value    float64 `json:"value" yaml:"value"`
	MaxValue float64 `json:"max_value" yaml:"max_value"`
	Exceeded bool    `json:"exceeded,omitempty" yaml:"exceeded,omitempty"`
}

// SlotLayout is one slot of a row.
type SlotLayout struct {
	Start          time.Time `json:"start" yaml:"start"`
	Stop           time.Time `json:"stop" yaml:"stop"`
	Unavailability string    `json:"unavailability,omitempty" yaml:"unavailability,omitempty"`
	Pills          []int     `json:"pills,omitempty" yaml:"pills,omitempty"`
}

// =============================================================================
// Conversion
// =============================================================================

// NewLayout assembles the layout of a plan from its built rows, which must
// be in plan order.
func NewLayout(p Plan, rows []layout.Row) Layout {
	out := Layout{
		Title:  p.Title,
		Scale:  p.Scale,
		Window: Window{Start: p.Window.Start, Stop: p.Window.Stop},
		Rows:   make([]RowLayout, len(rows)),
	}
	top := 0
	for i, r := range rows {
		var depth int
		var parent string
		if i < len(p.Rows) {
			depth, parent = p.Rows[i].Depth, p.Rows[i].Parent
		}
		out.Rows[i] = ExportRow(r, depth, parent)
		out.Rows[i].Top = top
		top += r.Height
	}
	out.Height = top
	return out
}

// ExportRow converts a built row to its serialization format.
func ExportRow(r layout.Row, depth int, parent string) RowLayout {
	out := RowLayout{
		ID:      r.ID,
		Name:    r.Name,
		Grouped: r.Grouped,
		Depth:   depth,
		Parent:  parent,
		Height:  r.Height,
		Level:   r.Level,
		Pills:   make([]PillLayout, len(r.Pills)),
		Slots:   make([]SlotLayout, len(r.Slots)),
	}
	for i, p := range r.Pills {
		out.Pills[i] = exportPill(p)
	}
	for i, s := range r.Slots {
		out.Slots[i] = SlotLayout{
			Start:          s.Start,
			Stop:           s.Stop,
			Unavailability: string(s.Unavailability),
			Pills:          s.Pills,
		}
	}
	for _, u := range r.Unavailabilities {
		out.Unavailabilities = append(out.Unavailabilities, Period{Start: u.Start, Stop: u.Stop})
	}
	return out
}

func exportPill(p timeline.Pill) PillLayout {
	out := PillLayout{
		ID:                 p.ID,
		Name:               p.Name,
		Start:              p.Start,
		Stop:               p.Stop,
		Responsible:        p.Responsible,
		GroupKey:           p.GroupKey,
		Level:              p.Level,
		LeftMarginPct:      p.LeftMarginPct,
		Width:              p.Width.String(),
		WidthPct:           p.Width.Pct,
		WidthPx:            p.Width.Px,
		TopPadding:         p.TopPadding,
		Height:             p.Height,
		SlotIndex:          p.SlotIndex,
		DisableStartResize: p.DisableStartResize,
		DisableStopResize:  p.DisableStopResize,
		Count:              p.Count,
		Shade:              p.Shade,
		Status:             string(p.Status),
	}
	for _, iv := range p.AggregatedPills {
		out.AggregatedPills = append(out.AggregatedPills, iv.ID)
	}
	if p.Consolidated {
		out.Consolidation = &ConsolidationLayout{
			Value:    p.ConsolidationValue,
			MaxValue: p.ConsolidationMaxValue,
			Exceeded: p.ConsolidationExceeded,
		}
	}
	return out
}

// Row returns the row with the given id.
func (l *Layout) Row(id string) (RowLayout, bool) {
	for _, r := range l.Rows {
		if r.ID == id {
			return r, true
		}
	}
	return RowLayout{}, false
}

// PillCount returns the number of pills over all rows.
func (l *Layout) PillCount() int {
	n := 0
	for _, r := range l.Rows {
		n += len(r.Pills)
	}
	return n
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Scale.Unit == "" {
		return Layout{}, fmt.Errorf("layout must name its scale")
	}
	return l, nil
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadChart decodes a JSON chart from r.
func ReadChart(r io.Reader) (Chart, error) {
	var c Chart
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return Chart{}, fmt.Errorf("decode: %w", err)
	}
	return c, nil
}

// WriteChart encodes c as indented JSON to w.
func WriteChart(c Chart, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
