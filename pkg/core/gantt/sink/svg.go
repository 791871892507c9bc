package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/matzehuels/ganttrow/pkg/chart"
	"github.com/matzehuels/ganttrow/pkg/core/scale"
	"github.com/matzehuels/ganttrow/pkg/core/timeline"
)

const (
	defaultWidth      = 1000.0
	defaultLabelWidth = 160.0
	headerHeight      = 28.0
	pillRadius        = 4.0
	labelPadding      = 8.0
	charWidth         = 7.0
)

const previewCSS = `
    .slot { fill: #ffffff; stroke: #e0e0e0; stroke-width: 1; }
    .unavailable { fill: url(#hatch); }
    .row-label { font: 13px sans-serif; fill: #333333; }
    .slot-label { font: 11px sans-serif; fill: #666666; text-anchor: middle; }
    .pill { stroke: #00000033; stroke-width: 1; }
    .pill-text { font: 11px sans-serif; fill: #ffffff; pointer-events: none; }
    .row-sep { stroke: #bdbdbd; stroke-width: 1; }`

// palette holds leaf pill colours, picked by group.
var palette = []string{
	"#1e88e5", "#43a047", "#fb8c00", "#8e24aa",
	"#00897b", "#e53935", "#3949ab", "#6d4c41",
}

var statusColors = map[string]string{
	string(timeline.StatusSuccess): "#2e7d32",
	string(timeline.StatusDanger):  "#c62828",
}

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width      float64
	labelWidth float64
	header     bool
}

// WithWidth sets the total width in pixels. Non-positive values are ignored.
func WithWidth(px float64) SVGOption {
	return func(r *svgRenderer) {
		if px > 0 {
			r.width = px
		}
	}
}

// WithLabelWidth sets the width of the row label column.
func WithLabelWidth(px float64) SVGOption {
	return func(r *svgRenderer) {
		if px >= 0 {
			r.labelWidth = px
		}
	}
}

func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labelWidth = 0 } }
func WithoutHeader() SVGOption { return func(r *svgRenderer) { r.header = false } }

// RenderSVG draws every row of l.
func RenderSVG(l chart.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	top := 0.0
	if r.header {
		top = headerHeight
	}
	height := top + float64(l.Height)
	if r.labelWidth >= r.width {
		r.labelWidth = 0
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, height, r.width, height)
	if l.Title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(l.Title))
	}
	renderDefs(&buf)

	if r.header && len(l.Rows) > 0 {
		r.renderHeader(&buf, l.Scale.Unit, l.Rows[0].Slots)
	}
	for _, row := range l.Rows {
		r.renderRow(&buf, row, top+float64(row.Top))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{width: defaultWidth, labelWidth: defaultLabelWidth, header: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func renderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <defs>
    <pattern id="hatch" width="6" height="6" patternUnits="userSpaceOnUse" patternTransform="rotate(45)">
      <rect width="6" height="6" fill="#f5f5f5"/>
      <line x1="0" y1="0" x2="0" y2="6" stroke="#cfcfcf" stroke-width="2"/>
    </pattern>
  </defs>
`)
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", previewCSS)
}

func (r *svgRenderer) slotWidth(slots int) float64 {
	if slots == 0 {
		return 0
	}
	return (r.width - r.labelWidth) / float64(slots)
}

func (r *svgRenderer) renderHeader(buf *bytes.Buffer, unit scale.Unit, slots []chart.SlotLayout) {
	w := r.slotWidth(len(slots))
	buf.WriteString(`  <g class="header">` + "\n")
	for i, s := range slots {
		cx := r.labelWidth + (float64(i)+0.5)*w
		fmt.Fprintf(buf, `    <text class="slot-label" x="%.1f" y="%.1f">%s</text>`+"\n",
			cx, headerHeight-10, escapeXML(slotLabel(unit, s.Start)))
	}
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) renderRow(buf *bytes.Buffer, row chart.RowLayout, y float64) {
	h := float64(row.Height)
	w := r.slotWidth(len(row.Slots))

	fmt.Fprintf(buf, `  <g class="row" id="row-%s">`+"\n", escapeXML(row.ID))
	for i, s := range row.Slots {
		x := r.labelWidth + float64(i)*w
		fmt.Fprintf(buf, `    <rect class="slot" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n", x, y, w, h)

		ux, uw := x, w
		switch s.Unavailability {
		case string(timeline.Full):
		case string(timeline.FirstHalf):
			uw = w / 2
		case string(timeline.SecondHalf):
			ux, uw = x+w/2, w/2
		default:
			continue
		}
		fmt.Fprintf(buf, `    <rect class="unavailable" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n", ux, y, uw, h)
	}

	if r.labelWidth > 0 {
		indent := labelPadding + float64(row.Depth)*12
		label := truncate(row.Name, int((r.labelWidth-indent)/charWidth))
		fmt.Fprintf(buf, `    <text class="row-label" x="%.1f" y="%.1f">%s</text>`+"\n",
			indent, y+h/2+4, escapeXML(label))
	}

	for _, p := range row.Pills {
		r.renderPill(buf, p, y, w)
	}
	fmt.Fprintf(buf, `    <line class="row-sep" x1="0" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", y+h, r.width, y+h)
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) renderPill(buf *bytes.Buffer, p chart.PillLayout, rowY, slotW float64) {
	x := r.labelWidth + (float64(p.SlotIndex)+p.LeftMarginPct/100)*slotW
	w := p.WidthPct/100*slotW + float64(p.WidthPx)
	if w < 1 {
		w = 1
	}
	y := rowY + float64(p.TopPadding) + 1
	h := float64(p.Height)

	fmt.Fprintf(buf, `    <rect class="pill" id="pill-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.0f" fill="%s">`,
		escapeXML(p.ID), x, y, w, h, pillRadius, pillFill(p))
	fmt.Fprintf(buf, "<title>%s</title></rect>\n", escapeXML(pillTitle(p)))

	text := p.Name
	if p.Count > 0 {
		text = fmt.Sprintf("%d", p.Count)
		if p.Consolidation != nil {
			text = fmt.Sprintf("%g/%g", p.Consolidation.Value, p.Consolidation.MaxValue)
		}
	}
	if text = truncate(text, int((w-2*labelPadding)/charWidth)); text != "" {
		fmt.Fprintf(buf, `    <text class="pill-text" x="%.1f" y="%.1f">%s</text>`+"\n",
			x+labelPadding, y+h/2+4, escapeXML(text))
	}
}

func pillFill(p chart.PillLayout) string {
	if c, ok := statusColors[p.Status]; ok {
		return c
	}
	if p.Count > 0 {
		return fmt.Sprintf("rgb(%d,%d,255)", p.Shade-60, p.Shade-20)
	}
	key := p.GroupKey
	if key == "" {
		key = p.Responsible
	}
	if key == "" {
		key = p.ID
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return palette[h.Sum32()%uint32(len(palette))]
}

func pillTitle(p chart.PillLayout) string {
	span := p.Start.Format("2006-01-02 15:04") + " - " + p.Stop.Format("2006-01-02 15:04")
	if p.Count > 0 {
		return fmt.Sprintf("%d items, %s", p.Count, span)
	}
	if p.Name != "" {
		return p.Name + ", " + span
	}
	return span
}

func slotLabel(unit scale.Unit, t time.Time) string {
	switch unit {
	case scale.Day:
		return t.Format("15:04")
	case scale.Week:
		return t.Format("Mon 2")
	case scale.Month:
		return t.Format("2")
	case scale.Year:
		return t.Format("Jan")
	}
	return t.Format("2006-01-02")
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 2 {
		return string(runes[:max])
	}
	return strings.TrimSpace(string(runes[:max-2])) + ".."
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
