package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttrow/pkg/chart"
	"github.com/matzehuels/ganttrow/pkg/core/scale"
	"github.com/matzehuels/ganttrow/pkg/core/timeline"
	ganttio "github.com/matzehuels/ganttrow/pkg/io"
	"github.com/matzehuels/ganttrow/pkg/observability"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string { return ansi.ReplaceAllString(s, "") }

const weekChart = `{
  "title": "Team",
  "scale": {"unit": "week", "precision": "half"},
  "window": {"start": "2024-03-04T00:00:00Z", "stop": "2024-03-11T00:00:00Z"},
  "rows": [
    {
      "id": "team",
      "name": "Team",
      "children": [
        {"id": "alice", "records": [{"id": "1", "start": "2024-03-05T08:00:00Z", "stop": "2024-03-06T17:00:00Z"}]},
        {"id": "bob", "records": [{"id": "2", "start": "2024-03-07T08:00:00Z", "stop": "2024-03-08T12:00:00Z"}]}
      ]
    }
  ]
}`

// isolate points the config and cache directories at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"json", []string{"json"}},
		{"svg, json,yaml", []string{"svg", "json", "yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-04", time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)},
		{"2024-03-04T09:30", time.Date(2024, 3, 4, 9, 30, 0, 0, time.Local)},
		{"2024-03-04T09:30:00Z", time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTime(tt.in)
			if err != nil {
				t.Fatalf("parseTime() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if _, err := parseTime("next tuesday"); err == nil {
		t.Error("parseTime should reject free text")
	}
}

func TestParseWindow(t *testing.T) {
	w, err := parseWindow("2024-03-04", "2024-03-11")
	if err != nil {
		t.Fatalf("parseWindow() error = %v", err)
	}
	if got := w.Stop.Sub(w.Start); got != 7*24*time.Hour {
		t.Errorf("window length = %v, want 168h", got)
	}

	for _, bad := range [][2]string{{"2024-03-04", ""}, {"", "2024-03-11"}, {"x", "2024-03-11"}} {
		if _, err := parseWindow(bad[0], bad[1]); err == nil {
			t.Errorf("parseWindow(%q, %q) should fail", bad[0], bad[1])
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "team.json", "team"},
		{"", "out/team.layout.json", "out/team"},
		{"chart.svg", "team.json", "chart"},
		{"chart", "team.json", "chart"},
		{"chart.png", "team.json", "chart.png"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestStatsLine(t *testing.T) {
	got := plain(statsLine(3, 7, true))
	for _, want := range []string{"3 rows", "7 pills", "cached"} {
		if !strings.Contains(got, want) {
			t.Errorf("statsLine() = %q, missing %q", got, want)
		}
	}
	if got := plain(statsLine(0, 0, false)); !strings.Contains(got, "fresh") {
		t.Errorf("statsLine() = %q, want fresh", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:       "0 B",
		1023:    "1023 B",
		1024:    "1.0 KiB",
		1536:    "1.5 KiB",
		5 << 20: "5.0 MiB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestSlotTable(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	cfg := scale.MustNew(scale.Week, scale.PrecisionHalf)
	out := plain(slotTable(cfg, timeline.Window{Start: monday, Stop: monday.AddDate(0, 0, 7)}))

	for _, want := range []string{"Start", "Cells", "2024-03-04", "2024-03-10", "Mon 4 00:00", "Mon 4 12:00", "Sun 10 12:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("slotTable() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Mon 11") {
		t.Errorf("slotTable() should stop before the window stop:\n%s", out)
	}
}

func TestOccupancy(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	slot := func(d int, u string) chart.SlotLayout {
		start := monday.AddDate(0, 0, d)
		return chart.SlotLayout{Start: start, Stop: start.AddDate(0, 0, 1), Unavailability: u}
	}
	row := chart.RowLayout{
		Slots: []chart.SlotLayout{slot(0, ""), slot(1, ""), slot(2, "full"), slot(3, "first_half")},
		Pills: []chart.PillLayout{
			{Start: monday, Stop: monday.AddDate(0, 0, 2)},
			{Start: monday.Add(12 * time.Hour), Stop: monday.AddDate(0, 0, 1)},
		},
	}

	if got, want := plain(occupancy(row)), "21▓░"; got != want {
		t.Errorf("occupancy() = %q, want %q", got, want)
	}
	if got := plain(slotCell("", 0, false)); got != "·" {
		t.Errorf("slotCell(free) = %q, want ·", got)
	}
	if got := plain(slotCell("", 12, true)); got != "+" {
		t.Errorf("slotCell(12) = %q, want +", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config", appName, "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := `
[layout]
unit = "day"
precision = "quarter"
level_height = 30
`
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	opts, err := c.options("team.json", &layoutFlags{pillHeight: 10, unit: "month"})
	if err != nil {
		t.Fatalf("options() error = %v", err)
	}
	if opts.Input != "team.json" || opts.Unit != "month" {
		t.Errorf("input/unit = %q/%q", opts.Input, opts.Unit)
	}
	if opts.FallbackUnit != "day" || opts.FallbackPrecision != "quarter" {
		t.Errorf("fallback = %q/%q, want day/quarter", opts.FallbackUnit, opts.FallbackPrecision)
	}
	if opts.LevelHeight != 30 || opts.PillHeight != 10 {
		t.Errorf("heights = %d/%d, want 30/10", opts.LevelHeight, opts.PillHeight)
	}

	if _, err := c.options("team.json", &layoutFlags{windowStart: "2024-03-04"}); err == nil {
		t.Error("options() with a half-open window should fail")
	}
}

func TestOptionsBadConfig(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("[layout]\nwidht = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(io.Discard, LogInfo)
	c.configPath = path
	if _, err := c.options("team.json", &layoutFlags{}); err == nil {
		t.Error("options() should fail on an unknown config key")
	}
}

func TestLayoutAndRenderCommands(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "team.json")
	if err := os.WriteFile(input, []byte(weekChart), 0o644); err != nil {
		t.Fatal(err)
	}

	layoutPath := filepath.Join(dir, "team.layout.json")
	if err := run(t, "layout", input, "--no-cache", "-o", layoutPath); err != nil {
		t.Fatalf("layout error = %v", err)
	}
	l, err := chart.ReadLayoutFile(layoutPath)
	if err != nil {
		t.Fatalf("ReadLayoutFile() error = %v", err)
	}
	if len(l.Rows) != 3 || l.Title != "Team" {
		t.Fatalf("layout rows = %d, title = %q", len(l.Rows), l.Title)
	}
	if r, ok := l.Row("alice"); !ok || r.Depth != 1 || r.Parent != "team" {
		t.Errorf("alice = %+v, %v", r, ok)
	}

	if err := run(t, "render", layoutPath, "--no-cache"); err != nil {
		t.Fatalf("render error = %v", err)
	}
	svg, err := os.ReadFile(filepath.Join(dir, "team.svg"))
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.HasPrefix(string(svg), "<svg") {
		t.Errorf("svg starts with %q", string(svg[:min(20, len(svg))]))
	}

	if err := run(t, "layout", input, "--no-cache", "-f", "png"); err == nil {
		t.Error("layout -f png should fail")
	}
	if err := run(t, "layout", filepath.Join(dir, "missing.json"), "--no-cache"); err == nil {
		t.Error("layout of a missing file should fail")
	}
}

func TestLayoutUsesFileCache(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "team.json")
	if err := os.WriteFile(input, []byte(weekChart), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(t, "layout", input, "-o", filepath.Join(dir, "out.json")); err != nil {
		t.Fatalf("layout error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "cache", appName))
	if err != nil {
		t.Fatalf("cache dir: %v", err)
	}
	if len(entries) == 0 {
		t.Error("layout should populate the file cache")
	}
}

func TestConfigInit(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "ganttrow.toml")

	if err := run(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if err := run(t, "config", "init", "--config", path); err != nil {
		t.Errorf("config init on an existing file error = %v", err)
	}
	if err := run(t, "config", "show", "--config", path); err != nil {
		t.Errorf("config show error = %v", err)
	}
}

func TestDiffRequiresPill(t *testing.T) {
	isolate(t)
	if err := run(t, "diff", "--offset", "10"); err == nil {
		t.Error("diff without --pill should fail")
	}
	if err := run(t, "diff", "--pill", "1", "--offset", "85", "-u", "week", "-p", "half", "--reference", "80"); err != nil {
		t.Errorf("diff error = %v", err)
	}
	if err := run(t, "diff", "--pill", "1", "-u", "decade"); err == nil {
		t.Error("diff with an unknown unit should fail")
	}
}

func TestConvertCommand(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "bookings.csv")
	csv := "id,start,stop,responsible\n" +
		"1,2024-03-04 08:00,2024-03-04 12:00,alice\n" +
		"2,2024-03-05 08:00,2024-03-05 17:00,bob\n" +
		"3,2024-03-06 08:00,2024-03-06 12:00,alice\n"
	if err := os.WriteFile(input, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	output := filepath.Join(dir, "team.yaml")
	if err := run(t, "convert", input, output); err != nil {
		t.Fatalf("convert error = %v", err)
	}
	ch, err := ganttio.ImportChart(output)
	if err != nil {
		t.Fatalf("ImportChart() error = %v", err)
	}
	if len(ch.Records) != 0 || len(ch.Rows) != 2 {
		t.Fatalf("converted chart has %d records, %d rows", len(ch.Records), len(ch.Rows))
	}
	if ch.Rows[0].ID != "alice" || len(ch.Rows[0].Records) != 2 {
		t.Errorf("first row = %s with %d records", ch.Rows[0].ID, len(ch.Rows[0].Records))
	}

	if err := run(t, "convert", input, filepath.Join(dir, "team.png")); err == nil {
		t.Error("convert to an unknown extension should fail")
	}
	if err := run(t, "convert", input, "-", "--format", "xml"); err == nil {
		t.Error("convert to stdout with an unknown format should fail")
	}
}

func TestConvertLayout(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "team.json")
	if err := os.WriteFile(input, []byte(weekChart), 0o644); err != nil {
		t.Fatal(err)
	}
	layoutPath := filepath.Join(dir, "team.layout.json")
	if err := run(t, "layout", input, "--no-cache", "-o", layoutPath); err != nil {
		t.Fatalf("layout error = %v", err)
	}

	output := filepath.Join(dir, "team.layout.yaml")
	if err := run(t, "convert", layoutPath, output); err != nil {
		t.Fatalf("convert error = %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "id: alice") {
		t.Errorf("yaml layout missing alice:\n%s", data)
	}

	copyPath := filepath.Join(dir, "copy.layout.json")
	if err := run(t, "convert", layoutPath, copyPath); err != nil {
		t.Fatalf("convert json error = %v", err)
	}
	want, err := chart.ReadLayoutFile(layoutPath)
	if err != nil {
		t.Fatal(err)
	}
	got, err := chart.ReadLayoutFile(copyPath)
	if err != nil {
		t.Fatalf("copied layout unreadable: %v", err)
	}
	if len(got.Rows) != len(want.Rows) || got.PillCount() != want.PillCount() {
		t.Errorf("copy has %d rows/%d pills, want %d/%d", len(got.Rows), got.PillCount(), len(want.Rows), want.PillCount())
	}
}

func TestServeStopsWithContext(t *testing.T) {
	isolate(t)
	t.Cleanup(observability.Reset)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"serve", "--addr", "127.0.0.1:0", "--no-cache"})
	if err := root.ExecuteContext(ctx); err != nil {
		t.Errorf("serve error = %v", err)
	}
}

func TestScaleCompletion(t *testing.T) {
	tests := []struct {
		name     string
		complete func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective)
		prefix   string
		want     string
	}{
		{"all units", completeUnits, "", "day,week,month,year"},
		{"unit prefix", completeUnits, "m", "month"},
		{"precision prefix", completePrecisions, "h", "half"},
		{"no match", completePrecisions, "x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, directive := tt.complete(nil, nil, tt.prefix)
			if strings.Join(got, ",") != tt.want {
				t.Errorf("completions = %v, want %s", got, tt.want)
			}
			if directive != cobra.ShellCompDirectiveNoFileComp {
				t.Errorf("directive = %v, want NoFileComp", directive)
			}
		})
	}
}

func TestChartFileCompletion(t *testing.T) {
	exts, directive := completeChartFiles(nil, nil, "")
	if directive != cobra.ShellCompDirectiveFilterFileExt || !slices.Contains(exts, "csv") {
		t.Errorf("first argument = %v %v, want chart extensions", exts, directive)
	}
	if _, directive := completeChartFiles(nil, []string{"team.json"}, ""); directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("second argument directive = %v, want NoFileComp", directive)
	}

	root := New(io.Discard, LogInfo).RootCommand()
	layoutCmd, _, err := root.Find([]string{"layout"})
	if err != nil {
		t.Fatal(err)
	}
	if layoutCmd.ValidArgsFunction == nil {
		t.Error("layout command has no chart completion")
	}
}
