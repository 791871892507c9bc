package io

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/ganttrow/pkg/chart"
	"github.com/matzehuels/ganttrow/pkg/errors"
)

// Format is a file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatCSV  Format = "csv"
	FormatSVG  Format = "svg"
)

// DetectFormat returns the format implied by the path's extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".csv":
		return FormatCSV, nil
	case ".svg":
		return FormatSVG, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported file extension %q", filepath.Ext(path))
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatTOML, FormatCSV, FormatSVG:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", s)
}

// ImportChart reads the chart file at path, choosing the decoder by
// extension.
func ImportChart(path string) (chart.Chart, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return chart.Chart{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return chart.Chart{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "chart file %s not found", path)
		}
		return chart.Chart{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	c, err := ReadChart(f, format)
	if err != nil {
		return chart.Chart{}, errors.Wrap(errors.GetCode(err), err, "read %s", path)
	}
	return c, nil
}

// ReadChart decodes a chart of the given format from r.
// ReadChart does not close r.
func ReadChart(r io.Reader, format Format) (chart.Chart, error) {
	var c chart.Chart
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&c); err != nil {
			return chart.Chart{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&c); err != nil {
			return chart.Chart{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&c); err != nil {
			return chart.Chart{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
		}
	case FormatCSV:
		records, err := ReadCSV(r)
		if err != nil {
			return chart.Chart{}, err
		}
		c.Records = records
		c.GroupBy = chart.GroupByResponsible
	default:
		return chart.Chart{}, errors.New(errors.ErrCodeInvalidFormat, "cannot read charts from %s", format)
	}
	return c, nil
}

// timeLayouts are the accepted CSV time formats, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ReadCSV decodes flat records from CSV with a header line.
func ReadCSV(r io.Reader) ([]chart.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read csv header")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"id", "start", "stop"} {
		if _, ok := cols[required]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "csv header is missing column %q", required)
		}
	}

	var records []chart.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "csv line %d", line)
		}
		rec, err := csvRecord(header, cols, row)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "csv line %d", line)
		}
		records = append(records, rec)
	}
	return records, nil
}

func csvRecord(header []string, cols map[string]int, row []string) (chart.Record, error) {
	field := func(name string) string {
		if i, ok := cols[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	start, err := parseTime(field("start"))
	if err != nil {
		return chart.Record{}, err
	}
	stop, err := parseTime(field("stop"))
	if err != nil {
		return chart.Record{}, err
	}
	rec := chart.Record{
		ID:          field("id"),
		Name:        field("name"),
		Start:       start,
		Stop:        stop,
		Responsible: field("responsible"),
		GroupKey:    field("group_key"),
	}

	for i, h := range header {
		name := strings.TrimSpace(h)
		switch strings.ToLower(name) {
		case "id", "name", "start", "stop", "responsible", "group_key":
			continue
		}
		if i >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[i])
		if v == "" {
			continue
		}
		if b, err := strconv.ParseBool(v); err == nil && (strings.EqualFold(v, "true") || strings.EqualFold(v, "false")) {
			if rec.Flags == nil {
				rec.Flags = make(map[string]bool)
			}
			rec.Flags[name] = b
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			if rec.Values == nil {
				rec.Values = make(map[string]float64)
			}
			rec.Values[name] = f
		}
	}
	return rec, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New(errors.ErrCodeInvalidFormat, "cannot parse time %q", s)
}
