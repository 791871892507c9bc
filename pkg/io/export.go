package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/ganttrow/pkg/chart"
	"github.com/matzehuels/ganttrow/pkg/errors"
)

// WriteLayout encodes l to w as JSON or YAML.
// WriteLayout does not close w.
func WriteLayout(l chart.Layout, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(l, w)
	case FormatYAML:
		return writeYAML(l, w)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "cannot write layouts as %s", format)
}

// ExportLayout writes l to path, choosing the encoder by extension.
func ExportLayout(l chart.Layout, path string) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	return exportFile(path, func(w io.Writer) error { return WriteLayout(l, w, format) })
}

// WriteChart encodes c to w as JSON, YAML or TOML.
// WriteChart does not close w.
func WriteChart(c chart.Chart, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(c, w)
	case FormatYAML:
		return writeYAML(c, w)
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(c); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "encode toml")
		}
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "cannot write charts as %s", format)
}

// ExportChart writes c to path, choosing the encoder by extension.
func ExportChart(c chart.Chart, path string) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	return exportFile(path, func(w io.Writer) error { return WriteChart(c, w, format) })
}

func writeJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "encode json")
	}
	return nil
}

func writeYAML(v any, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "encode yaml")
	}
	return enc.Close()
}

func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
