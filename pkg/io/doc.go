// Package io reads charts from, and writes charts and layouts to, the file
// formats ganttrow understands.
//
// # Formats
//
// The format follows the file extension:
//
//   - .json: the canonical chart format (see pkg/chart)
//   - .yaml, .yml: the same structure in YAML
//   - .toml: the same structure in TOML, with [[rows]] tables
//   - .csv: a flat list of records, one per line
//
// # CSV
//
// A CSV file has a header line. The columns id, start and stop are
// required; name, responsible and group_key are optional. Every other
// column becomes a numeric value when it parses as a number and a flag
// when it reads true or false, so it can be used for consolidation:
//
//	id,name,start,stop,responsible,hours,archived
//	t1,Design,2024-03-04T08:00:00Z,2024-03-05T17:00:00Z,alice,16,false
//
// Times may be RFC 3339, "2006-01-02 15:04" or a plain date. A CSV chart
// has no scale of its own; records are grouped into rows by responsible.
//
// # Export
//
// Charts can be written as JSON, YAML or TOML; layouts as JSON or YAML.
// Use [ImportChart] and [ExportLayout] for files, [ReadChart] and
// [WriteLayout] for streams.
package io
