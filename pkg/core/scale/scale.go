// Package scale describes the calendar zoom levels of a Gantt chart and the
// grid arithmetic that depends on them.
//
// A [Config] is immutable once built by [New]. It fixes the slot size
// (hour, day or month), the number of sub-cells per slot ([Precision]) and
// the snap unit used to translate drag offsets back into times.
//
//	unit   slot   snap    full  half  quarter
//	day    hour   minute  60    30    15
//	week   day    hour    24    12    6
//	month  day    hour    24    12    6
//	year   month  month   1     -     -
package scale

import (
	"strings"

	"github.com/matzehuels/ganttrow/pkg/errors"
)

// Unit is the calendar zoom level.
type Unit string

const (
	Day   Unit = "day"
	Week  Unit = "week"
	Month Unit = "month"
	Year  Unit = "year"
)

// Units lists all supported units in zoom order.
var Units = []Unit{Day, Week, Month, Year}

// ParseUnit parses a unit name, case-insensitively.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	switch u {
	case Day, Week, Month, Year:
		return u, nil
	}
	return "", errors.New(errors.ErrCodeInvalidScale, "unknown scale %q (want day, week, month or year)", s)
}

// Precision is the sub-cell granularity within one slot.
type Precision string

const (
	PrecisionFull    Precision = "full"
	PrecisionHalf    Precision = "half"
	PrecisionQuarter Precision = "quarter"
)

// Precisions lists all supported precisions.
var Precisions = []Precision{PrecisionFull, PrecisionHalf, PrecisionQuarter}

// ParsePrecision parses a precision name. The empty string means full.
func ParsePrecision(s string) (Precision, error) {
	p := Precision(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "":
		return PrecisionFull, nil
	case PrecisionFull, PrecisionHalf, PrecisionQuarter:
		return p, nil
	}
	return "", errors.New(errors.ErrCodeInvalidPrecision, "unknown precision %q (want full, half or quarter)", s)
}

// CellPart returns the number of sub-cells per slot: 1, 2 or 4.
func (p Precision) CellPart() int {
	switch p {
	case PrecisionHalf:
		return 2
	case PrecisionQuarter:
		return 4
	default:
		return 1
	}
}

// SnapUnit is the time unit diff values are expressed in.
type SnapUnit string

const (
	SnapMinute SnapUnit = "minute"
	SnapHour   SnapUnit = "hour"
	SnapMonth  SnapUnit = "month"
)

// Config is the scale a row is laid out with.
type Config struct {
	Unit         Unit      `json:"unit" yaml:"unit" toml:"unit"`
	Precision    Precision `json:"precision" yaml:"precision" toml:"precision"`
	IntervalSize int       `json:"interval_size" yaml:"interval_size" toml:"interval_size"`
	SnapUnit     SnapUnit  `json:"snap_unit" yaml:"snap_unit" toml:"snap_unit"`
}

// New derives the interval size and snap unit for unit and precision.
// The year scale supports only full precision.
func New(unit Unit, precision Precision) (Config, error) {
	if precision == "" {
		precision = PrecisionFull
	}
	if _, err := ParsePrecision(string(precision)); err != nil {
		return Config{}, err
	}
	c := Config{Unit: unit, Precision: precision}
	switch unit {
	case Day:
		c.SnapUnit = SnapMinute
		c.IntervalSize = 60 / precision.CellPart()
	case Week, Month:
		c.SnapUnit = SnapHour
		c.IntervalSize = 24 / precision.CellPart()
	case Year:
		if precision != PrecisionFull {
			return Config{}, errors.New(errors.ErrCodeInvalidPrecision,
				"year scale supports only full precision, got %q", precision)
		}
		c.SnapUnit = SnapMonth
		c.IntervalSize = 1
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidScale, "unknown scale %q", unit)
	}
	return c, nil
}

// MustNew is like New but panics on error. Intended for tests and constants.
func MustNew(unit Unit, precision Precision) Config {
	c, err := New(unit, precision)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks that c is one of the configurations New produces.
func (c Config) Validate() error {
	want, err := New(c.Unit, c.Precision)
	if err != nil {
		return err
	}
	if c.IntervalSize != want.IntervalSize || c.SnapUnit != want.SnapUnit {
		return errors.New(errors.ErrCodeInvalidScale,
			"scale %s/%s: interval size %d %s does not match %d %s",
			c.Unit, c.Precision, c.IntervalSize, c.SnapUnit, want.IntervalSize, want.SnapUnit)
	}
	return nil
}

// CellPart returns the number of sub-cells per slot.
func (c Config) CellPart() int {
	if c.Unit == Year {
		return 1
	}
	return c.Precision.CellPart()
}

// String returns "unit/precision".
func (c Config) String() string {
	return string(c.Unit) + "/" + string(c.Precision)
}
