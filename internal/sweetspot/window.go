package sweetspot

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// UnknownAge marks an Input whose age could not be derived.
const UnknownAge = -1

var ErrUnknownAge = errors.New("sweetspot: unknown age")

type Status string

const (
	StatusWellRested       Status = "well_rested"
	StatusApproachingTired Status = "approaching_tired"
	StatusOvertired        Status = "overtired"
	StatusNoData           Status = "no_data"
)

// WakeWindowRange is a closed interval of awake minutes.
type WakeWindowRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

func (r WakeWindowRange) Valid() bool {
	return r.Min > 0 && r.Min <= r.Max
}

func (r WakeWindowRange) Width() int {
	return r.Max - r.Min
}

// Breakpoint applies Range to every age >= FromMonths until the next breakpoint.
type Breakpoint struct {
	FromMonths int             `yaml:"from_months"`
	Range      WakeWindowRange `yaml:",inline"`
}

// Table is a breakpoint list ordered by ascending FromMonths, starting at 0.
type Table []Breakpoint

var DefaultTable = Table{
	{FromMonths: 0, Range: WakeWindowRange{Min: 35, Max: 60}},
	{FromMonths: 1, Range: WakeWindowRange{Min: 45, Max: 75}},
	{FromMonths: 2, Range: WakeWindowRange{Min: 75, Max: 120}},
	{FromMonths: 4, Range: WakeWindowRange{Min: 105, Max: 150}},
	{FromMonths: 6, Range: WakeWindowRange{Min: 120, Max: 180}},
	{FromMonths: 9, Range: WakeWindowRange{Min: 150, Max: 240}},
	{FromMonths: 12, Range: WakeWindowRange{Min: 180, Max: 300}},
}

func (t Table) Validate() error {
	if len(t) == 0 {
		return errors.New("sweetspot: empty wake window table")
	}
	if t[0].FromMonths != 0 {
		return fmt.Errorf("sweetspot: first breakpoint must start at 0 months, got %d", t[0].FromMonths)
	}
	for i, bp := range t {
		if !bp.Range.Valid() {
			return fmt.Errorf("sweetspot: invalid range %d-%d at %d months", bp.Range.Min, bp.Range.Max, bp.FromMonths)
		}
		if i > 0 && bp.FromMonths <= t[i-1].FromMonths {
			return fmt.Errorf("sweetspot: breakpoints out of order at %d months", bp.FromMonths)
		}
	}
	return nil
}

// Lookup returns the range for ageMonths. Negative ages clamp to 0 and ages
// past the last breakpoint keep the final range.
func (t Table) Lookup(ageMonths int) WakeWindowRange {
	if ageMonths < 0 {
		ageMonths = 0
	}
	r := t[0].Range
	for _, bp := range t {
		if ageMonths < bp.FromMonths {
			break
		}
		r = bp.Range
	}
	return r
}

// Classify looks up the recommended range for ageMonths and places
// currentAwakeMinutes within it.
func (t Table) Classify(ageMonths, currentAwakeMinutes int) (Status, WakeWindowRange) {
	r := t.Lookup(ageMonths)
	return ClassifyRange(currentAwakeMinutes, r), r
}

// Classify uses DefaultTable.
func Classify(ageMonths, currentAwakeMinutes int) (Status, WakeWindowRange) {
	return DefaultTable.Classify(ageMonths, currentAwakeMinutes)
}

// ClassifyRange is inclusive on both ends of approaching_tired.
func ClassifyRange(currentAwakeMinutes int, r WakeWindowRange) Status {
	if currentAwakeMinutes < 0 {
		currentAwakeMinutes = 0
	}
	switch {
	case currentAwakeMinutes < r.Min:
		return StatusWellRested
	case currentAwakeMinutes <= r.Max:
		return StatusApproachingTired
	default:
		return StatusOvertired
	}
}

// AgeInMonths counts whole calendar months from dob to now.
func AgeInMonths(dob, now time.Time) (int, error) {
	if dob.IsZero() || dob.After(now) {
		return UnknownAge, ErrUnknownAge
	}
	months := (now.Year()-dob.Year())*12 + int(now.Month()) - int(dob.Month())
	if now.Day() < dob.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	return months, nil
}

type tableFile struct {
	Breakpoints Table `yaml:"breakpoints"`
}

// LoadTableYAML reads a breakpoint table of the form
//
//	breakpoints:
//	  - {from_months: 0, min: 35, max: 60}
func LoadTableYAML(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sweetspot: read table: %w", err)
	}
	var f tableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("sweetspot: parse table: %w", err)
	}
	if err := f.Breakpoints.Validate(); err != nil {
		return nil, err
	}
	return f.Breakpoints, nil
}
