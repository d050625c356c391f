// Package domain describes each ingestion domain as a declarative rule table.
// The sheet reader, validator, submitter and template generator all read
// these tables instead of carrying per-domain code paths.
package domain

import (
	"regexp"
	"strings"

	"github.com/septivank/solar-telemetry-ingest/tools/timeparser"
)

// Name identifies a domain in URLs, cache keys, table names and events
type Name string

const (
	Meter   Name = "meter"
	Weather Name = "weather"
)

// HeaderPolicy selects how the sheet reader finds the header row
type HeaderPolicy int

const (
	// HeaderFirstRow treats row 1 as the header
	HeaderFirstRow HeaderPolicy = iota
	// HeaderScan looks for a row holding both "date" and "time" cells
	HeaderScan
)

// KeyShape is the composite key used for in-batch duplicate detection
type KeyShape int

const (
	KeyDate KeyShape = iota
	KeyDateTime
)

// WritePolicy is how bulk submit treats an existing (date, time) record
type WritePolicy int

const (
	// WriteOverwrite replaces the stored fields
	WriteOverwrite WritePolicy = iota
	// WriteSkipExisting leaves the stored record alone and counts a skip
	WriteSkipExisting
)

// Field is one numeric column of a domain
type Field struct {
	Header     string
	StorageKey string
	Label      string

	Ranged   bool
	Min, Max float64
	NonZero  bool

	// NonZeroOnWrite rejects 0 on single-record create/update. Bulk submit
	// does not look at it.
	NonZeroOnWrite bool

	Sample float64
}

// Name returns the label used in validation messages
func (f Field) Name() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Header
}

// Messages are the user-facing validation texts. Entries ending in "f" are
// format strings taking the field label (and range bounds).
type Messages struct {
	MissingDate       string
	MissingTime       string
	BadDate           string
	BadTime           string
	BadStart          string
	BadStop           string
	Duplicate         string
	NotNumberf        string
	Negativef         string
	OutOfRangef       string
	Zerof             string
	NoWindowOrReading string
}

// Rules is the complete description of one domain
type Rules struct {
	Name      Name
	Title     string
	SheetName string

	DateFormat  timeparser.DateFormat
	Header      HeaderPolicy
	DefaultTime string

	DuplicateKey KeyShape
	Fields       []Field

	// ReadingColumns selects extra columns by name that must be numeric and
	// non-negative when present.
	ReadingColumns *regexp.Regexp

	StartColumns []string
	StopColumns  []string

	// RequireWindowOrReading demands a valid start/stop pair or at least one
	// valid reading column.
	RequireWindowOrReading bool

	Write WritePolicy

	SampleDate string
	SampleTime string

	Messages Messages
}

// TimeRequired reports whether a row must carry its own time
func (r Rules) TimeRequired() bool {
	return r.DefaultTime == ""
}

// Headers returns the canonical header row: Date, Time, then every field
func (r Rules) Headers() []string {
	headers := []string{"Date", "Time"}
	for _, f := range r.Fields {
		headers = append(headers, f.Header)
	}
	return headers
}

// IsTimeColumn reports whether a non-key column carries a time of day
func (r Rules) IsTimeColumn(header string) bool {
	for _, name := range r.StartColumns {
		if strings.EqualFold(name, header) {
			return true
		}
	}
	for _, name := range r.StopColumns {
		if strings.EqualFold(name, header) {
			return true
		}
	}
	return false
}

// FieldByStorageKey finds a field by its storage key
func (r Rules) FieldByStorageKey(key string) (Field, bool) {
	for _, f := range r.Fields {
		if f.StorageKey == key {
			return f, true
		}
	}
	return Field{}, false
}

// Lookup returns the rules for a domain name (case-insensitive)
func Lookup(name string) (Rules, bool) {
	switch Name(strings.ToLower(strings.TrimSpace(name))) {
	case Meter:
		return MeterRules(), true
	case Weather:
		return WeatherRules(), true
	default:
		return Rules{}, false
	}
}

// All returns every known domain in a stable order
func All() []Rules {
	return []Rules{MeterRules(), WeatherRules()}
}
