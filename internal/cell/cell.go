// Package cell models a single raw spreadsheet cell and normalizes it into
// the canonical tokens the row validator and storage layer expect.
package cell

import (
	"strconv"
	"strings"
	"time"
)

// isoInstant matches the millisecond UTC form browsers emit for dates
const isoInstant = "2006-01-02T15:04:05.000Z"

// Kind tags which variant of Cell is populated
type Kind int

const (
	Absent Kind = iota
	Text
	Number
	DateTime
)

// Cell is one raw spreadsheet value
type Cell struct {
	Kind Kind
	Str  string
	Num  float64
	Time time.Time
}

// NewText returns a text cell
func NewText(s string) Cell {
	return Cell{Kind: Text, Str: s}
}

// NewNumber returns a numeric cell
func NewNumber(f float64) Cell {
	return Cell{Kind: Number, Num: f}
}

// NewDateTime returns a native date-time cell
func NewDateTime(t time.Time) Cell {
	return Cell{Kind: DateTime, Time: t}
}

// IsBlank reports whether the cell is absent or whitespace-only text
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case Absent:
		return true
	case Text:
		return strings.TrimSpace(c.Str) == ""
	default:
		return false
	}
}

// String renders the cell the way a user would type it back
func (c Cell) String() string {
	switch c.Kind {
	case Text:
		return c.Str
	case Number:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case DateTime:
		return c.Time.UTC().Format(isoInstant)
	default:
		return ""
	}
}

// Token is the trimmed text form of the cell, or "" when blank
func (c Cell) Token() string {
	if c.IsBlank() {
		return ""
	}
	return strings.TrimSpace(c.String())
}
