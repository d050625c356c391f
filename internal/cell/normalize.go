package cell

import (
	"math"
	"strconv"
	"strings"

	"github.com/septivank/solar-telemetry-ingest/tools/timeparser"
)

// NumberState classifies the outcome of NormalizeNumber
type NumberState int

const (
	// NumberAbsent means the field was omitted; range checks are skipped
	NumberAbsent NumberState = iota
	// NumberValid carries a finite value
	NumberValid
	// NumberInvalid means the field is present but not a finite number
	NumberInvalid
)

// NormalizeDate converts c into a canonical date token for f. Input that
// cannot be decoded comes back as its original text so strict validation
// can flag it. Blank input becomes Absent.
func NormalizeDate(c Cell, f timeparser.DateFormat) Cell {
	switch c.Kind {
	case Absent:
		return c
	case DateTime:
		return NewText(timeparser.FormatDate(c.Time, f))
	case Number:
		if token, ok := timeparser.NormalizeDateSerial(c.Num, f); ok {
			return NewText(token)
		}
		return NewText(c.String())
	default:
		s := timeparser.NormalizeDateText(c.Str, f)
		if s == "" {
			return Cell{}
		}
		return NewText(s)
	}
}

// NormalizeTime converts c into an HH:MM token, truncating seconds.
func NormalizeTime(c Cell) Cell {
	switch c.Kind {
	case Absent:
		return c
	case DateTime:
		return NewText(timeparser.FormatTime(c.Time))
	case Number:
		if token, ok := timeparser.NormalizeTimeSerial(c.Num); ok {
			return NewText(token)
		}
		return NewText(c.String())
	default:
		s := timeparser.NormalizeTimeText(c.Str)
		if s == "" {
			return Cell{}
		}
		return NewText(s)
	}
}

// NormalizeOther is the light pass applied to non date/time columns:
// native dates become ISO instants, everything else is kept.
func NormalizeOther(c Cell) Cell {
	if c.Kind == DateTime {
		return NewText(c.String())
	}
	return c
}

// NormalizeNumber reads c as a number
func NormalizeNumber(c Cell) (float64, NumberState) {
	switch c.Kind {
	case Absent:
		return 0, NumberAbsent
	case Number:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return 0, NumberInvalid
		}
		return c.Num, NumberValid
	case Text:
		s := strings.TrimSpace(c.Str)
		if s == "" {
			return 0, NumberAbsent
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, NumberInvalid
		}
		return f, NumberValid
	default:
		return 0, NumberInvalid
	}
}

// CoerceNumber is the storage-boundary reading of c: anything that is not a
// finite number becomes 0.
func CoerceNumber(c Cell) float64 {
	f, state := NormalizeNumber(c)
	if state != NumberValid {
		return 0
	}
	return f
}
