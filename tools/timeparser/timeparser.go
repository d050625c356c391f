package timeparser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateFormat selects the canonical date token a domain stores
type DateFormat int

const (
	// DayMonthYear is DD-MM-YYYY, e.g. 01-12-2024
	DayMonthYear DateFormat = iota
	// DayMonthAbbrYear is DD-MMM-YY, e.g. 01-Dec-24
	DayMonthAbbrYear
)

const secondsPerDay = 86400

// maxSerial is 31-Dec-9999 in the 1900 date system
const maxSerial = 2958465

var (
	dmyPattern     = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
	dmonyPattern   = regexp.MustCompile(`^(\d{2})-([A-Za-z]{3})-(\d{2})$`)
	isoDatePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	timeText       = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?::(\d{1,2}))?$`)
	canonicalTime  = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

var months = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// dateLayouts are tried in order once the canonical and ISO forms have failed
// Slash and dash dates read month-first, falling back to day-first only when
// the first number cannot be a month.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/1/2",
	"1/2/2006",
	"1-2-2006",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon Jan 2 2006",
}

// Layout returns the Go reference layout of the canonical token
func (f DateFormat) Layout() string {
	if f == DayMonthAbbrYear {
		return "02-Jan-06"
	}
	return "02-01-2006"
}

// Pattern returns the human readable shape of the token
func (f DateFormat) Pattern() string {
	if f == DayMonthAbbrYear {
		return "DD-MMM-YY"
	}
	return "DD-MM-YYYY"
}

// Example returns a sample token, used in validation messages and templates
func (f DateFormat) Example() string {
	if f == DayMonthAbbrYear {
		return "01-Dec-24"
	}
	return "01-12-2024"
}

// FormatDate renders the calendar part of t as a canonical token
func FormatDate(t time.Time, f DateFormat) string {
	return t.Format(f.Layout())
}

// FormatTime renders t as HH:MM, dropping seconds
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// IsCanonicalDate reports whether s is exactly a canonical token for f.
// The month abbreviation is matched case-insensitively.
func IsCanonicalDate(s string, f DateFormat) bool {
	_, ok := canonicalDate(s, f)
	return ok
}

// IsCanonicalTime reports whether s is HH:MM within 00:00..23:59
func IsCanonicalTime(s string) bool {
	return canonicalTime.MatchString(s)
}

// canonicalDate validates s against f and returns it with title-case month
func canonicalDate(s string, f DateFormat) (string, bool) {
	if f == DayMonthAbbrYear {
		m := dmonyPattern.FindStringSubmatch(s)
		if m == nil {
			return "", false
		}
		day, _ := strconv.Atoi(m[1])
		if day < 1 || day > 31 {
			return "", false
		}
		mon := strings.ToUpper(m[2][:1]) + strings.ToLower(m[2][1:])
		if monthIndex(mon) < 0 {
			return "", false
		}
		return m[1] + "-" + mon + "-" + m[3], true
	}

	m := dmyPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", false
	}
	return s, true
}

func monthIndex(mon string) int {
	for i, m := range months {
		if m == mon {
			return i
		}
	}
	return -1
}

// ParseDate tries the ISO form and then every known layout.
func ParseDate(s string) (time.Time, error) {
	if isoDatePattern.MatchString(s) {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t, nil
		}
	}

	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, fmt.Errorf("failed to parse date '%s': %w", s, lastErr)
}

// NormalizeDateText converts free text into a canonical date token.
// Text that cannot be understood is returned trimmed but otherwise unchanged
// so strict validation reports it.
func NormalizeDateText(s string, f DateFormat) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if token, ok := canonicalDate(s, f); ok {
		return token
	}

	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return reorderISO(m[1], m[2], m[3], f, s)
	}

	if t, err := ParseDate(s); err == nil {
		return FormatDate(t, f)
	}

	return s
}

// reorderISO rewrites YYYY-MM-DD digit groups into the canonical order
// without calendar checks, so 2024-02-30 reads the same as 30-02-2024.
// A month that has no abbreviation leaves s unchanged.
func reorderISO(year, month, day string, f DateFormat, s string) string {
	if f == DayMonthYear {
		return day + "-" + month + "-" + year
	}
	mon, _ := strconv.Atoi(month)
	if mon < 1 || mon > 12 {
		return s
	}
	return day + "-" + months[mon-1] + "-" + year[2:]
}

// NormalizeDateSerial decodes a 1900-system day serial into a date token.
// Serials below 1 carry no calendar day.
func NormalizeDateSerial(serial float64, f DateFormat) (string, bool) {
	if serial < 1 {
		return "", false
	}
	t, ok := SerialToTime(serial, false)
	if !ok {
		return "", false
	}
	return FormatDate(t, f), true
}

// NormalizeTimeText rewrites H:M[:S] text as zero-padded HH:MM.
// Hour and minute ranges are left to validation.
func NormalizeTimeText(s string) string {
	s = strings.TrimSpace(s)
	m := timeText.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// NormalizeTimeSerial decodes the fraction-of-day part of a serial into HH:MM
func NormalizeTimeSerial(serial float64) (string, bool) {
	t, ok := SerialToTime(serial, false)
	if !ok {
		return "", false
	}
	return FormatTime(t), true
}

// SerialToTime converts a spreadsheet serial (days since the epoch, fraction
// is time of day) to a wall-clock time in UTC. Seconds are rounded to the
// nearest whole second before any truncation happens downstream.
func SerialToTime(serial float64, date1904 bool) (time.Time, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 0 || serial >= maxSerial+1 {
		return time.Time{}, false
	}

	days := math.Floor(serial)
	secs := math.Round((serial - days) * secondsPerDay)
	if secs >= secondsPerDay {
		days++
		secs -= secondsPerDay
	}

	var base time.Time
	switch {
	case date1904:
		base = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)
	case days < 60:
		base = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)
	case days == 60:
		// serial 60 is the non-existent 29-Feb-1900, pinned to the 28th
		base = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)
		days = 59
	default:
		base = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	}

	return base.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second), true
}
