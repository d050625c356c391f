package validator

import (
	"fmt"

	"github.com/septivank/solar-telemetry-ingest/internal/cell"
	"github.com/septivank/solar-telemetry-ingest/internal/domain"
	"github.com/septivank/solar-telemetry-ingest/internal/record"
	"github.com/septivank/solar-telemetry-ingest/tools/timeparser"
)

// Validator checks row records against one domain's rule table
type Validator struct {
	rules domain.Rules
}

// NewValidator creates a validator for the given domain
func NewValidator(rules domain.Rules) *Validator {
	return &Validator{rules: rules}
}

// Rules returns the rule table this validator applies
func (v *Validator) Rules() domain.Rules {
	return v.rules
}

// ValidateRow returns the row's problems, or nil when the row is clean.
// The only side effect is recording the row's duplicate key in seen.
func (v *Validator) ValidateRow(row record.Row, rowNumber int, seen *SeenSet) *record.RowError {
	msgs := v.rules.Messages
	var errs []string

	date := cell.NormalizeDate(row.Get("Date"), v.rules.DateFormat).Token()
	tm := cell.NormalizeTime(row.Get("Time")).Token()
	if tm == "" && !v.rules.TimeRequired() {
		tm = v.rules.DefaultTime
	}

	if date == "" {
		errs = append(errs, msgs.MissingDate)
	}
	if tm == "" {
		errs = append(errs, msgs.MissingTime)
	}

	dateOK := date != "" && timeparser.IsCanonicalDate(date, v.rules.DateFormat)
	if date != "" && !dateOK {
		errs = append(errs, msgs.BadDate)
	}

	timeOK := tm != "" && timeparser.IsCanonicalTime(tm)
	if tm != "" && !timeOK {
		errs = append(errs, msgs.BadTime)
	}

	if key, ok := v.duplicateKey(date, dateOK, tm, timeOK); ok && !seen.Add(key) {
		errs = append(errs, msgs.Duplicate)
	}

	startOK := v.checkWindow(row, v.rules.StartColumns, msgs.BadStart, &errs)
	stopOK := v.checkWindow(row, v.rules.StopColumns, msgs.BadStop, &errs)

	v.checkFields(row, &errs)
	hasReading := v.checkReadings(row, &errs)

	if v.rules.RequireWindowOrReading && !(startOK && stopOK) && !hasReading {
		errs = append(errs, msgs.NoWindowOrReading)
	}

	if len(errs) == 0 {
		return nil
	}
	return &record.RowError{RowNumber: rowNumber, Errors: errs}
}

func (v *Validator) duplicateKey(date string, dateOK bool, tm string, timeOK bool) (string, bool) {
	switch v.rules.DuplicateKey {
	case domain.KeyDate:
		return date, dateOK
	default:
		return date + "_" + tm, dateOK && timeOK
	}
}

// checkWindow validates the first non-blank column among names as a time
// of day. It reports whether a valid value was found.
func (v *Validator) checkWindow(row record.Row, names []string, msg string, errs *[]string) bool {
	if len(names) == 0 {
		return false
	}
	c, _, ok := row.First(names...)
	if !ok {
		return false
	}
	if timeparser.IsCanonicalTime(cell.NormalizeTime(c).Token()) {
		return true
	}
	*errs = append(*errs, msg)
	return false
}

// checkFields applies the per-field numeric rules of the table
func (v *Validator) checkFields(row record.Row, errs *[]string) {
	msgs := v.rules.Messages

	for _, f := range v.rules.Fields {
		if !f.Ranged && !f.NonZero {
			continue
		}

		value, state := cell.NormalizeNumber(row.Get(f.Header))
		switch state {
		case cell.NumberAbsent:
			continue
		case cell.NumberInvalid:
			*errs = append(*errs, fmt.Sprintf(msgs.NotNumberf, f.Name()))
			continue
		}

		if f.NonZero && value == 0 {
			*errs = append(*errs, fmt.Sprintf(msgs.Zerof, f.Name()))
		}
		if f.Ranged && (value < f.Min || value > f.Max) {
			*errs = append(*errs, fmt.Sprintf(msgs.OutOfRangef, f.Name(), f.Min, f.Max))
		}
	}
}

// checkReadings validates every column selected by name pattern. It reports
// whether at least one valid, non-negative reading was found.
func (v *Validator) checkReadings(row record.Row, errs *[]string) bool {
	if v.rules.ReadingColumns == nil {
		return false
	}
	msgs := v.rules.Messages

	found := false
	for _, key := range row.Keys() {
		if !v.rules.ReadingColumns.MatchString(key) {
			continue
		}

		value, state := cell.NormalizeNumber(row.Get(key))
		switch state {
		case cell.NumberAbsent:
		case cell.NumberInvalid:
			*errs = append(*errs, fmt.Sprintf(msgs.NotNumberf, key))
		default:
			if value < 0 {
				*errs = append(*errs, fmt.Sprintf(msgs.Negativef, key))
			} else {
				found = true
			}
		}
	}

	return found
}
