package domain

import (
	"regexp"

	"github.com/septivank/solar-telemetry-ingest/tools/timeparser"
)

var meterReadingColumns = regexp.MustCompile(`(?i)export|import`)

// MeterRules describes daily energy meter sheets
func MeterRules() Rules {
	return Rules{
		Name:         Meter,
		Title:        "Meter",
		SheetName:    "MeterTemplate",
		DateFormat:   timeparser.DayMonthYear,
		Header:       HeaderFirstRow,
		DefaultTime:  "00:00",
		DuplicateKey: KeyDate,
		Fields: []Field{
			{Header: "ActiveEnergyImport", StorageKey: "activeEnergyImport", Sample: 1200},
			{Header: "ActiveEnergyExport", StorageKey: "activeEnergyExport", Sample: 300},
			{Header: "ReactiveEnergyImport", StorageKey: "reactiveEnergyImport", Sample: 150},
			{Header: "ReactiveEnergyExport", StorageKey: "reactiveEnergyExport", Sample: 80},
			{Header: "Voltage", StorageKey: "voltage", Sample: 415},
			{Header: "Current", StorageKey: "current", Sample: 32},
			{Header: "Frequency", StorageKey: "frequency", Sample: 50},
			{Header: "PowerFactor", StorageKey: "powerFactor", Sample: 0.98},
		},
		ReadingColumns:         meterReadingColumns,
		StartColumns:           []string{"Start Time", "StartTime", "Start"},
		StopColumns:            []string{"Stop Time", "StopTime", "Stop"},
		RequireWindowOrReading: true,
		Write:                  WriteOverwrite,
		SampleDate:             "01-01-2025",
		SampleTime:             "10:00",
		Messages: Messages{
			MissingDate:       "Missing Date",
			BadDate:           "Date must be in format DD-MM-YYYY (e.g., 01-12-2024)",
			BadTime:           "Time must be HH:MM (24-hour)",
			BadStart:          "Start Time must be HH:MM (24-hour)",
			BadStop:           "Stop Time must be HH:MM (24-hour)",
			Duplicate:         "No duplicate dates allowed",
			NotNumberf:        "%s must be numeric",
			Negativef:         "%s cannot be negative",
			NoWindowOrReading: "Each date must have either Start/Stop times OR Export/Import readings",
		},
	}
}
