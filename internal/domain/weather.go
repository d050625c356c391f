package domain

import "github.com/septivank/solar-telemetry-ingest/tools/timeparser"

// WeatherRules describes plant weather station sheets
func WeatherRules() Rules {
	irradiance := func(header, key string, sample float64) Field {
		return Field{Header: header, StorageKey: key, Ranged: true, Min: 0, Max: 1500, Sample: sample}
	}

	return Rules{
		Name:         Weather,
		Title:        "Weather",
		SheetName:    "WeatherTemplate",
		DateFormat:   timeparser.DayMonthAbbrYear,
		Header:       HeaderScan,
		DuplicateKey: KeyDateTime,
		Fields: []Field{
			irradiance("POA", "poa", 850),
			irradiance("GHI", "ghi", 780),
			irradiance("AlbedoUp", "albedoUp", 820),
			irradiance("AlbedoDown", "albedoDown", 160),
			{
				Header: "ModuleTemp", StorageKey: "moduleTemp", Label: "Module Temperature",
				Ranged: true, Min: 0, Max: 100, NonZero: true, NonZeroOnWrite: true, Sample: 45.5,
			},
			{Header: "AmbientTemp", StorageKey: "ambientTemp", Label: "Ambient Temperature", Ranged: true, Min: 0, Max: 100, Sample: 31.2},
			{Header: "WindSpeed", StorageKey: "windSpeed", Label: "Wind Speed", Ranged: true, Min: 0, Max: 200, Sample: 3.4},
			{Header: "Rainfall", StorageKey: "rainfall", Ranged: true, Min: 0, Max: 500, Sample: 0},
			{Header: "Humidity", StorageKey: "humidity", Ranged: true, Min: 0, Max: 100, Sample: 62},
		},
		Write:      WriteSkipExisting,
		SampleDate: "01-Dec-24",
		SampleTime: "09:30",
		Messages: Messages{
			MissingDate: "Missing Date",
			MissingTime: "Missing Time",
			BadDate:     "Invalid Date format (expected DD-MMM-YY, e.g., 01-Dec-24)",
			BadTime:     "Invalid Time format (expected HH:MM 24-hour, e.g., 09:30)",
			Duplicate:   "Duplicate Date & Time",
			NotNumberf:  "%s must be a number",
			OutOfRangef: "%s must be between %g and %g",
			Zerof:       "%s cannot be 0",
		},
	}
}
