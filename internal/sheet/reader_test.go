package sheet_test

import (
	"testing"
	"time"

	"github.com/septivank/solar-telemetry-ingest/internal/cell"
	"github.com/septivank/solar-telemetry-ingest/internal/domain"
	"github.com/septivank/solar-telemetry-ingest/internal/sheet"
)

func text(s string) cell.Cell { return cell.NewText(s) }
func num(f float64) cell.Cell { return cell.NewNumber(f) }
func date(t time.Time) cell.Cell { return cell.NewDateTime(t) }

func TestRead_WeatherScansForHeader(t *testing.T) {
	m := sheet.Matrix{
		{text("Plant weather log")},
		{},
		{text(" DATE "), text("Time"), text("POA"), text("Module\nTemp")},
		{num(45627), num(0.375), num(850)},
		{text(""), text("  ")},
		{text("2024-12-01"), text("9:5"), text("abc"), num(41)},
	}

	rows, err := sheet.NewReader(domain.WeatherRules(), 20).Read(m)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows after skipping blank line, got %d", len(rows))
	}

	first := rows[0]
	if got := first.Get("Date"); got.Str != "01-Dec-24" {
		t.Errorf("Expected serial date to normalize to 01-Dec-24, got %+v", got)
	}
	if got := first.Get("Time"); got.Str != "09:00" {
		t.Errorf("Expected serial time to normalize to 09:00, got %+v", got)
	}
	if got := first.Get("Module Temp"); got.Kind != cell.Absent {
		t.Errorf("Expected short row to pad with null, got %+v", got)
	}

	second := rows[1]
	if second.Get("Date").Str != "01-Dec-24" || second.Get("Time").Str != "09:05" {
		t.Errorf("Expected text date and time to normalize, got %v %v", second.Get("Date"), second.Get("Time"))
	}
	if got := second.Get("POA"); got.Kind != cell.Text || got.Str != "abc" {
		t.Errorf("Expected other columns to pass through, got %+v", got)
	}

	keys := first.Keys()
	want := []string{"Date", "Time", "POA", "Module Temp"}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Expected key %d to be %q, got %q", i, want[i], keys[i])
		}
	}
}

func TestRead_WeatherHeaderMissing(t *testing.T) {
	m := sheet.Matrix{
		{text("Date"), text("POA")},
		{text("01-Dec-24"), num(1)},
	}

	_, err := sheet.NewReader(domain.WeatherRules(), 20).Read(m)
	if !sheet.IsParseError(err) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
	if err.Error() != "Could not detect header row. Expected columns: Date, Time" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestRead_WeatherHeaderBeyondScanWindow(t *testing.T) {
	m := sheet.Matrix{{text("Plant A")}, {text("Station 3")}, {text("Date"), text("Time")}}

	if _, err := sheet.NewReader(domain.WeatherRules(), 2).Read(m); !sheet.IsParseError(err) {
		t.Errorf("Expected ParseError when header lies outside the scan window, got %v", err)
	}
}

func TestRead_WeatherBlankRowsOutsideScanWindow(t *testing.T) {
	m := sheet.Matrix{{text("Weather export")}}
	for i := 0; i < 20; i++ {
		m = append(m, []cell.Cell{})
	}
	m = append(m,
		[]cell.Cell{{}, text("  ")},
		[]cell.Cell{text("Date"), text("Time"), text("ModuleTemp")},
		[]cell.Cell{text("01-Dec-24"), text("09:30"), num(40)},
	)

	rows, err := sheet.NewReader(domain.WeatherRules(), 20).Read(m)
	if err != nil {
		t.Fatalf("Expected header after blank spacer rows to be found, got %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if got := rows[0].Get("Date").Str; got != "01-Dec-24" {
		t.Errorf("Expected Date '01-Dec-24', got '%s'", got)
	}
}

func TestRead_MeterFixedHeader(t *testing.T) {
	start := time.Date(1899, 12, 30, 6, 15, 0, 0, time.UTC)

	m := sheet.Matrix{
		{text("Date"), text("Start Time"), text("Stop"), text("Export"), text("Export"), text("Logged")},
		{text("2024-12-01"), date(start), text("18:30:59"), num(10), num(20), date(time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC))},
	}

	rows, err := sheet.NewReader(domain.MeterRules(), 0).Read(m)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if got := row.Get("Date").Str; got != "01-12-2024" {
		t.Errorf("Expected meter date 01-12-2024, got %q", got)
	}
	if got := row.Get("Start Time").Str; got != "06:15" {
		t.Errorf("Expected start time 06:15, got %q", got)
	}
	if got := row.Get("Stop").Str; got != "18:30" {
		t.Errorf("Expected stop time truncated to 18:30, got %q", got)
	}
	if got := row.Get("Export (2)"); got.Num != 20 {
		t.Errorf("Expected duplicate header to be suffixed, got %+v", got)
	}
	if got := row.Get("Logged").Str; got != "2024-12-01T08:00:00.000Z" {
		t.Errorf("Expected native date in other column to become ISO instant, got %q", got)
	}
}

func TestRead_MeterWithoutDateHeader(t *testing.T) {
	m := sheet.Matrix{
		{text("Export"), text("Import")},
		{num(1), num(2)},
	}

	if _, err := sheet.NewReader(domain.MeterRules(), 0).Read(m); !sheet.IsParseError(err) {
		t.Errorf("Expected ParseError, got %v", err)
	}
}

func TestRead_EmptyMatrix(t *testing.T) {
	_, err := sheet.NewReader(domain.MeterRules(), 0).Read(nil)
	if !sheet.IsParseError(err) || err.Error() != "Excel sheet is empty" {
		t.Errorf("Expected empty sheet ParseError, got %v", err)
	}
}
