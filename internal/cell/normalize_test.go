package cell_test

import (
	"math"
	"testing"
	"time"

	"github.com/septivank/solar-telemetry-ingest/internal/cell"
	"github.com/septivank/solar-telemetry-ingest/tools/timeparser"
)

func TestNormalizeDate_Variants(t *testing.T) {
	native := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   cell.Cell
		want cell.Cell
	}{
		{"absent", cell.Cell{}, cell.Cell{}},
		{"blank text", cell.NewText("   "), cell.Cell{}},
		{"native", cell.NewDateTime(native), cell.NewText("01-Dec-24")},
		{"serial", cell.NewNumber(45627), cell.NewText("01-Dec-24")},
		{"iso text", cell.NewText("2024-12-01"), cell.NewText("01-Dec-24")},
		{"canonical", cell.NewText("01-dec-24"), cell.NewText("01-Dec-24")},
		{"garbage", cell.NewText("tomorrow"), cell.NewText("tomorrow")},
		{"time-only serial", cell.NewNumber(0.5), cell.NewText("0.5")},
	}

	for _, tt := range tests {
		got := cell.NormalizeDate(tt.in, timeparser.DayMonthAbbrYear)
		if got != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.name, tt.want, got)
		}
	}
}

func TestNormalizeTime_Variants(t *testing.T) {
	native := time.Date(1899, 12, 30, 9, 30, 45, 0, time.UTC)

	tests := []struct {
		name string
		in   cell.Cell
		want cell.Cell
	}{
		{"absent", cell.Cell{}, cell.Cell{}},
		{"native", cell.NewDateTime(native), cell.NewText("09:30")},
		{"serial", cell.NewNumber(0.75), cell.NewText("18:00")},
		{"short text", cell.NewText("9:5"), cell.NewText("09:05")},
		{"seconds", cell.NewText("09:30:59"), cell.NewText("09:30")},
		{"garbage", cell.NewText("half past"), cell.NewText("half past")},
		{"negative serial", cell.NewNumber(-1), cell.NewText("-1")},
	}

	for _, tt := range tests {
		got := cell.NormalizeTime(tt.in)
		if got != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.name, tt.want, got)
		}
	}
}

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		name      string
		in        cell.Cell
		wantValue float64
		wantState cell.NumberState
	}{
		{"absent", cell.Cell{}, 0, cell.NumberAbsent},
		{"empty text", cell.NewText(""), 0, cell.NumberAbsent},
		{"number", cell.NewNumber(12.5), 12.5, cell.NumberValid},
		{"numeric text", cell.NewText(" 1200 "), 1200, cell.NumberValid},
		{"negative text", cell.NewText("-5"), -5, cell.NumberValid},
		{"word", cell.NewText("abc"), 0, cell.NumberInvalid},
		{"nan", cell.NewNumber(math.NaN()), 0, cell.NumberInvalid},
		{"inf text", cell.NewText("Inf"), 0, cell.NumberInvalid},
		{"date", cell.NewDateTime(time.Now()), 0, cell.NumberInvalid},
	}

	for _, tt := range tests {
		value, state := cell.NormalizeNumber(tt.in)
		if state != tt.wantState || value != tt.wantValue {
			t.Errorf("%s: expected (%v, %v), got (%v, %v)", tt.name, tt.wantValue, tt.wantState, value, state)
		}
	}
}

func TestCoerceNumber(t *testing.T) {
	if got := cell.CoerceNumber(cell.NewText("oops")); got != 0 {
		t.Errorf("Expected 0 for unparseable input, got %v", got)
	}
	if got := cell.CoerceNumber(cell.Cell{}); got != 0 {
		t.Errorf("Expected 0 for absent input, got %v", got)
	}
	if got := cell.CoerceNumber(cell.NewNumber(-5)); got != -5 {
		t.Errorf("Expected -5 to be kept as-is, got %v", got)
	}
}

func TestNormalizeOther(t *testing.T) {
	native := time.Date(2024, 12, 1, 9, 30, 0, 0, time.UTC)
	got := cell.NormalizeOther(cell.NewDateTime(native))
	if got.Kind != cell.Text || got.Str != "2024-12-01T09:30:00.000Z" {
		t.Errorf("Expected ISO instant text, got %+v", got)
	}

	num := cell.NewNumber(3)
	if cell.NormalizeOther(num) != num {
		t.Error("Expected numbers to pass through unchanged")
	}
}

func TestToken(t *testing.T) {
	if got := cell.NewText("  09:30 ").Token(); got != "09:30" {
		t.Errorf("Expected trimmed token, got %q", got)
	}
	if got := cell.NewText("   ").Token(); got != "" {
		t.Errorf("Expected blank text to have no token, got %q", got)
	}
	if got := cell.NewNumber(1.5).Token(); got != "1.5" {
		t.Errorf("Expected number token 1.5, got %q", got)
	}
}
