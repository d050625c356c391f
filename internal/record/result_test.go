package record_test

import (
	"encoding/json"
	"testing"

	"github.com/septivank/solar-telemetry-ingest/internal/record"
)

func TestNewUploadResult_ValidWhenNoErrors(t *testing.T) {
	result := record.NewUploadResult(nil, nil)
	if !result.IsValid {
		t.Error("Expected result with no errors to be valid")
	}

	out, _ := json.Marshal(result)
	if string(out) != `{"rows":[],"errors":[],"isValid":true}` {
		t.Errorf("Unexpected JSON: %s", out)
	}

	result = record.NewUploadResult(nil, []record.RowError{{RowNumber: 2, Errors: []string{"Missing Date"}}})
	if result.IsValid {
		t.Error("Expected result with errors to be invalid")
	}
}

func TestDecodeUploadResult_LegacyShape(t *testing.T) {
	in := `{
		"data": [{"Date":"01-12-2024"}],
		"errors": [
			{"rowIndex": 3, "messages": ["Missing Date", 5]},
			{"something": "else"}
		]
	}`

	result, err := record.DecodeUploadResult([]byte(in))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(result.Rows) != 1 {
		t.Fatalf("Expected 1 row from data, got %d", len(result.Rows))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Expected unknown error entry to be dropped, got %d errors", len(result.Errors))
	}
	if result.Errors[0].RowNumber != 3 {
		t.Errorf("Expected rowNumber 3, got %d", result.Errors[0].RowNumber)
	}
	if result.Errors[0].Errors[1] != "5" {
		t.Errorf("Expected non-string message to be stringified, got %q", result.Errors[0].Errors[1])
	}
	if result.IsValid {
		t.Error("Expected isValid to be computed as false")
	}
}

func TestDecodeUploadResult_ExplicitIsValidWins(t *testing.T) {
	in := `{"rows":[],"errors":[{"rowNumber":2,"errors":["x"]}],"isValid":true}`

	result, err := record.DecodeUploadResult([]byte(in))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.IsValid {
		t.Error("Expected explicit isValid to be kept")
	}
}

func TestDecodeUploadResult_MissingRows(t *testing.T) {
	result, err := record.DecodeUploadResult([]byte(`{"rows":"nope"}`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Rows) != 0 || !result.IsValid {
		t.Errorf("Expected empty valid result, got %+v", result)
	}

	if _, err := record.DecodeUploadResult([]byte(`not json`)); err == nil {
		t.Error("Expected error for malformed body")
	}
}

func TestEncode_Legacy(t *testing.T) {
	result := record.NewUploadResult(nil, []record.RowError{{RowNumber: 4, Errors: []string{"Missing Time"}}})

	out, err := json.Marshal(result.Encode(record.LegacyShape))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expected := `{"rows":[],"errors":[{"rowIndex":4,"messages":["Missing Time"]}],"isValid":false}`
	if string(out) != expected {
		t.Errorf("Expected %s, got %s", expected, out)
	}

	if record.ParseShape("LEGACY") != record.LegacyShape || record.ParseShape("") != record.StandardShape {
		t.Error("Unexpected ParseShape result")
	}
}
