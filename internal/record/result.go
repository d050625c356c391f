package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RowError lists the problems found on one spreadsheet row. RowNumber is the
// line a user sees in their spreadsheet: the first data row is 2.
type RowError struct {
	RowNumber int      `json:"rowNumber"`
	Errors    []string `json:"errors"`
}

// UploadResult is the canonical outcome of an upload or a re-validation
type UploadResult struct {
	UploadID string     `json:"uploadId,omitempty"`
	Rows     []Row      `json:"rows"`
	Errors   []RowError `json:"errors"`
	IsValid  bool       `json:"isValid"`
}

// NewUploadResult builds a result whose IsValid follows from errs
func NewUploadResult(rows []Row, errs []RowError) UploadResult {
	if rows == nil {
		rows = []Row{}
	}
	if errs == nil {
		errs = []RowError{}
	}
	return UploadResult{Rows: rows, Errors: errs, IsValid: len(errs) == 0}
}

// Shape selects the wire form of an UploadResult
type Shape int

const (
	// StandardShape is {rows, errors:[{rowNumber, errors}], isValid}
	StandardShape Shape = iota
	// LegacyShape is {rows, errors:[{rowIndex, messages}], isValid}
	LegacyShape
)

// ParseShape maps a query value to a Shape; unknown values mean standard
func ParseShape(s string) Shape {
	if strings.EqualFold(strings.TrimSpace(s), "legacy") {
		return LegacyShape
	}
	return StandardShape
}

type legacyRowError struct {
	RowIndex int      `json:"rowIndex"`
	Messages []string `json:"messages"`
}

type legacyUploadResult struct {
	UploadID string           `json:"uploadId,omitempty"`
	Rows     []Row            `json:"rows"`
	Errors   []legacyRowError `json:"errors"`
	IsValid  bool             `json:"isValid"`
}

// Encode returns a JSON-ready value of r in the requested shape
func (r UploadResult) Encode(shape Shape) any {
	if shape != LegacyShape {
		return r
	}
	out := legacyUploadResult{
		UploadID: r.UploadID,
		Rows:     r.Rows,
		Errors:   make([]legacyRowError, 0, len(r.Errors)),
		IsValid:  r.IsValid,
	}
	if out.Rows == nil {
		out.Rows = []Row{}
	}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, legacyRowError{RowIndex: e.RowNumber, Messages: e.Errors})
	}
	return out
}

// DecodeUploadResult reads any supported result shape:
//   - rows under "rows" or "data"
//   - errors as [{rowNumber, errors}] or [{rowIndex, messages}]; other entries are dropped
//   - isValid taken as-is when it is a boolean, computed otherwise
func DecodeUploadResult(data []byte) (UploadResult, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return UploadResult{}, fmt.Errorf("failed to decode upload result: %w", err)
	}

	var uploadID string
	_ = json.Unmarshal(envelope["uploadId"], &uploadID)

	rows, ok := decodeRows(envelope["rows"])
	if !ok {
		rows, _ = decodeRows(envelope["data"])
	}

	errs := decodeRowErrors(envelope["errors"])

	result := NewUploadResult(rows, errs)
	result.UploadID = uploadID

	var isValid bool
	if raw, ok := envelope["isValid"]; ok && json.Unmarshal(raw, &isValid) == nil {
		result.IsValid = isValid
	}

	return result, nil
}

func decodeRows(raw json.RawMessage) ([]Row, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var rows []Row
	if err := json.Unmarshal(raw, &rows); err != nil || rows == nil {
		return nil, false
	}
	return rows, true
}

func decodeRowErrors(raw json.RawMessage) []RowError {
	var entries []map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil {
		return nil
	}

	out := make([]RowError, 0, len(entries))
	for _, e := range entries {
		if n, ok := decodeRowNumber(e["rowNumber"]); ok {
			if msgs, ok := decodeMessages(e["errors"]); ok {
				out = append(out, RowError{RowNumber: n, Errors: msgs})
				continue
			}
		}
		if n, ok := decodeRowNumber(e["rowIndex"]); ok {
			if msgs, ok := decodeMessages(e["messages"]); ok {
				out = append(out, RowError{RowNumber: n, Errors: msgs})
			}
		}
	}
	return out
}

func decodeRowNumber(raw json.RawMessage) (int, bool) {
	var n float64
	if len(raw) == 0 || json.Unmarshal(raw, &n) != nil {
		return 0, false
	}
	return int(n), true
}

func decodeMessages(raw json.RawMessage) ([]string, bool) {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || items == nil {
		return nil, false
	}

	msgs := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			msgs = append(msgs, s)
			continue
		}
		msgs = append(msgs, string(bytes.TrimSpace(item)))
	}
	return msgs, true
}
