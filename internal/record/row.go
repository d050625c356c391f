// Package record holds the row-level data shapes that flow between the sheet
// reader, the validator, the HTTP boundary and the submitter.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/septivank/solar-telemetry-ingest/internal/cell"
)

// Row is an ordered mapping from column name to a normalized cell.
// Key order is the order columns appeared in the sheet (or in the JSON body).
type Row struct {
	keys   []string
	values map[string]cell.Cell
}

// NewRow returns an empty row ready for Set
func NewRow() *Row {
	return &Row{values: make(map[string]cell.Cell)}
}

// Set stores c under key, keeping the first position of a repeated key
func (r *Row) Set(key string, c cell.Cell) *Row {
	if r.values == nil {
		r.values = make(map[string]cell.Cell)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = c
	return r
}

// Keys returns the column names in order
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of columns
func (r Row) Len() int {
	return len(r.keys)
}

// Lookup finds key exactly, then case-insensitively. It returns the key as
// stored in the row.
func (r Row) Lookup(key string) (cell.Cell, string, bool) {
	if c, ok := r.values[key]; ok {
		return c, key, true
	}
	for _, k := range r.keys {
		if strings.EqualFold(k, key) {
			return r.values[k], k, true
		}
	}
	return cell.Cell{}, "", false
}

// Get is Lookup without the bookkeeping; missing keys read as Absent
func (r Row) Get(key string) cell.Cell {
	c, _, _ := r.Lookup(key)
	return c
}

// First returns the first present, non-blank column among names
func (r Row) First(names ...string) (cell.Cell, string, bool) {
	for _, name := range names {
		if c, k, ok := r.Lookup(name); ok && !c.IsBlank() {
			return c, k, true
		}
	}
	return cell.Cell{}, "", false
}

// MarshalJSON writes the row as an object preserving column order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalCell(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping key order
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("row must be a JSON object")
	}

	*r = Row{values: make(map[string]cell.Cell)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in row", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
		c, err := decodeCell(raw)
		if err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
		r.Set(key, c)
	}

	_, err = dec.Token()
	return err
}

func marshalCell(c cell.Cell) ([]byte, error) {
	switch c.Kind {
	case cell.Number:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(c.Num)
	case cell.Text, cell.DateTime:
		return json.Marshal(c.String())
	default:
		return []byte("null"), nil
	}
}

func decodeCell(raw json.RawMessage) (cell.Cell, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return cell.Cell{}, err
	}

	switch x := v.(type) {
	case nil:
		return cell.Cell{}, nil
	case string:
		return cell.NewText(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return cell.NewText(x.String()), nil
		}
		return cell.NewNumber(f), nil
	case bool:
		return cell.NewText(strconv.FormatBool(x)), nil
	default:
		return cell.NewText(string(raw)), nil
	}
}
