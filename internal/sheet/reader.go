package sheet

import (
	"fmt"
	"strings"

	"github.com/septivank/solar-telemetry-ingest/internal/cell"
	"github.com/septivank/solar-telemetry-ingest/internal/domain"
	"github.com/septivank/solar-telemetry-ingest/internal/record"
)

// DefaultScanRows is how many leading rows the header scan inspects
const DefaultScanRows = 20

// Reader turns a Matrix into row records for one domain
type Reader struct {
	rules    domain.Rules
	scanRows int
}

// NewReader creates a reader. scanRows <= 0 means DefaultScanRows.
func NewReader(rules domain.Rules, scanRows int) *Reader {
	if scanRows <= 0 {
		scanRows = DefaultScanRows
	}
	return &Reader{rules: rules, scanRows: scanRows}
}

type column struct {
	index int
	key   string
	kind  columnKind
}

type columnKind int

const (
	columnOther columnKind = iota
	columnDate
	columnTime
)

// Read locates the header row and emits one record per non-blank data row
func (r *Reader) Read(m Matrix) ([]record.Row, error) {
	if len(m) == 0 {
		return nil, &ParseError{Msg: msgEmptySheet}
	}

	headerIdx, err := r.findHeader(m)
	if err != nil {
		return nil, err
	}

	columns := r.columns(m[headerIdx])

	rows := make([]record.Row, 0, len(m)-headerIdx-1)
	for _, values := range m[headerIdx+1:] {
		if blankRow(values) {
			continue
		}

		row := record.NewRow()
		for _, col := range columns {
			var c cell.Cell
			if col.index < len(values) {
				c = values[col.index]
			}
			row.Set(col.key, r.normalize(col.kind, c))
		}
		rows = append(rows, *row)
	}

	return rows, nil
}

func (r *Reader) findHeader(m Matrix) (int, error) {
	if r.rules.Header == domain.HeaderFirstRow {
		if !hasHeader(m[0], "date") {
			return 0, &ParseError{Msg: msgNoHeaderRow + "Date"}
		}
		return 0, nil
	}

	// blank rows do not count toward the scan window
	scanned := 0
	for i := 0; i < len(m) && scanned < r.scanRows; i++ {
		if blankRow(m[i]) {
			continue
		}
		scanned++
		if hasHeader(m[i], "date") && hasHeader(m[i], "time") {
			return i, nil
		}
	}
	return 0, &ParseError{Msg: msgNoHeaderRow + "Date, Time"}
}

// columns builds the output keys for a header row: cleaned, with date and
// time mapped to their canonical names and repeats suffixed " (2)", " (3)".
func (r *Reader) columns(header []cell.Cell) []column {
	seen := make(map[string]int)
	columns := make([]column, 0, len(header))

	for i, h := range header {
		name := cleanHeader(h.String())
		if name == "" {
			continue
		}

		kind := columnOther
		switch {
		case strings.EqualFold(name, "date"):
			name, kind = "Date", columnDate
		case strings.EqualFold(name, "time"):
			name, kind = "Time", columnTime
		case r.rules.IsTimeColumn(name):
			kind = columnTime
		}

		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s (%d)", name, n)
			kind = columnOther
		}

		columns = append(columns, column{index: i, key: name, kind: kind})
	}

	return columns
}

func (r *Reader) normalize(kind columnKind, c cell.Cell) cell.Cell {
	switch kind {
	case columnDate:
		return cell.NormalizeDate(c, r.rules.DateFormat)
	case columnTime:
		return cell.NormalizeTime(c)
	default:
		return cell.NormalizeOther(c)
	}
}

// cleanHeader collapses whitespace and newlines into single spaces
func cleanHeader(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func hasHeader(row []cell.Cell, name string) bool {
	for _, c := range row {
		if strings.EqualFold(cleanHeader(c.String()), name) {
			return true
		}
	}
	return false
}

func blankRow(values []cell.Cell) bool {
	for _, c := range values {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}
