// Package sheet decodes xlsx workbooks into raw cell matrices, turns them
// into ordered row records and generates upload templates.
package sheet

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/septivank/solar-telemetry-ingest/internal/cell"
	"github.com/septivank/solar-telemetry-ingest/tools/timeparser"
)

// Matrix is the first sheet of a workbook as typed cells, row-major.
// Rows may be shorter than each other.
type Matrix [][]cell.Cell

// builtin number formats that render a date or a time
var dateNumFmts = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	45: true, 46: true, 47: true,
}

var (
	quotedSection  = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)
	dateFormatCode = regexp.MustCompile(`(?i)[dmyhs]`)
)

// Open reads the first sheet of an xlsx workbook
func Open(r io.Reader) (Matrix, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Msg: msgUnreadable, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Msg: msgNoSheet}
	}
	name := sheets[0]

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Msg: msgUnreadable, Err: err}
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	d := decoder{
		file:     f,
		sheet:    name,
		date1904: date1904,
		styles:   make(map[int]bool),
	}

	matrix := make(Matrix, len(raw))
	for i, values := range raw {
		row := make([]cell.Cell, len(values))
		for j, v := range values {
			c, err := d.decode(i, j, v)
			if err != nil {
				return nil, &ParseError{Msg: msgUnreadable, Err: err}
			}
			row[j] = c
		}
		matrix[i] = row
	}

	return matrix, nil
}

type decoder struct {
	file     *excelize.File
	sheet    string
	date1904 bool
	// style index -> renders as date
	styles map[int]bool
}

func (d *decoder) decode(row, col int, raw string) (cell.Cell, error) {
	if raw == "" {
		return cell.Cell{}, nil
	}

	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return cell.Cell{}, err
	}

	typ, err := d.file.GetCellType(d.sheet, axis)
	if err != nil {
		return cell.Cell{}, fmt.Errorf("failed to read cell type of %s: %w", axis, err)
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError:
		return cell.NewText(raw), nil
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return cell.NewText("TRUE"), nil
		}
		return cell.NewText("FALSE"), nil
	case excelize.CellTypeDate:
		if t, err := timeparser.ParseDate(raw); err == nil {
			return cell.NewDateTime(t), nil
		}
		return cell.NewText(raw), nil
	}

	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return cell.NewText(raw), nil
	}

	isDate, err := d.dateStyled(axis)
	if err != nil {
		return cell.Cell{}, err
	}
	if isDate {
		if t, ok := timeparser.SerialToTime(num, d.date1904); ok {
			return cell.NewDateTime(t), nil
		}
	}

	return cell.NewNumber(num), nil
}

func (d *decoder) dateStyled(axis string) (bool, error) {
	idx, err := d.file.GetCellStyle(d.sheet, axis)
	if err != nil {
		return false, fmt.Errorf("failed to read cell style of %s: %w", axis, err)
	}
	if isDate, ok := d.styles[idx]; ok {
		return isDate, nil
	}

	style, err := d.file.GetStyle(idx)
	if err != nil {
		return false, fmt.Errorf("failed to read style %d: %w", idx, err)
	}

	isDate := dateNumFmts[style.NumFmt]
	if !isDate && style.CustomNumFmt != nil {
		isDate = isDateFormatCode(*style.CustomNumFmt)
	}
	d.styles[idx] = isDate
	return isDate, nil
}

// isDateFormatCode reports whether a custom number format renders calendar
// or clock fields. Literal text and [color]/[h] blocks are ignored.
func isDateFormatCode(code string) bool {
	if code == "" || strings.EqualFold(code, "general") {
		return false
	}
	section := strings.SplitN(code, ";", 2)[0]
	return dateFormatCode.MatchString(quotedSection.ReplaceAllString(section, ""))
}
