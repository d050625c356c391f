// Package pipeline runs the sheet reader and row validator over a whole
// batch and assembles the upload result.
package pipeline

import (
	"io"

	"go.uber.org/zap"

	"github.com/septivank/solar-telemetry-ingest/internal/domain"
	"github.com/septivank/solar-telemetry-ingest/internal/record"
	"github.com/septivank/solar-telemetry-ingest/internal/sheet"
	"github.com/septivank/solar-telemetry-ingest/internal/validator"
)

// FirstDataRow is the spreadsheet line number of the first data row
const FirstDataRow = 2

// Pipeline is the upload and re-validation flow of one domain
type Pipeline struct {
	rules     domain.Rules
	reader    *sheet.Reader
	validator *validator.Validator
	logger    *zap.Logger
}

// New creates a pipeline for rules
func New(rules domain.Rules, scanRows int, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		rules:     rules,
		reader:    sheet.NewReader(rules, scanRows),
		validator: validator.NewValidator(rules),
		logger:    logger.With(zap.String("domain", string(rules.Name))),
	}
}

// Rules returns the domain rule table
func (p *Pipeline) Rules() domain.Rules {
	return p.rules
}

// Upload decodes a workbook and validates every row in it. Structural
// failures come back as *sheet.ParseError.
func (p *Pipeline) Upload(r io.Reader) (record.UploadResult, error) {
	m, err := sheet.Open(r)
	if err != nil {
		p.logger.Warn("Rejected workbook", zap.Error(err))
		return record.UploadResult{}, err
	}
	return p.Run(m)
}

// Run reads rows out of a decoded matrix and validates them
func (p *Pipeline) Run(m sheet.Matrix) (record.UploadResult, error) {
	rows, err := p.reader.Read(m)
	if err != nil {
		p.logger.Warn("Rejected sheet", zap.Error(err))
		return record.UploadResult{}, err
	}
	return p.Validate(rows), nil
}

// Validate checks rows with a fresh seen-set. Rows are echoed back as given.
func (p *Pipeline) Validate(rows []record.Row) record.UploadResult {
	seen := validator.NewSeenSet()
	var errs []record.RowError

	for i, row := range rows {
		if re := p.validator.ValidateRow(row, i+FirstDataRow, seen); re != nil {
			errs = append(errs, *re)
		}
	}

	result := record.NewUploadResult(rows, errs)

	p.logger.Info("Validated rows",
		zap.Int("rows", len(rows)),
		zap.Int("invalid_rows", len(errs)),
		zap.Bool("is_valid", result.IsValid),
	)

	return result
}
