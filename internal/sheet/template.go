package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/septivank/solar-telemetry-ingest/internal/domain"
)

// ContentType is the media type of generated workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TemplateFilename returns the download name for a domain template
func TemplateFilename(rules domain.Rules) string {
	return fmt.Sprintf("%s_template.xlsx", rules.Name)
}

// Template builds a workbook with the domain's header row and one example row
func Template(rules domain.Rules) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rules.SheetName); err != nil {
		return nil, fmt.Errorf("failed to name template sheet: %w", err)
	}

	headers := rules.Headers()
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}

	sample := []interface{}{rules.SampleDate, rules.SampleTime}
	for _, field := range rules.Fields {
		sample = append(sample, field.Sample)
	}

	if err := f.SetSheetRow(rules.SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write template header: %w", err)
	}
	if err := f.SetSheetRow(rules.SheetName, "A2", &sample); err != nil {
		return nil, fmt.Errorf("failed to write template sample: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}
	return buf.Bytes(), nil
}
