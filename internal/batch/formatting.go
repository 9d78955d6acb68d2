package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/legaltech-cl/extracto/internal/record"
)

// FormatRows renders rows in the given format. The xlsx format is
// binary and only available through WriteOutput.
func FormatRows(rows []record.Record, format string, delimiter rune) (string, error) {
	switch format {
	case "json":
		return formatJSON(rows)
	case "csv":
		return formatCSV(rows, delimiter)
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatCSV renders rows as delimited text with a header row.
func formatCSV(rows []record.Record, delimiter rune) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)
	if delimiter != 0 {
		writer.Comma = delimiter
	}

	if err := writer.Write(record.Headers); err != nil {
		return "", err
	}
	for _, rec := range rows {
		if err := writer.Write(rec.Values()); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return output.String(), writer.Error()
}

// formatJSON renders rows as an indented JSON array of field maps.
func formatJSON(rows []record.Record) (string, error) {
	out := make([]map[string]string, len(rows))
	for i, rec := range rows {
		out[i] = map[string]string(rec)
	}
	bts, err := json.MarshalIndent(out, "", "  ")
	return string(bts), err
}

// writeXLSX writes rows to an Excel workbook with a bold header row.
func writeXLSX(rows []record.Record, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Operaciones"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}
	for i, h := range record.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for rowIdx, rec := range rows {
		for col, v := range rec.Values() {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

// WriteOutput writes rows to outputPath (or stdout when empty) in the
// given format. The xlsx format requires an output path.
func WriteOutput(rows []record.Record, format string, delimiter rune, outputPath string) error {
	if format == "xlsx" {
		if outputPath == "" {
			return fmt.Errorf("xlsx output requires an output file")
		}
		return writeXLSX(rows, outputPath)
	}

	text, err := FormatRows(rows, format, delimiter)
	if err != nil {
		return err
	}
	if outputPath == "" {
		_, err := fmt.Print(text)
		return err
	}
	return os.WriteFile(outputPath, []byte(text), 0o600)
}
