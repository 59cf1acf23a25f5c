// Package export writes the run history to spreadsheet form for offline
// review.
package export

import (
	"fmt"
	"time"

	"github.com/tealeg/xlsx"

	"echoscribe/internal/app/model"
)

// RunsToExcel writes one row per recorded run.
func RunsToExcel(runs []model.RunRecord, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Runs")
	if err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	headerRow.AddCell().Value = "ID"
	headerRow.AddCell().Value = "Source"
	headerRow.AddCell().Value = "Status"
	headerRow.AddCell().Value = "Failed Stage"
	headerRow.AddCell().Value = "Segments"
	headerRow.AddCell().Value = "Output Location"
	headerRow.AddCell().Value = "Duration (ms)"
	headerRow.AddCell().Value = "Created At"
	headerRow.AddCell().Value = "Error Message"

	for _, r := range runs {
		row := sheet.AddRow()
		row.AddCell().Value = fmt.Sprint(r.ID)
		row.AddCell().Value = r.Source
		row.AddCell().Value = r.Status
		row.AddCell().Value = r.FailedStage
		row.AddCell().Value = fmt.Sprint(r.SegmentCount)
		row.AddCell().Value = r.OutputLocation
		row.AddCell().Value = fmt.Sprint(r.DurationMs)
		row.AddCell().Value = r.CreatedAt.Format(time.RFC3339)
		row.AddCell().Value = r.ErrorMessage
	}

	if err := file.Save(outputFilePath); err != nil {
		return fmt.Errorf("failed to save %s: %w", outputFilePath, err)
	}
	return nil
}
