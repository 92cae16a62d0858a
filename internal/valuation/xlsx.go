package valuation

import (
	"fmt"

	"flex-valuation/internal/model"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "valuation"

// WriteXLSXFile writes the same table as WriteCSV to a single-sheet workbook.
// Numbers stay numeric; missing values are blank cells.
func WriteXLSXFile(path string, rows []model.HourlyRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		return fmt.Errorf("xlsx stream writer: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells(r)); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}
