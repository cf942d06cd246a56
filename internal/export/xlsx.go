package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"docextract/internal/interpreter"
)

// SheetName is the worksheet holding the exported rows.
const SheetName = "Fields"

// WriteXLSX writes rows as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []interpreter.TableRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &[]string{r.Field, r.Value}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 30)
	_ = f.SetColWidth(SheetName, "B", "B", 60)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
