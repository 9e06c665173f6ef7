package action

import (
	"github.com/xuri/excelize/v2"
)

var deliveryColumns = []string{"Timestamp", "Action", "Type", "Event", "Target", "Success", "Status", "Message", "Duration (ms)"}

// BuildDeliveryWorkbook renders delivery logs as an Excel workbook for the
// dashboard's export affordance.
func BuildDeliveryWorkbook(logs []DeliveryLog) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Deliveries"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range deliveryColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, entry := range logs {
		values := []any{
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
			entry.ActionName,
			string(entry.ActionType),
			string(entry.Event),
			entry.Target,
			entry.Success,
			entry.StatusCode,
			entry.Message,
			entry.Duration,
		}
		for colIdx, val := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	for i := range deliveryColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
