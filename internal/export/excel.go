package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"courtside/internal/models"
)

const sheetName = "Reservations"

var headers = []string{"Reference", "User", "Court", "Date", "Start", "End", "Coach", "Equipment", "Total", "Status"}

// ReservationsWorkbook builds a one-sheet xlsx report of reservations,
// one row per reservation. The caller owns the returned file and must
// Close it.
func ReservationsWorkbook(reservations []*models.Reservation) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, res := range reservations {
		row := i + 2
		values := []any{
			res.Reference,
			res.UserID,
			res.CourtID,
			res.Date.Format(models.DateFormat),
			models.FormatClock(res.StartMin),
			models.FormatClock(res.EndMin),
			coachCell(res.CoachID),
			equipmentCell(res.Equipment),
			res.TotalPrice,
			res.Status,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "J", 14)

	return f, nil
}

func coachCell(coachID int64) string {
	if coachID == 0 {
		return ""
	}
	return fmt.Sprintf("%d", coachID)
}

func equipmentCell(lines []models.EquipmentLine) string {
	if len(lines) == 0 {
		return ""
	}
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, fmt.Sprintf("%dx%d", line.EquipmentID, line.Quantity))
	}
	return strings.Join(parts, ", ")
}
