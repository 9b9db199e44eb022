package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"worknow/internal/domain"
	"worknow/internal/models"
	"worknow/internal/timefmt"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Lịch đặt chỗ"

// ScheduleExporter renders the reservation schedule of the watched
// workspaces into an Excel file: one column per day, one row per
// workspace, each cell listing the blocking windows of that day.
type ScheduleExporter struct {
	backend domain.BackendClient
	path    string
	logger  *zerolog.Logger
}

func NewScheduleExporter(backend domain.BackendClient, path string, logger *zerolog.Logger) *ScheduleExporter {
	return &ScheduleExporter{backend: backend, path: path, logger: logger}
}

// Export writes the schedule for the given period and returns the file path.
func (e *ScheduleExporter) Export(ctx context.Context, workspaces []models.Workspace, startDate, endDate time.Time) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Thời gian: %s - %s",
		timefmt.FormatDate(startDate), timefmt.FormatDate(endDate)))

	dateCols := e.writeDateHeaders(f, startDate, endDate)
	e.writeWorkspaceHeaders(f, workspaces)

	for row, ws := range workspaces {
		windows, err := e.backend.WorkspaceTimes(ctx, ws.ID)
		if err != nil {
			e.logger.Error().Err(err).Str("workspace_id", ws.ID).Msg("failed to fetch schedule for export")
			continue
		}
		e.writeScheduleRow(f, row+3, windows, dateCols)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 25)
	for i := 'B'; i <= 'Z'; i++ {
		_ = f.SetColWidth(sheetName, string(i), string(i), 20)
	}

	lastCell, _ := excelize.CoordinatesToCellName(len(dateCols)+1, 1)
	_ = f.MergeCell(sheetName, "A1", lastCell)

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("schedule_%s_to_%s.xlsx",
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("schedule export created")
	return filePath, nil
}

func (e *ScheduleExporter) writeDateHeaders(f *excelize.File, startDate, endDate time.Time) map[string]int {
	col := 2
	current := timefmt.DayStart(startDate)
	dateCols := make(map[string]int)

	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for !current.After(endDate) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, current.Format("02/01"))
		_ = f.SetCellStyle(sheetName, cell, cell, style)
		dateCols[current.Format("2006-01-02")] = col

		col++
		current = current.AddDate(0, 0, 1)
	}
	return dateCols
}

func (e *ScheduleExporter) writeWorkspaceHeaders(f *excelize.File, workspaces []models.Workspace) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	for i, ws := range workspaces {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		title := ws.Title
		if title == "" {
			title = ws.ID
		}
		_ = f.SetCellValue(sheetName, cell, title)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
	}
}

func (e *ScheduleExporter) writeScheduleRow(f *excelize.File, row int, windows []models.TimeWindow, dateCols map[string]int) {
	for dateKey, col := range dateCols {
		day, err := time.ParseInLocation("2006-01-02", dateKey, time.Local)
		if err != nil {
			continue
		}

		dayWindows := windowsForDay(windows, day)
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheetName, cell, cellText(dayWindows, day))

		styleID, err := e.cellStyle(f, dayWindows)
		if err == nil {
			_ = f.SetCellStyle(sheetName, cell, cell, styleID)
		}
	}
}

// windowsForDay keeps blocking windows that touch the given calendar day.
func windowsForDay(windows []models.TimeWindow, day time.Time) []models.TimeWindow {
	dayEnd := timefmt.DayEnd(day)
	var out []models.TimeWindow
	for _, w := range windows {
		if !w.Blocking() {
			continue
		}
		if w.StartDate.After(dayEnd) || w.EndDate.Before(day) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func cellText(windows []models.TimeWindow, day time.Time) string {
	if len(windows) == 0 {
		return "Trống"
	}

	var text string
	for _, w := range windows {
		icon := "⏳"
		if w.Status == models.StatusInUse {
			icon = "📌"
		}
		if w.Category == models.CategoryDay && !timefmt.SameDay(w.StartDate, w.EndDate) {
			text += fmt.Sprintf("%s Cả ngày (%s - %s)\n", icon,
				timefmt.FormatDate(w.StartDate), timefmt.FormatDate(w.EndDate))
			continue
		}
		text += fmt.Sprintf("%s %s - %s\n", icon,
			w.StartDate.Format("15:04"), w.EndDate.Format("15:04"))
	}
	return text
}

// cellStyle picks the fill by the day's worst status: red when a window is
// already in use, yellow while a request is still being handled, green when
// the day is free.
func (e *ScheduleExporter) cellStyle(f *excelize.File, windows []models.TimeWindow) (int, error) {
	color := "#C6EFCE"
	for _, w := range windows {
		if w.Status == models.StatusInUse {
			color = "#FFC7CE"
			break
		}
		color = "#FFEB9C"
	}

	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "top",
			WrapText:   true,
		},
	})
}
