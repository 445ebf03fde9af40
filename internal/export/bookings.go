// Package export writes host booking reports as Excel workbooks.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"ebikerent/internal/domain"
	"ebikerent/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Bookings"

var headers = []string{"Booking", "Bike", "Renter", "Email", "Start", "End", "Hours", "Status", "Total"}

var statusColors = map[models.BookingStatus]string{
	models.BookingRequested: "#FFF2CC",
	models.BookingApproved:  "#DDEBF7",
	models.BookingActive:    "#E2EFDA",
	models.BookingCompleted: "#D9D9D9",
	models.BookingCancelled: "#F8CBAD",
}

type Exporter struct {
	dir    string
	source domain.HostBookingLister
	logger *zerolog.Logger
	now    func() time.Time
}

func NewExporter(dir string, source domain.HostBookingLister, logger *zerolog.Logger) *Exporter {
	return &Exporter{dir: dir, source: source, logger: logger, now: time.Now}
}

// HostBookings saves the bookings on the caller's bikes into a workbook under
// the export directory and returns its path.
func (e *Exporter) HostBookings(ctx context.Context) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	page, err := e.source.ForMyBikes(ctx)
	if err != nil {
		return "", fmt.Errorf("list host bookings: %w", err)
	}

	path := filepath.Join(e.dir, fmt.Sprintf("host_bookings_%s.xlsx", e.now().Format("2006-01-02_150405")))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	if err := WriteBookings(file, page.Results); err != nil {
		return "", err
	}

	e.logger.Info().Str("file_path", path).Int("bookings", len(page.Results)).Msg("Excel file created")
	return path, nil
}

// WriteBookings renders bookings as a single sheet workbook into w.
func WriteBookings(w io.Writer, bookings []models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
		_ = f.SetCellStyle(SheetName, cell, cell, headerStyle)
	}

	styles := make(map[models.BookingStatus]int, len(statusColors))
	for status, color := range statusColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err == nil {
			styles[status] = id
		}
	}

	var total float64
	for i, b := range bookings {
		row := i + 2
		values := []any{
			b.ID,
			b.Bike.Title,
			b.Renter.FullName(),
			b.Renter.Email,
			b.StartTime.Format("2006-01-02 15:04"),
			b.EndTime.Format("2006-01-02 15:04"),
			b.Duration().Hours(),
			string(b.Status),
			b.TotalPrice.Float(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		if id, ok := styles[b.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(8, row)
			_ = f.SetCellStyle(SheetName, statusCell, statusCell, id)
		}
		if b.Status != models.BookingCancelled {
			total += b.TotalPrice.Float()
		}
	}

	totalRow := len(bookings) + 2
	_ = f.SetCellValue(SheetName, fmt.Sprintf("H%d", totalRow), "Total")
	_ = f.SetCellValue(SheetName, fmt.Sprintf("I%d", totalRow), total)

	_ = f.SetColWidth(SheetName, "A", "A", 10)
	_ = f.SetColWidth(SheetName, "B", "D", 25)
	_ = f.SetColWidth(SheetName, "E", "F", 18)
	_ = f.SetColWidth(SheetName, "G", "I", 12)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
