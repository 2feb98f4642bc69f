// Package export renders host records as spreadsheet files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/user/cloudscope/internal/model"
	"github.com/user/cloudscope/internal/provider"
)

var columns = []string{"Domain", "IP", "Provider", "Country", "Status", "Title", "Discovered"}

// Filename returns a dated export filename, e.g. cloud-hosts-20260828.csv.
func Filename(ext string, now time.Time) string {
	return fmt.Sprintf("cloud-hosts-%s.%s", now.Format("20060102"), ext)
}

// WriteCSV writes records as CSV prefixed with a UTF-8 byte-order marker
// so spreadsheet applications pick up the encoding.
func WriteCSV(w io.Writer, reg *provider.Registry, records []model.HostRecord) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range records {
		if err := cw.Write(row(reg, r)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes records as an Excel workbook.
func WriteXLSX(w io.Writer, reg *provider.Registry, records []model.HostRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Hosts"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
	}

	for rowNum, r := range records {
		for colNum, value := range row(reg, r) {
			cell, _ := excelize.CoordinatesToCellName(colNum+1, rowNum+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	return f.Write(w)
}

func row(reg *provider.Registry, r model.HostRecord) []string {
	name := r.Provider
	if p, ok := reg.Get(r.Provider); ok {
		name = p.Name
	}

	identity := r.Domain
	if identity == "" {
		identity = r.IP
	}

	return []string{
		identity,
		r.IP,
		name,
		r.Country,
		fmt.Sprintf("%d", r.StatusCode),
		r.Title,
		r.DiscoveredAt.Format("2006-01-02 15:04"),
	}
}
