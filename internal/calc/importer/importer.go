package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"MyGens/internal/calc/sizing"

	"github.com/xuri/excelize/v2"
)

var ErrEmptySheet = errors.New("empty sheet")

// Sheet is the outcome of reading an appliance workbook.
type Sheet struct {
	Devices []sizing.DeviceInput
	Skipped int
}

// Parse reads the first sheet of an xlsx workbook. The header row is
// skipped; every other row is `id|name, running_kw, alpha, count`. Blank
// alpha keeps the catalog factor. Malformed rows are counted in Skipped.
func Parse(r io.Reader) (Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Sheet{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return Sheet{}, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return Sheet{}, ErrEmptySheet
	}

	var out Sheet
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		d, err := parseRow(row)
		if err != nil {
			out.Skipped++
			continue
		}
		out.Devices = append(out.Devices, d)
	}
	return out, nil
}

func parseRow(row []string) (sizing.DeviceInput, error) {
	if len(row) < 4 {
		return sizing.DeviceInput{}, fmt.Errorf("bad row")
	}
	id := strings.TrimSpace(row[0])
	if id == "" {
		return sizing.DeviceInput{}, fmt.Errorf("missing id")
	}
	running, err := toFloat(row[1])
	if err != nil {
		return sizing.DeviceInput{}, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(row[3]))
	if err != nil || count < 0 {
		return sizing.DeviceInput{}, fmt.Errorf("bad count %q", row[3])
	}
	d := sizing.DeviceInput{ID: id, Name: id, RunningKW: &running, Count: count}
	if strings.TrimSpace(row[2]) != "" {
		alpha, err := toFloat(row[2])
		if err != nil {
			return sizing.DeviceInput{}, err
		}
		d.Alpha = &alpha
	}
	return d, nil
}

func toFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %v", v)
	}
	return v, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
