package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"MyGens/internal/calc/sizing"
	"MyGens/internal/i18n"

	"github.com/dustin/go-humanize"
	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Summary"
	DevicesSheet = "Devices"
)

type Input struct {
	Project string       `json:"project"`
	Author  string       `json:"author"`
	Title   string       `json:"title"`
	Lang    string       `json:"lang"`
	Sizing  sizing.Input `json:"sizing"`
}

type row struct {
	Label string
	Value string
}

func kw(v float64) string {
	return humanize.FormatFloat("#,###.##", v) + " kW"
}

// summary is the label/value table shared by both report formats.
func summary(res sizing.Result, tr i18n.Translator) []row {
	rows := []row{
		{tr.T("report.installation"), tr.T("report." + string(res.InstallationType))},
	}
	if res.Industrial != nil {
		rows = append(rows,
			row{tr.T("report.baseLoad"), kw(res.Industrial.BaseKW)},
			row{tr.T("report.motorLoad"), kw(res.Industrial.MotorKW)},
			row{tr.T("report.startMethod"), tr.T("sizingTool.industrial.methods." + string(res.Industrial.StartMethod))},
		)
	}
	rows = append(rows,
		row{tr.T("sizingTool.runningLoad"), kw(res.Loads.RunningLoad)},
		row{tr.T("sizingTool.peakLoad"), kw(res.Loads.PeakLoad)},
		row{tr.T("sizingTool.info.recommended"), humanize.Comma(int64(res.RecommendedKW)) + " kW"},
		row{tr.T("sizingTool.info.margin"), strconv.Itoa(res.MarginPercent) + " %"},
	)

	amps, voltage, phase, wires, sw := "N/A", "N/A", "N/A", "N/A", "N/A"
	if s := res.Service; s != nil {
		amps = humanize.Comma(int64(s.Amps)) + " A"
		voltage = s.VoltageLabel
		phase = s.PhaseLabel
		wires = strconv.Itoa(s.Wires)
		sw = s.Switch
	}
	rows = append(rows,
		row{tr.T("sizingTool.info.amps"), amps},
		row{tr.T("report.voltage"), voltage},
		row{tr.T("report.phase"), phase},
		row{tr.T("report.wires"), wires},
		row{tr.T("sizingTool.info.atsSwitch"), sw},
		row{tr.T("report.duty"), tr.T("sizingTool.info." + res.Duty)},
	)
	return rows
}

func activeDevices(res sizing.Result) []sizing.ApplianceSpec {
	var out []sizing.ApplianceSpec
	for _, d := range res.Devices {
		if d.Count > 0 {
			out = append(out, d)
		}
	}
	return out
}

func deviceName(d sizing.ApplianceSpec, tr i18n.Translator) string {
	key := "sizingTool.devices." + d.ID
	if name := tr.T(key); name != key {
		return name
	}
	return d.Name
}

// WritePDF renders the sizing proposal as a single A4 page.
func WritePDF(w io.Writer, in Input, res sizing.Result, tr i18n.Translator, date time.Time) error {
	title := in.Title
	if title == "" {
		title = tr.T("report.title")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	enc := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, enc(title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, enc(fmt.Sprintf("%s: %s", tr.T("report.project"), in.Project)))
	pdf.Ln(6)
	pdf.Cell(0, 6, enc(fmt.Sprintf("%s: %s", tr.T("report.author"), in.Author)))
	pdf.Ln(6)
	pdf.Cell(0, 6, enc(fmt.Sprintf("%s: %s", tr.T("report.date"), date.Format("2006-01-02"))))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, enc(fmt.Sprintf("%s - %d kW", tr.T("sizingTool.info.proposal"), res.RecommendedKW)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	for _, r := range summary(res, tr) {
		pdf.CellFormat(70, 7, enc(r.Label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, enc(r.Value), "1", 1, "L", false, 0, "")
	}

	if devices := activeDevices(res); len(devices) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, enc(tr.T("report.devices")))
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "B", 10)
		for _, h := range []string{"report.device", "report.count", "report.runningKW", "report.alpha"} {
			pdf.CellFormat(45, 7, enc(tr.T(h)), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		for _, d := range devices {
			pdf.CellFormat(45, 7, enc(deviceName(d, tr)), "1", 0, "L", false, 0, "")
			pdf.CellFormat(45, 7, strconv.Itoa(d.Count), "1", 0, "R", false, 0, "")
			pdf.CellFormat(45, 7, humanize.FormatFloat("#,###.##", d.RunningKW), "1", 0, "R", false, 0, "")
			pdf.CellFormat(45, 7, humanize.FormatFloat("#,###.#", d.Alpha), "1", 1, "R", false, 0, "")
		}
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, enc(tr.T("report.disclaimer")), "", "L", false)

	return pdf.Output(w)
}

// WriteXLSX writes a workbook with a summary sheet and, for residential
// runs, the active devices.
func WriteXLSX(w io.Writer, in Input, res sizing.Result, tr i18n.Translator) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	rows := append([]row{
		{tr.T("report.project"), in.Project},
		{tr.T("report.author"), in.Author},
	}, summary(res, tr)...)
	for i, r := range rows {
		if err := f.SetSheetRow(SummarySheet, cell(1, i+1), &[]any{r.Label, r.Value}); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SummarySheet, "A", "B", 28); err != nil {
		return err
	}

	if _, err := f.NewSheet(DevicesSheet); err != nil {
		return err
	}
	header := []any{"id", tr.T("report.device"), tr.T("report.runningKW"), tr.T("report.alpha"), tr.T("report.count")}
	if err := f.SetSheetRow(DevicesSheet, "A1", &header); err != nil {
		return err
	}
	for i, d := range activeDevices(res) {
		values := []any{d.ID, deviceName(d, tr), d.RunningKW, d.Alpha, d.Count}
		if err := f.SetSheetRow(DevicesSheet, cell(1, i+2), &values); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
