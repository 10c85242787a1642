package report

import (
	"fmt"
	"unicode/utf8"

	"github.com/akeren/event-registration/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	SpreadsheetFilename    = "registrations.xlsx"
	SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SheetName              = "Registrations"

	columnPadding  = 2
	maxColumnWidth = 255
)

type SpreadsheetGenerator struct {
	opts Options
}

func NewSpreadsheetGenerator(opts Options) *SpreadsheetGenerator {
	return &SpreadsheetGenerator{opts: opts.withDefaults()}
}

type sheetStyles struct {
	title, filter, header, cell int
}

func (g *SpreadsheetGenerator) Generate(records []models.Registrant, filter Filter) (*Document, error) {
	if len(records) == 0 {
		return nil, ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("report: rename sheet: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	lastColumn, err := excelize.ColumnNumberToName(len(Columns))
	if err != nil {
		return nil, err
	}

	row := 1
	title := fmt.Sprintf("%s · %s", g.opts.Title, g.opts.reportDate())
	if err := writeBanner(f, row, lastColumn, title, styles.title); err != nil {
		return nil, err
	}

	if filter.Active() {
		row++
		if err := writeBanner(f, row, lastColumn, filter.Describe(), styles.filter); err != nil {
			return nil, err
		}
	}

	row++
	headerRow := row
	widths := make([]int, len(Columns))
	header := make([]interface{}, len(Columns))
	for i, name := range Columns {
		header[i] = name
		widths[i] = utf8.RuneCountInString(name)
	}
	if err := f.SetSheetRow(SheetName, cellName(1, headerRow), &header); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, cellName(1, headerRow), lastColumn+fmt.Sprint(headerRow), styles.header); err != nil {
		return nil, err
	}

	for _, record := range records {
		row++
		values := rowValues(record, g.opts.Location)
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
			if n := utf8.RuneCountInString(v); n > widths[i] {
				widths[i] = n
			}
		}
		if err := f.SetSheetRow(SheetName, cellName(1, row), &cells); err != nil {
			return nil, err
		}
	}

	if err := f.SetCellStyle(SheetName, cellName(1, headerRow+1), lastColumn+fmt.Sprint(row), styles.cell); err != nil {
		return nil, err
	}

	for i, width := range widths {
		column, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, column, column, float64(min(width+columnPadding, maxColumnWidth))); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("report: write spreadsheet: %w", err)
	}

	return &Document{
		Filename:    SpreadsheetFilename,
		ContentType: SpreadsheetContentType,
		Body:        buf.Bytes(),
		Pages:       1,
	}, nil
}

func writeBanner(f *excelize.File, row int, lastColumn, text string, style int) error {
	start := cellName(1, row)
	end := lastColumn + fmt.Sprint(row)

	if err := f.MergeCell(SheetName, start, end); err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, start, text); err != nil {
		return err
	}
	return f.SetCellStyle(SheetName, start, end, style)
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	thin := []excelize.Border{
		{Type: "left", Color: "CCCCCC", Style: 1},
		{Type: "right", Color: "CCCCCC", Style: 1},
		{Type: "top", Color: "CCCCCC", Style: 1},
		{Type: "bottom", Color: "CCCCCC", Style: 1},
	}

	var (
		s   sheetStyles
		err error
	)

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "1A237E"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}

	if s.filter, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Italic: true, Size: 11, Color: "555555"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, err
	}

	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"0B0A08"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thin,
	}); err != nil {
		return s, err
	}

	s.cell, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top"},
		Border:    thin,
	})
	return s, err
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
