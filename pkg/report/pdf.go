package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/akeren/event-registration/internal/models"
	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

const (
	PDFFilename    = "registrations.pdf"
	PDFContentType = "application/pdf"

	pdfFont         = "Helvetica"
	pdfLineHeight   = 5.0
	pdfHeaderHeight = 8.0
	pdfFooterSpace  = 14.0
)

// Relative column weights; scaled to the printable width.
var pdfColumnWeights = []float64{32, 45, 25, 20, 28, 45, 35}

type PDFGenerator struct {
	opts Options
}

func NewPDFGenerator(opts Options) *PDFGenerator {
	return &PDFGenerator{opts: opts.withDefaults()}
}

func (g *PDFGenerator) Generate(records []models.Registrant, filter Filter) (*Document, error) {
	if len(records) == 0 {
		return nil, ErrNothingToExport
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(g.opts.Title, true)
	pdf.SetCreator("event-registration", false)

	left, _, right, _ := pdf.GetMargins()
	pageWidth, pageHeight := pdf.GetPageSize()
	widths := scaleWidths(pdfColumnWeights, pageWidth-left-right)
	bottomLimit := pageHeight - pdfFooterSpace

	subtitle := g.opts.reportDate()
	if filter.Active() {
		subtitle += "   " + filter.Describe()
	}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont(pdfFont, "B", 16)
		pdf.SetTextColor(26, 35, 126)
		pdf.CellFormat(0, 9, toCP1252(g.opts.Title), "", 1, "L", false, 0, "")

		pdf.SetFont(pdfFont, "", 10)
		pdf.SetTextColor(85, 85, 85)
		pdf.CellFormat(0, 6, toCP1252(subtitle), "", 1, "L", false, 0, "")
		pdf.Ln(3)

		pdf.SetFont(pdfFont, "B", 10)
		pdf.SetFillColor(26, 35, 126)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetDrawColor(180, 180, 180)
		for i, name := range Columns {
			pdf.CellFormat(widths[i], pdfHeaderHeight, name, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(pdfHeaderHeight)
	})

	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	newPage := func() {
		pdf.AddPage()
		pdf.SetFont(pdfFont, "", 9)
		pdf.SetTextColor(40, 40, 40)
		pdf.SetDrawColor(180, 180, 180)
	}
	newPage()

	for i, record := range records {
		lines, height := layoutRow(pdf, rowValues(record, g.opts.Location), widths)

		if pdf.GetY()+height > bottomLimit {
			newPage()
		}

		if i%2 == 0 {
			pdf.SetFillColor(255, 255, 255)
		} else {
			pdf.SetFillColor(245, 245, 245)
		}

		x, y := left, pdf.GetY()
		for col, width := range widths {
			pdf.Rect(x, y, width, height, "FD")
			for n, line := range lines[col] {
				pdf.SetXY(x, y+float64(n)*pdfLineHeight)
				pdf.CellFormat(width, pdfLineHeight, line, "", 0, "L", false, 0, "")
			}
			x += width
		}
		pdf.SetXY(left, y+height)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: write pdf: %w", err)
	}

	return &Document{
		Filename:    PDFFilename,
		ContentType: PDFContentType,
		Body:        buf.Bytes(),
		Pages:       pdf.PageNo(),
	}, nil
}

// layoutRow wraps every cell to its column width with the current font and
// returns the wrapped lines and the height of the tallest cell.
func layoutRow(pdf *fpdf.Fpdf, values []string, widths []float64) ([][]string, float64) {
	lines := make([][]string, len(values))
	maxLines := 1

	for i, value := range values {
		wrapped := pdf.SplitLines([]byte(toCP1252(value)), widths[i])
		cell := make([]string, 0, len(wrapped))
		for _, line := range wrapped {
			cell = append(cell, string(line))
		}
		if len(cell) == 0 {
			cell = []string{""}
		}
		lines[i] = cell
		maxLines = max(maxLines, len(cell))
	}

	return lines, float64(maxLines) * pdfLineHeight
}

func scaleWidths(weights []float64, total float64) []float64 {
	var sum float64
	for _, w := range weights {
		sum += w
	}

	scaled := make([]float64, len(weights))
	for i, w := range weights {
		scaled[i] = w * total / sum
	}
	return scaled
}

// toCP1252 converts UTF-8 to the single-byte encoding the core PDF fonts use.
// Runes outside Windows-1252 become '?'.
func toCP1252(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}
