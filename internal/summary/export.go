package summary

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"zwrot/internal/calendar"
	"zwrot/internal/model"
)

// TSVHeader is the spreadsheet header row the dashboard copies.
var TSVHeader = []string{"Nr faktury", "Data wykonania", "Kwota", "Refundacja", "Czy opłacone"}

// WriteTSV writes one row per record in the layout of the refund spreadsheet:
// the number as a text formula, DD.MM.YYYY dates and comma decimals.
func WriteTSV(w io.Writer, recs []model.Record, status string) error {
	var b strings.Builder
	b.WriteString(strings.Join(TSVHeader, "\t"))
	for _, r := range recs {
		b.WriteByte('\n')
		b.WriteString(strings.Join([]string{
			fmt.Sprintf(`="%s"`, r.Number),
			shortDate(r.ServiceDate),
			strings.Replace(r.Amount().StringFixed(2), ".", ",", 1),
			status,
			"",
		}, "\t"))
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

func shortDate(s string) string {
	t, err := calendar.ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format("02.01.2006")
}

const reportFont = "Go"

// RenderPDF writes a one-page report of s and the records it was computed from.
func RenderPDF(w io.Writer, s Summary, recs []model.Record) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts have no glyphs for ł, ś and ż.
	pdf.AddUTF8FontFromBytes(reportFont, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(reportFont, "B", gobold.TTF)
	pdf.AddPage()

	pdf.SetFont(reportFont, "B", 16)
	pdf.Cell(0, 10, "Podsumowanie faktur")
	pdf.Ln(12)

	pdf.SetFont(reportFont, "", 11)
	rows := [][2]string{
		{"Liczba faktur", fmt.Sprint(s.Count)},
		{"Łączna kwota", s.Total.StringFixed(2) + " PLN"},
		{"Średnia wartość", s.Average.StringFixed(2) + " PLN"},
	}
	if s.Range.From != "" {
		rows = append(rows, [2]string{"Zakres usług", s.Range.From + " - " + s.Range.To})
	}
	for _, r := range rows {
		pdf.CellFormat(60, 7, r[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, r[1], "", 1, "L", false, 0, "")
	}

	if len(s.Quarters) > 0 {
		pdf.Ln(4)
		pdf.SetFont(reportFont, "B", 12)
		pdf.Cell(0, 8, "Kwartały (wg daty wystawienia)")
		pdf.Ln(9)
		pdf.SetFont(reportFont, "", 11)
		for _, q := range s.Quarters {
			pdf.CellFormat(60, 7, q.String(), "", 0, "L", false, 0, "")
			pdf.CellFormat(40, 7, q.Total.StringFixed(2)+" PLN", "", 1, "R", false, 0, "")
		}
	}

	pdf.Ln(4)
	pdf.SetFont(reportFont, "B", 10)
	widths := []float64{50, 35, 35, 30, 30}
	for i, h := range []string{"Nr faktury", "Data wykonania", "Data wystawienia", "Miasto", "Kwota"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(reportFont, "", 10)
	for _, r := range recs {
		cells := []string{r.Number, r.ServiceDate, r.IssueDate, r.City, r.Amount().StringFixed(2)}
		for i, c := range cells {
			align := "L"
			if i == len(cells)-1 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
