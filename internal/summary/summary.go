// Package summary computes the totals shown after extraction and on the
// dashboard, and renders them as text, PDF or TSV.
package summary

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"zwrot/internal/calendar"
	"zwrot/internal/model"
)

// Quarter is a calendar quarter of a given year, keyed by issue date.
type Quarter struct {
	Year    int             `json:"year"`
	Quarter int             `json:"quarter"`
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
}

func (q Quarter) String() string { return fmt.Sprintf("Q%d/%d", q.Quarter, q.Year) }

type Month struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`

	key calendar.MonthYear
}

type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Summary field names follow the dashboard's stats object.
type Summary struct {
	Count    int             `json:"invoiceCount"`
	Total    decimal.Decimal `json:"totalAmount"`
	Average  decimal.Decimal `json:"averageAmount"`
	Range    DateRange       `json:"dateRange"`
	Quarters []Quarter       `json:"quarters"`
	Months   []Month         `json:"monthlyBreakdown"`
}

// QuarterOf returns the quarter number (1-4) of t.
func QuarterOf(t time.Time) int { return (int(t.Month())-1)/3 + 1 }

// Summarize totals recs. A record with an unparseable date still counts
// towards the totals but is left out of the bucket that needs that date.
func Summarize(recs []model.Record) Summary {
	s := Summary{Count: len(recs), Quarters: []Quarter{}, Months: []Month{}}

	type qkey struct{ year, quarter int }
	quarters := map[qkey]*Quarter{}
	months := map[calendar.MonthYear]*Month{}
	var first, last time.Time

	for _, r := range recs {
		amount := r.Amount()
		s.Total = s.Total.Add(amount)

		if t, err := calendar.ParseDate(r.ServiceDate); err == nil {
			if first.IsZero() || t.Before(first) {
				first = t
			}
			if last.IsZero() || t.After(last) {
				last = t
			}
			my := calendar.Of(t)
			m, ok := months[my]
			if !ok {
				m = &Month{Month: my.String(), key: my}
				months[my] = m
			}
			m.Total = m.Total.Add(amount)
			m.Count++
		}

		if t, err := calendar.ParseDate(r.IssueDate); err == nil {
			k := qkey{t.Year(), QuarterOf(t)}
			q, ok := quarters[k]
			if !ok {
				q = &Quarter{Year: k.year, Quarter: k.quarter}
				quarters[k] = q
			}
			q.Total = q.Total.Add(amount)
			q.Count++
		}
	}

	if s.Count > 0 {
		s.Average = s.Total.Div(decimal.NewFromInt(int64(s.Count))).Round(2)
	}
	if !first.IsZero() {
		s.Range = DateRange{From: first.Format("2006-01-02"), To: last.Format("2006-01-02")}
	}

	for _, q := range quarters {
		s.Quarters = append(s.Quarters, *q)
	}
	sort.Slice(s.Quarters, func(i, j int) bool {
		a, b := s.Quarters[i], s.Quarters[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Quarter < b.Quarter
	})

	for _, m := range months {
		s.Months = append(s.Months, *m)
	}
	sort.Slice(s.Months, func(i, j int) bool { return s.Months[i].key.Compare(s.Months[j].key) < 0 })
	return s
}

// Format writes the plain-text report printed after extraction.
func Format(w io.Writer, s Summary) error {
	var b strings.Builder
	line := strings.Repeat("=", 50)

	fmt.Fprintf(&b, "%s\nPODSUMOWANIE\n%s\n\n", line, line)
	fmt.Fprintf(&b, "  Przetworzono faktur:      %d\n", s.Count)
	fmt.Fprintf(&b, "  Łączna kwota faktur:      %s PLN\n", s.Total.StringFixed(2))
	fmt.Fprintf(&b, "  Średnia wartość faktury:  %s PLN\n", s.Average.StringFixed(2))
	if s.Range.From != "" {
		fmt.Fprintf(&b, "  Zakres usług (od-do):     %s - %s\n", s.Range.From, s.Range.To)
	}

	if len(s.Quarters) > 0 {
		b.WriteString("\nKwartały (wg daty wystawienia):\n")
		for _, q := range s.Quarters {
			fmt.Fprintf(&b, "  %-9s %10s PLN  (%d)\n", q.String(), q.Total.StringFixed(2), q.Count)
		}
	}
	if len(s.Months) > 0 {
		b.WriteString("\nMiesiące (wg daty wykonania):\n")
		for _, m := range s.Months {
			fmt.Fprintf(&b, "  %-22s %10s PLN  (%d)\n", m.Month, m.Total.StringFixed(2), m.Count)
		}
	}
	b.WriteString(line + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}
