package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid date")

// polishMonths is indexed by time.Month-1, as shown in the portal's date-picker header.
var polishMonths = [12]string{
	"styczeń", "luty", "marzec", "kwiecień", "maj", "czerwiec",
	"lipiec", "sierpień", "wrzesień", "październik", "listopad", "grudzień",
}

// ParseDate accepts DD/MM/YYYY and YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	layout := "2006-01-02"
	if strings.Contains(s, "/") {
		layout = "02/01/2006"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// MonthYear is the granularity the date-picker pages through.
type MonthYear struct {
	Year  int
	Month time.Month
}

func Of(t time.Time) MonthYear {
	return MonthYear{Year: t.Year(), Month: t.Month()}
}

// Compare orders (year, month) lexicographically.
func (m MonthYear) Compare(o MonthYear) int {
	switch {
	case m.Year < o.Year:
		return -1
	case m.Year > o.Year:
		return 1
	case m.Month < o.Month:
		return -1
	case m.Month > o.Month:
		return 1
	}
	return 0
}

func (m MonthYear) String() string {
	return MonthName(m.Month) + " " + strconv.Itoa(m.Year)
}

func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return polishMonths[m-1]
}

// ParseHeader reads a header such as "Marzec 2025".
func ParseHeader(s string) (MonthYear, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) < 2 {
		return MonthYear{}, fmt.Errorf("%w: header %q", ErrInvalidDate, s)
	}

	year, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return MonthYear{}, fmt.Errorf("%w: header %q", ErrInvalidDate, s)
	}
	for i, name := range polishMonths {
		if fields[0] == name {
			return MonthYear{Year: year, Month: time.Month(i + 1)}, nil
		}
	}
	return MonthYear{}, fmt.Errorf("%w: month %q", ErrInvalidDate, fields[0])
}
