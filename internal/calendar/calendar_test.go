package calendar

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeWidget struct {
	shown  MonthYear
	opened bool
	clicks int
	picked int
}

func (f *fakeWidget) Open(context.Context) error { f.opened = true; return nil }

func (f *fakeWidget) Header(context.Context) (string, error) { return f.shown.String(), nil }

func (f *fakeWidget) Next(context.Context) error {
	f.clicks++
	f.shown = Of(time.Date(f.shown.Year, f.shown.Month+1, 1, 0, 0, 0, 0, time.UTC))
	return nil
}

func (f *fakeWidget) Previous(context.Context) error {
	f.clicks++
	f.shown = Of(time.Date(f.shown.Year, f.shown.Month-1, 1, 0, 0, 0, 0, time.UTC))
	return nil
}

func (f *fakeWidget) PickDay(_ context.Context, day int) error { f.picked = day; return nil }

func TestParseDateFormatsAgree(t *testing.T) {
	cases := [][2]string{
		{"05/03/2025", "2025-03-05"},
		{"31/12/2024", "2024-12-31"},
		{"29/02/2024", "2024-02-29"},
	}
	for _, c := range cases {
		a, err := ParseDate(c[0])
		if err != nil {
			t.Fatalf("parse %q: %v", c[0], err)
		}
		b, err := ParseDate(c[1])
		if err != nil {
			t.Fatalf("parse %q: %v", c[1], err)
		}
		if !a.Equal(b) {
			t.Fatalf("%q and %q differ: %v vs %v", c[0], c[1], a, b)
		}
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, s := range []string{"", "2025-13-01", "32/01/2025", "jutro"} {
		if _, err := ParseDate(s); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q: expected ErrInvalidDate, got %v", s, err)
		}
	}
}

func TestParseHeader(t *testing.T) {
	got, err := ParseHeader("  Październik 2025 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != (MonthYear{Year: 2025, Month: time.October}) {
		t.Fatalf("unexpected %v", got)
	}
	if _, err := ParseHeader("October 2025"); err == nil {
		t.Fatal("expected error for unknown month name")
	}
	if _, err := ParseHeader("styczeń"); err == nil {
		t.Fatal("expected error for missing year")
	}
}

func TestCompareIsLexicographic(t *testing.T) {
	a := MonthYear{Year: 2024, Month: time.December}
	b := MonthYear{Year: 2025, Month: time.January}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Fatalf("compare broken")
	}
}

func TestNavigateReachesTargetWithinBound(t *testing.T) {
	start := MonthYear{Year: 2025, Month: time.June}
	for offset := -MaxSteps; offset <= MaxSteps; offset++ {
		target := Of(time.Date(start.Year, start.Month+time.Month(offset), 1, 0, 0, 0, 0, time.UTC))
		w := &fakeWidget{shown: start}
		steps, err := Navigate(context.Background(), w, target)
		if err != nil {
			t.Fatalf("offset %d: %v", offset, err)
		}
		if w.shown != target {
			t.Fatalf("offset %d: header shows %v, want %v", offset, w.shown, target)
		}
		want := offset
		if want < 0 {
			want = -want
		}
		if steps != want {
			t.Fatalf("offset %d: %d steps", offset, steps)
		}
	}
}

func TestNavigateGivesUpAfterBound(t *testing.T) {
	w := &fakeWidget{shown: MonthYear{Year: 2020, Month: time.January}}
	_, err := Navigate(context.Background(), w, MonthYear{Year: 2025, Month: time.January})
	if !errors.Is(err, ErrStepsExhausted) {
		t.Fatalf("expected ErrStepsExhausted, got %v", err)
	}
	if w.clicks != MaxSteps {
		t.Fatalf("expected %d clicks, got %d", MaxSteps, w.clicks)
	}
}

func TestNavigateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &fakeWidget{shown: MonthYear{Year: 2025, Month: time.January}}
	if _, err := Navigate(ctx, w, MonthYear{Year: 2025, Month: time.March}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPickClicksDay(t *testing.T) {
	w := &fakeWidget{shown: MonthYear{Year: 2025, Month: time.May}}
	date, _ := ParseDate("17/03/2025")
	if err := Pick(context.Background(), w, date); err != nil {
		t.Fatalf("pick: %v", err)
	}
	if !w.opened || w.picked != 17 || w.shown.Month != time.March {
		t.Fatalf("unexpected widget state %+v", w)
	}
}
