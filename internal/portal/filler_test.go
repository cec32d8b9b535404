package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"zwrot/internal/calendar"
	"zwrot/internal/config"
	"zwrot/internal/model"
)

// fakePortal is an in-memory stand-in for the refund portal.
type fakePortal struct {
	url         string
	shown       calendar.MonthYear
	pickerOpen  bool
	rows        int
	invoiceRows int // -1 mirrors rows
	failClick   string
	typed       []string
	picked      []int
	screenshots []string
}

func newFakePortal() *fakePortal {
	return &fakePortal{shown: calendar.MonthYear{Year: 2025, Month: time.June}, rows: 1, invoiceRows: -1}
}

func (f *fakePortal) Navigate(_ context.Context, url string) error { f.url = url; return nil }

func (f *fakePortal) URL(context.Context) (string, error) { return f.url, nil }

func (f *fakePortal) WaitVisible(_ context.Context, sel Selector) error {
	if sel == selPicker || sel == selPickerHeader {
		if !f.pickerOpen {
			return ErrNotFound
		}
	}
	return nil
}

func (f *fakePortal) WaitGone(_ context.Context, sel Selector) error {
	if sel == selPicker && f.pickerOpen {
		return errors.New("picker still open")
	}
	return nil
}

func (f *fakePortal) WaitCount(ctx context.Context, sel Selector, n int) error {
	got, _ := f.Count(ctx, sel)
	if got != n {
		return fmt.Errorf("have %d want %d", got, n)
	}
	return nil
}

func (f *fakePortal) Count(_ context.Context, sel Selector) (int, error) {
	switch sel {
	case selExecuteDate:
		return f.rows, nil
	case selInvoiceNumber:
		if f.invoiceRows >= 0 {
			return f.invoiceRows, nil
		}
		return f.rows, nil
	}
	return 1, nil
}

func (f *fakePortal) Text(_ context.Context, sel Selector) (string, error) {
	if sel == selPickerHeader {
		return strings.ToUpper(f.shown.String()[:1]) + f.shown.String()[1:], nil
	}
	return "", nil
}

func (f *fakePortal) Click(ctx context.Context, sel Selector, nth int, child string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.failClick != "" && strings.Contains(sel.Query, f.failClick) {
		return ErrNotFound
	}
	switch {
	case sel == selPopupDismiss:
		return ErrNotFound
	case sel == selLoginSubmit:
		f.url = "https://portal.example/Dashboard"
	case child == "button":
		f.pickerOpen = true
	case sel == selPickerNext:
		f.shown = calendar.Of(time.Date(f.shown.Year, f.shown.Month+1, 1, 0, 0, 0, 0, time.UTC))
	case sel == selPickerPrevious:
		f.shown = calendar.Of(time.Date(f.shown.Year, f.shown.Month-1, 1, 0, 0, 0, 0, time.UTC))
	case strings.HasPrefix(sel.Query, "//app-date-picker//div"):
		var day int
		fmt.Sscanf(sel.Query[strings.LastIndex(sel.Query, "='")+2:], "%d", &day)
		f.picked = append(f.picked, day)
		f.pickerOpen = false
	case sel == selAddService:
		f.rows++
	}
	return nil
}

func (f *fakePortal) Type(_ context.Context, sel Selector, nth int, child, text string) error {
	f.typed = append(f.typed, text)
	return nil
}

func (f *fakePortal) Clear(context.Context, Selector, int, string) error { return nil }

func (f *fakePortal) Screenshot(_ context.Context, name string) error {
	f.screenshots = append(f.screenshots, name)
	return nil
}

func (f *fakePortal) typedText(s string) bool {
	for _, t := range f.typed {
		if t == s {
			return true
		}
	}
	return false
}

func testRecords() []model.Record {
	return []model.Record{
		{
			Number: "01/03/2025", ServiceCount: 4, IssueDate: "2025-03-31", ServiceDate: "2025-03-05",
			City: "Szczecin Centrum", UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString("130")),
			TotalAmount: decimal.NewNullDecimal(decimal.RequireFromString("520")),
		},
		{
			Number: "02/04/2025", ServiceCount: 1, IssueDate: "30/04/2025", ServiceDate: "2025-04-12",
			City: "Szczecin", UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString("130")),
			TotalAmount: decimal.NewNullDecimal(decimal.RequireFromString("130")),
		},
	}
}

func newTestFiller(b Browser) *Filler {
	portal := config.Portal{
		LoginURL: "https://portal.example/LogOn", FormURL: "https://portal.example/Refunds/New",
		Login: "jan", Password: "secret", AccountNumber: "PL001", AccountOwner: "Jan Kowalski",
	}
	return NewFiller(b, portal, FillerOptions{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Pause:  func(time.Duration) {},
		Wait:   time.Second,
	})
}

func TestFillerHappyPath(t *testing.T) {
	fp := newFakePortal()
	rep := newTestFiller(fp).Run(context.Background(), testRecords())

	if failures := rep.Failures(); len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if got := rep.Filled(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("filled = %v", got)
	}
	if fp.rows != 2 {
		t.Fatalf("expected 2 service rows, got %d", fp.rows)
	}
	// execute dates 5 and 12, issue dates 31 and 30
	if len(fp.picked) != 4 || fp.picked[0] != 5 || fp.picked[1] != 12 || fp.picked[2] != 31 || fp.picked[3] != 30 {
		t.Fatalf("picked days %v", fp.picked)
	}
	for _, want := range []string{"jan", "secret", "Logopeda", "01/03/2025", "4", "Szczecin", "130.00", "520.00", "PL001", "Jan Kowalski"} {
		if !fp.typedText(want) {
			t.Fatalf("%q was never typed; typed %v", want, fp.typed)
		}
	}
	if fp.typedText("Szczecin Centrum") {
		t.Fatal("city must be matched on its first word")
	}
}

func TestFillerSkipsFailedRecordAndContinues(t *testing.T) {
	fp := newFakePortal()
	recs := testRecords()
	recs[0].City = "Police"
	fp.failClick = "'Police'"

	rep := newTestFiller(fp).Run(context.Background(), recs)

	if rep.Aborted() {
		t.Fatal("run must not abort on a single record")
	}
	if got := rep.Filled(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("filled = %v", got)
	}
	if len(fp.screenshots) != 1 || fp.screenshots[0] != "debug_screenshot_invoice_1" {
		t.Fatalf("screenshots %v", fp.screenshots)
	}
	if !fp.typedText("PL001") {
		t.Fatal("bank page must still be filled")
	}
}

func TestFillerBadDateLeavesFieldAndContinues(t *testing.T) {
	fp := newFakePortal()
	recs := testRecords()[:1]
	recs[0].ServiceDate = ""

	rep := newTestFiller(fp).Run(context.Background(), recs)

	failures := rep.Failures()
	if len(failures) != 1 || failures[0].Step != StepExecuteDate || failures[0].Kind != Skipped {
		t.Fatalf("failures %v", failures)
	}
	if !errors.Is(failures[0].Err, calendar.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", failures[0].Err)
	}
	if !fp.typedText("Logopeda") {
		t.Fatal("service must still be chosen after a date failure")
	}
}

func TestFillerUnsetIssueDateIsNotFilled(t *testing.T) {
	fp := newFakePortal()
	recs := testRecords()
	recs[0].IssueDate = "not a date"

	rep := newTestFiller(fp).Run(context.Background(), recs)

	if rep.Aborted() {
		t.Fatal("run must not abort on a bad issue date")
	}
	failures := rep.Failures()
	if len(failures) != 1 || failures[0].Step != StepIssueDate || failures[0].Record != 0 {
		t.Fatalf("failures %v", failures)
	}
	if got := rep.Filled(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("record with an unset issue date must not count as filled, got %v", got)
	}
}

func TestFillerReportsRowCountMismatch(t *testing.T) {
	fp := newFakePortal()
	fp.invoiceRows = 1

	rep := newTestFiller(fp).Run(context.Background(), testRecords())

	var found bool
	for _, o := range rep.Failures() {
		if o.Step == StepPageTwo && errors.Is(o.Err, ErrRowCountMismatch) {
			found = true
		}
	}
	if !found {
		t.Fatalf("row mismatch not reported: %v", rep.Failures())
	}
}

func TestFillerStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fp := newFakePortal()

	rep := newTestFiller(fp).Run(ctx, testRecords())

	if !rep.Aborted() {
		t.Fatalf("expected aborted report, got %v", rep.Outcomes)
	}
	if len(rep.Outcomes) != 1 || rep.Outcomes[0].Step != StepLogin {
		t.Fatalf("expected the run to stop at login, got %v", rep.Outcomes)
	}
	if len(fp.screenshots) != 0 {
		t.Fatal("no screenshot on a cancelled run")
	}
}
