package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"zwrot/internal/config"
	"zwrot/internal/model"
)

// Step names as they appear in reports and screenshot file names.
const (
	StepLogin       = "login"
	StepDashboard   = "dashboard"
	StepFormPage    = "form_page"
	StepExecuteDate = "execute_date"
	StepService     = "service"
	StepPageOneNext = "page1_next"
	StepPageTwo     = "page2"
	StepIssueDate   = "issue_date"
	StepInvoice     = "invoice"
	StepPageTwoNext = "page2_next"
	StepBank        = "bank"
)

const (
	DefaultServiceName = "Logopeda"
	popupWait          = 15 * time.Second
)

type FillerOptions struct {
	ServiceName string
	Logger      *slog.Logger
	// Pause is used for the short settle delays the portal's widgets need.
	Pause func(time.Duration)
	// Wait bounds the dashboard check after login.
	Wait time.Duration
}

// Filler walks the three pages of the refund form strictly forward.
type Filler struct {
	b       Browser
	portal  config.Portal
	service string
	log     *slog.Logger
	pause   func(time.Duration)
	wait    time.Duration
}

func NewFiller(b Browser, portal config.Portal, opts FillerOptions) *Filler {
	if opts.ServiceName == "" {
		opts.ServiceName = DefaultServiceName
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Pause == nil {
		opts.Pause = time.Sleep
	}
	if opts.Wait <= 0 {
		opts.Wait = DefaultTimeout
	}
	return &Filler{
		b:       b,
		portal:  portal,
		service: opts.ServiceName,
		log:     opts.Logger,
		pause:   opts.Pause,
		wait:    opts.Wait,
	}
}

// Run logs in and fills every page. Failures of single steps are recorded in
// the report and the run moves on; only a cancelled ctx stops it.
func (f *Filler) Run(ctx context.Context, records []model.Record) Report {
	var rep Report
	steps := []func(context.Context, []model.Record, *Report) bool{
		f.login,
		f.pageOne,
		f.pageTwo,
		f.pageThree,
	}
	for _, step := range steps {
		if !step(ctx, records, &rep) {
			break
		}
	}
	return rep
}

// check records the outcome of one step and reports whether the run may go on.
func (f *Filler) check(ctx context.Context, rep *Report, step string, record int, err error) bool {
	if err == nil {
		rep.add(Outcome{Step: step, Record: record, Kind: OK})
		return true
	}

	kind := Skipped
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		kind = Fatal
	}
	o := rep.add(Outcome{Step: step, Record: record, Kind: kind, Err: err})
	f.log.Error("step failed", "step", step, "record", record+1, "kind", o.Kind.String(), "error", err)

	if kind != Fatal {
		name := "debug_screenshot_" + step
		if record >= 0 {
			name = fmt.Sprintf("%s_%d", name, record+1)
		}
		if serr := f.b.Screenshot(ctx, name); serr != nil {
			f.log.Warn("screenshot failed", "name", name, "error", serr)
		}
	}
	return kind != Fatal
}

func (f *Filler) login(ctx context.Context, _ []model.Record, rep *Report) bool {
	page := LoginPage{b: f.b}
	f.log.Info("logging in", "login", f.portal.Login)
	if !f.check(ctx, rep, StepLogin, -1, page.SignIn(ctx, f.portal.LoginURL, f.portal.Login, f.portal.Password)) {
		return false
	}

	if page.DismissPopup(ctx, popupWait) {
		f.log.Info("pop-up dismissed")
		f.pause(2 * time.Second)
	}
	return f.check(ctx, rep, StepDashboard, -1, page.WaitDashboard(ctx, f.wait))
}

func (f *Filler) pageOne(ctx context.Context, records []model.Record, rep *Report) bool {
	page := ServicesPage{b: f.b, pause: f.pause}
	f.log.Info("opening refund form", "url", f.portal.FormURL)
	if !f.check(ctx, rep, StepFormPage, -1, page.Open(ctx, f.portal.FormURL)) {
		return false
	}

	for i, rec := range records {
		f.log.Info("page 1: adding service", "record", i+1, "of", len(records), "service_date", rec.ServiceDate)

		// A date that cannot be picked leaves the field empty for manual review.
		if !f.check(ctx, rep, StepExecuteDate, i, page.PickExecutionDate(ctx, rec.ServiceDate)) {
			return false
		}

		err := func() error {
			if err := page.ChooseService(ctx, f.service); err != nil {
				return err
			}
			if err := page.ChooseRefundType(ctx); err != nil {
				return err
			}
			if i < len(records)-1 {
				if err := page.AddRow(ctx, i+2); err != nil {
					return fmt.Errorf("add row %d: %w", i+2, err)
				}
			}
			return nil
		}()
		if !f.check(ctx, rep, StepService, i, err) {
			return false
		}
	}

	return f.check(ctx, rep, StepPageOneNext, -1, page.Next(ctx))
}

func (f *Filler) pageTwo(ctx context.Context, records []model.Record, rep *Report) bool {
	page := InvoicesPage{b: f.b, pause: f.pause}
	if !f.check(ctx, rep, StepPageTwo, -1, f.pageTwoReady(ctx, page, len(records))) {
		return false
	}

	for i, rec := range records {
		f.log.Info("page 2: filling invoice", "record", i+1, "of", len(records), "number", rec.Number)

		err := func() error {
			if err := page.FillNumber(ctx, i, rec.Number); err != nil {
				return fmt.Errorf("invoice number: %w", err)
			}
			if err := page.FillQuantity(ctx, i, rec.ServiceCount); err != nil {
				return fmt.Errorf("quantity: %w", err)
			}
			if !f.check(ctx, rep, StepIssueDate, i, page.PickIssueDate(ctx, i, rec.IssueDate)) {
				return ctx.Err()
			}
			if err := page.ChooseCity(ctx, i, rec.City); err != nil {
				return fmt.Errorf("city: %w", err)
			}
			if err := page.FillUnitPrice(ctx, i, formatAmount(rec.UnitPrice.Decimal, rec.UnitPrice.Valid)); err != nil {
				return fmt.Errorf("unit price: %w", err)
			}
			if err := page.FillAmount(ctx, i, formatAmount(rec.TotalAmount.Decimal, rec.TotalAmount.Valid)); err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			return nil
		}()
		if !f.check(ctx, rep, StepInvoice, i, err) {
			return false
		}
	}

	return f.check(ctx, rep, StepPageTwoNext, -1, page.Next(ctx))
}

func (f *Filler) pageTwoReady(ctx context.Context, page InvoicesPage, want int) error {
	if err := page.WaitReady(ctx); err != nil {
		return err
	}
	got, err := page.Rows(ctx)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: %d rows, %d records", ErrRowCountMismatch, got, want)
	}
	return nil
}

func (f *Filler) pageThree(ctx context.Context, _ []model.Record, rep *Report) bool {
	page := BankPage{b: f.b}
	f.log.Info("page 3: filling transfer details")
	return f.check(ctx, rep, StepBank, -1, page.Fill(ctx, f.portal.AccountNumber, f.portal.AccountOwner))
}

func formatAmount(d decimal.Decimal, valid bool) string {
	if !valid {
		return ""
	}
	return d.StringFixed(2)
}
