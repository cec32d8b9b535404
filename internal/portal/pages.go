package portal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"zwrot/internal/calendar"
)

var ErrNotLoggedIn = errors.New("login not confirmed")

type LoginPage struct {
	b Browser
}

func (p LoginPage) SignIn(ctx context.Context, url, login, password string) error {
	if err := p.b.Navigate(ctx, url); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	if err := p.b.Type(ctx, selLogin, 0, "", login); err != nil {
		return fmt.Errorf("type login: %w", err)
	}
	if err := p.b.Type(ctx, selPassword, 0, "", password); err != nil {
		return fmt.Errorf("type password: %w", err)
	}
	if err := p.b.Click(ctx, selLoginSubmit, 0, ""); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	return nil
}

// DismissPopup closes the post-login pop-up if one shows up within wait.
func (p LoginPage) DismissPopup(ctx context.Context, wait time.Duration) bool {
	wctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	return p.b.Click(wctx, selPopupDismiss, 0, "") == nil
}

// WaitDashboard polls the address bar until it shows the dashboard.
func (p LoginPage) WaitDashboard(ctx context.Context, wait time.Duration) error {
	wctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if loc, err := p.b.URL(wctx); err == nil && strings.Contains(loc, "Dashboard") {
			return nil
		}
		select {
		case <-wctx.Done():
			return ErrNotLoggedIn
		case <-ticker.C:
		}
	}
}

// ServicesPage is page one of the refund form: one row per invoice.
type ServicesPage struct {
	b     Browser
	pause func(time.Duration)
}

func (p ServicesPage) Open(ctx context.Context, url string) error {
	if err := p.b.Navigate(ctx, url); err != nil {
		return err
	}
	return p.b.WaitVisible(ctx, selExecuteDate)
}

func (p ServicesPage) PickExecutionDate(ctx context.Context, date string) error {
	return pickDate(ctx, p.b, selExecuteDate, Last, date, p.pause)
}

// ChooseService types name into the newest service autocomplete and picks the match.
func (p ServicesPage) ChooseService(ctx context.Context, name string) error {
	if err := p.b.Click(ctx, selServiceInput, Last, ""); err != nil {
		return err
	}
	p.pause(500 * time.Millisecond)
	if err := p.b.Type(ctx, selServiceInput, Last, "", name); err != nil {
		return err
	}
	if err := p.b.Click(ctx, selDropdownOption(name), 0, ""); err != nil {
		return fmt.Errorf("choose service %q: %w", name, err)
	}
	p.pause(500 * time.Millisecond)
	return nil
}

func (p ServicesPage) ChooseRefundType(ctx context.Context) error {
	if err := p.b.Click(ctx, selRefundType, Last, ""); err != nil {
		return err
	}
	p.pause(time.Second)
	return nil
}

// AddRow adds another service row and waits until rows rows exist.
func (p ServicesPage) AddRow(ctx context.Context, rows int) error {
	if err := p.b.Click(ctx, selAddService, 0, ""); err != nil {
		return err
	}
	return p.b.WaitCount(ctx, selExecuteDate, rows)
}

func (p ServicesPage) Next(ctx context.Context) error {
	return p.b.Click(ctx, selNextPageOne, 0, "")
}

// InvoicesPage is page two: invoice details, addressed by row index.
type InvoicesPage struct {
	b     Browser
	pause func(time.Duration)
}

func (p InvoicesPage) WaitReady(ctx context.Context) error {
	return p.b.WaitVisible(ctx, selInvoiceNumber)
}

func (p InvoicesPage) Rows(ctx context.Context) (int, error) {
	return p.b.Count(ctx, selInvoiceNumber)
}

func (p InvoicesPage) FillNumber(ctx context.Context, i int, number string) error {
	return p.typeSlow(ctx, selInvoiceNumber, i, "", number)
}

func (p InvoicesPage) FillQuantity(ctx context.Context, i, n int) error {
	if err := p.b.Clear(ctx, selQuantity, i, "input"); err != nil {
		return err
	}
	return p.typeSlow(ctx, selQuantity, i, "input", strconv.Itoa(n))
}

func (p InvoicesPage) PickIssueDate(ctx context.Context, i int, date string) error {
	return pickDate(ctx, p.b, selDateInput, i, date, p.pause)
}

// ChooseCity matches the autocomplete on the first word of city.
func (p InvoicesPage) ChooseCity(ctx context.Context, i int, city string) error {
	word := firstWord(city)
	if word == "" {
		return fmt.Errorf("%w: empty city", ErrNotFound)
	}
	if err := p.b.Click(ctx, selCity, i, ""); err != nil {
		return err
	}
	p.pause(300 * time.Millisecond)
	if err := p.b.Type(ctx, selCity, i, "", word); err != nil {
		return err
	}
	if err := p.b.Click(ctx, selDropdownOption(word), 0, ""); err != nil {
		return fmt.Errorf("choose city %q: %w", word, err)
	}
	p.pause(300 * time.Millisecond)
	return nil
}

func (p InvoicesPage) FillUnitPrice(ctx context.Context, i int, price string) error {
	return p.typeSlow(ctx, selUnitPrice, i, "", price)
}

func (p InvoicesPage) FillAmount(ctx context.Context, i int, amount string) error {
	return p.typeSlow(ctx, selAmount, i, "", amount)
}

func (p InvoicesPage) Next(ctx context.Context) error {
	return p.b.Click(ctx, selNextPageTwo, 0, "")
}

// typeSlow leaves the field untouched when text is empty.
func (p InvoicesPage) typeSlow(ctx context.Context, sel Selector, i int, child, text string) error {
	if text == "" {
		return nil
	}
	if err := p.b.Type(ctx, sel, i, child, text); err != nil {
		return err
	}
	p.pause(200 * time.Millisecond)
	return nil
}

// BankPage is page three: transfer details.
type BankPage struct {
	b Browser
}

func (p BankPage) Fill(ctx context.Context, account, owner string) error {
	if err := p.b.WaitVisible(ctx, selAccountNo); err != nil {
		return err
	}
	if err := p.b.Type(ctx, selAccountNo, 0, "", account); err != nil {
		return fmt.Errorf("type account number: %w", err)
	}
	if err := p.b.Type(ctx, selAccountOwner, 0, "", owner); err != nil {
		return fmt.Errorf("type account owner: %w", err)
	}
	return nil
}

func pickDate(ctx context.Context, b Browser, input Selector, nth int, date string, pause func(time.Duration)) error {
	t, err := calendar.ParseDate(date)
	if err != nil {
		return err
	}
	return calendar.Pick(ctx, &datePicker{b: b, input: input, nth: nth, pause: pause}, t)
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
