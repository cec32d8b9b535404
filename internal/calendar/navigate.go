package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// MaxSteps covers three years of month-by-month paging.
const MaxSteps = 36

var ErrStepsExhausted = errors.New("calendar: target month not reached")

// Widget is an open date-picker.
type Widget interface {
	Open(ctx context.Context) error
	Header(ctx context.Context) (string, error)
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	PickDay(ctx context.Context, day int) error
}

// Navigate pages the widget until its header shows target. It returns the
// number of clicks it made.
func Navigate(ctx context.Context, w Widget, target MonthYear) (int, error) {
	for step := 0; ; step++ {
		if err := ctx.Err(); err != nil {
			return step, err
		}

		text, err := w.Header(ctx)
		if err != nil {
			return step, fmt.Errorf("read header: %w", err)
		}
		shown, err := ParseHeader(text)
		if err != nil {
			return step, err
		}

		cmp := target.Compare(shown)
		if cmp == 0 {
			return step, nil
		}
		if step == MaxSteps {
			return step, fmt.Errorf("%w: %s after %d steps", ErrStepsExhausted, target, MaxSteps)
		}

		switch cmp {
		case 1:
			err = w.Next(ctx)
		default:
			err = w.Previous(ctx)
		}
		if err != nil {
			return step, fmt.Errorf("page calendar: %w", err)
		}
	}
}

// Pick opens the widget, pages to the month of date and clicks its day.
func Pick(ctx context.Context, w Widget, date time.Time) error {
	if err := w.Open(ctx); err != nil {
		return fmt.Errorf("open calendar: %w", err)
	}
	if _, err := Navigate(ctx, w, Of(date)); err != nil {
		return err
	}
	if err := w.PickDay(ctx, date.Day()); err != nil {
		return fmt.Errorf("pick day %d: %w", date.Day(), err)
	}
	return nil
}
