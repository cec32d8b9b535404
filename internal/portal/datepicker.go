package portal

import (
	"context"
	"fmt"
	"time"

	"zwrot/internal/calendar"
)

// datePicker drives the portal's app-date-picker opened from one date-input.
type datePicker struct {
	b     Browser
	input Selector
	nth   int
	pause func(time.Duration)
}

var _ calendar.Widget = (*datePicker)(nil)

func (d *datePicker) Open(ctx context.Context) error {
	if err := d.b.Click(ctx, d.input, d.nth, "button"); err != nil {
		return err
	}
	if err := d.b.WaitVisible(ctx, selPicker); err != nil {
		return fmt.Errorf("wait for date picker: %w", err)
	}
	d.pause(300 * time.Millisecond)
	return nil
}

func (d *datePicker) Header(ctx context.Context) (string, error) {
	if err := d.b.WaitVisible(ctx, selPickerHeader); err != nil {
		return "", err
	}
	return d.b.Text(ctx, selPickerHeader)
}

func (d *datePicker) Next(ctx context.Context) error {
	defer d.pause(400 * time.Millisecond)
	return d.b.Click(ctx, selPickerNext, 0, "")
}

func (d *datePicker) Previous(ctx context.Context) error {
	defer d.pause(400 * time.Millisecond)
	return d.b.Click(ctx, selPickerPrevious, 0, "")
}

func (d *datePicker) PickDay(ctx context.Context, day int) error {
	if err := d.b.Click(ctx, selPickerDay(day), 0, ""); err != nil {
		return err
	}
	return d.b.WaitGone(ctx, selPicker)
}
