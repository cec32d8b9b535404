package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"zwrot/internal/calendar"
	"zwrot/internal/model"
)

// ErrSchema means the model answered with something other than an array of
// invoice objects of the expected shape.
var ErrSchema = errors.New("response does not match the invoice schema")

// defaultServiceCount is used when the model leaves the quantity out.
const defaultServiceCount = 1

// Decode parses a model answer into records. Markdown code fences are
// stripped; anything else that is not a JSON array of objects with the
// expected field types fails with ErrSchema.
func Decode(answer string) ([]model.Record, error) {
	body := stripFences(answer)
	if body == "" {
		return nil, fmt.Errorf("%w: empty answer", ErrSchema)
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, fmt.Errorf("%w: not a JSON array: %v", ErrSchema, err)
	}

	recs := make([]model.Record, 0, len(items))
	for i, raw := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			return nil, fmt.Errorf("%w: item %d is not an object", ErrSchema, i)
		}
		rec, err := decodeRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrSchema, i, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func decodeRecord(f map[string]json.RawMessage) (model.Record, error) {
	var (
		rec model.Record
		err error
	)
	if rec.Number, err = text(f["numer"]); err != nil {
		return rec, fmt.Errorf("numer: %w", err)
	}
	if rec.ServiceCount, err = count(f["liczba_uslug"]); err != nil {
		return rec, fmt.Errorf("liczba_uslug: %w", err)
	}
	if rec.IssueDate, err = date(f["data_wystawienia"]); err != nil {
		return rec, fmt.Errorf("data_wystawienia: %w", err)
	}
	if rec.ServiceDate, err = date(f["data_wykonania_uslugi"]); err != nil {
		return rec, fmt.Errorf("data_wykonania_uslugi: %w", err)
	}
	if rec.City, err = text(f["miasto_wykonania"]); err != nil {
		return rec, fmt.Errorf("miasto_wykonania: %w", err)
	}
	if rec.UnitPrice, err = money(f["cena_jednostkowa"]); err != nil {
		return rec, fmt.Errorf("cena_jednostkowa: %w", err)
	}
	if rec.TotalAmount, err = money(f["kwota_faktury"]); err != nil {
		return rec, fmt.Errorf("kwota_faktury: %w", err)
	}
	return rec, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// text accepts a string or a bare number (invoice numbers sometimes come back unquoted).
func text(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("want a string, got %s", raw)
}

func count(raw json.RawMessage) (int, error) {
	if isNull(raw) {
		return defaultServiceCount, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0, fmt.Errorf("want an integer, got %s", raw)
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, fmt.Errorf("want an integer, got %q", s)
		}
	}
	if f != math.Trunc(f) || f < 0 {
		return 0, fmt.Errorf("want a non-negative integer, got %v", f)
	}
	return int(f), nil
}

// date normalises either accepted layout to YYYY-MM-DD.
func date(raw json.RawMessage) (string, error) {
	s, err := text(raw)
	if err != nil || s == "" {
		return s, err
	}
	t, err := calendar.ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02"), nil
}

// decimalPoint rewrites an amount to use a single dot as its decimal
// separator. With both marks present the last one separates the decimals.
func decimalPoint(s string) string {
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma > dot:
		return strings.ReplaceAll(s[:comma], ".", "") + "." + s[comma+1:]
	case comma >= 0 && dot > comma:
		return strings.ReplaceAll(s, ",", "")
	default:
		return strings.Replace(s, ",", ".", 1)
	}
}

// money accepts a JSON number or a numeric string, with a comma or a dot as
// the decimal separator and optional space or dot/comma thousands grouping.
func money(raw json.RawMessage) (decimal.NullDecimal, error) {
	if isNull(raw) {
		return decimal.NullDecimal{}, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		return decimal.NewNullDecimal(d), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("want a number, got %s", raw)
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "zł"), "PLN")
	s = decimalPoint(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("want a number, got %q", s)
	}
	return decimal.NewNullDecimal(d), nil
}
