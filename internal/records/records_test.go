package records

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"zwrot/internal/model"
)

func TestSortByServiceDate(t *testing.T) {
	recs := []model.Record{
		{Number: "c", ServiceDate: "2025-03-05"},
		{Number: "nil-1"},
		{Number: "a", ServiceDate: "2025-01-10"},
		{Number: "bad", ServiceDate: "soon"},
		{Number: "b", ServiceDate: "10/01/2025"},
		{Number: "d", ServiceDate: "2025-03-05"},
	}
	SortByServiceDate(recs)

	want := []string{"nil-1", "bad", "a", "b", "c", "d"}
	for i, w := range want {
		if recs[i].Number != w {
			got := make([]string, len(recs))
			for j, r := range recs {
				got[j] = r.Number
			}
			t.Fatalf("order %v, want %v", got, want)
		}
	}
	for i := 1; i < len(recs); i++ {
		if ServiceTime(recs[i]).Before(ServiceTime(recs[i-1])) {
			t.Fatalf("not non-decreasing at %d", i)
		}
	}
}

func TestWriteReadRoundTripKeepsNulls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faktury_dane.json")
	recs := []model.Record{{
		Number:       "01/05/2025",
		ServiceCount: 1,
		ServiceDate:  "2025-05-02",
		TotalAmount:  decimal.NewNullDecimal(decimal.RequireFromString("130.50")),
	}}
	if err := Write(path, recs); err != nil {
		t.Fatalf("write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	for _, want := range []string{`"miasto_wykonania": null`, `"cena_jednostkowa": null`, `"kwota_faktury": 130.5`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("missing %s in %s", want, raw)
		}
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0].City != "" || got[0].UnitPrice.Valid || !got[0].Amount().Equal(decimal.RequireFromString("130.5")) {
		t.Fatalf("unexpected %+v", got)
	}
}

func TestReadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{"), 0o644)
	if _, err := Read(path); err == nil {
		t.Fatal("expected an error")
	}
}
