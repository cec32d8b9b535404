package service

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"zwrot/internal/database"
	"zwrot/internal/model"
)

func TestSubmissionServiceDisabled(t *testing.T) {
	var nilSvc *SubmissionService
	if nilSvc.Enabled() {
		t.Fatal("nil service reports enabled")
	}
	svc := NewSubmissionService(nil)
	if _, err := svc.List(context.Background()); !errors.Is(err, ErrLedgerDisabled) {
		t.Fatalf("list: got %v", err)
	}
	if err := svc.Record(context.Background(), uuid.NewString(), nil); !errors.Is(err, ErrLedgerDisabled) {
		t.Fatalf("record: got %v", err)
	}
}

func TestSubmissionServicePostgres(t *testing.T) {
	uri := os.Getenv("ZWROT_TEST_DATABASE_URI")
	if uri == "" {
		t.Skip("ZWROT_TEST_DATABASE_URI not set")
	}
	ctx := context.Background()

	db, err := database.NewDB(ctx, uri)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer database.CloseDB(db)
	if err := database.InitSchema(ctx, db); err != nil {
		t.Fatalf("schema: %v", err)
	}

	runID := uuid.NewString()
	t.Cleanup(func() { _, _ = db.Exec(`DELETE FROM submissions WHERE run_id = $1`, runID) })

	svc := NewSubmissionService(db)
	recs := []model.Record{
		{Number: "01/03/2025", ServiceDate: "2025-03-07", TotalAmount: decimal.NewNullDecimal(decimal.RequireFromString("130.5"))},
		{Number: "02/03/2025"},
	}
	if err := svc.Record(ctx, runID, recs); err != nil {
		t.Fatalf("record: %v", err)
	}

	subs, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var mine []model.Submission
	for _, s := range subs {
		if s.RunID == runID {
			mine = append(mine, s)
		}
	}
	if len(mine) != 2 {
		t.Fatalf("got %d submissions for run", len(mine))
	}
	for _, s := range mine {
		if s.Status != StatusFilled {
			t.Fatalf("status = %q", s.Status)
		}
		if s.InvoiceNumber == "01/03/2025" && (s.ServiceDate != "2025-03-07" || !s.Amount.Equal(decimal.RequireFromString("130.5"))) {
			t.Fatalf("unexpected %+v", s)
		}
	}
}
