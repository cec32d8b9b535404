package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"zwrot/internal/calendar"
	"zwrot/internal/model"
)

// StatusFilled marks a record typed into the portal form. The claim itself is
// reviewed and sent by hand, so the ledger never claims it was submitted.
const StatusFilled = "filled"

var ErrLedgerDisabled = errors.New("submissions ledger is not configured")

// SubmissionService records which invoices a fill run sent to the portal.
type SubmissionService struct {
	db  *sql.DB
	now func() time.Time
}

func NewSubmissionService(db *sql.DB) *SubmissionService {
	return &SubmissionService{db: db, now: time.Now}
}

// Enabled reports whether a database backs the ledger. A nil service is disabled.
func (s *SubmissionService) Enabled() bool {
	return s != nil && s.db != nil
}

// Record stores one submission per record in a single transaction.
func (s *SubmissionService) Record(ctx context.Context, runID string, recs []model.Record) (err error) {
	if !s.Enabled() {
		return ErrLedgerDisabled
	}
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := s.now()
	for _, r := range recs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO submissions (id, run_id, invoice_number, service_date, amount, status, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.NewString(), runID, r.Number, serviceDate(r), r.Amount().StringFixed(2), StatusFilled, now,
		)
		if err != nil {
			return fmt.Errorf("insert submission %q: %w", r.Number, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *SubmissionService) List(ctx context.Context) ([]model.Submission, error) {
	if !s.Enabled() {
		return nil, ErrLedgerDisabled
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, invoice_number, service_date, amount, status, created_at
		FROM submissions
		ORDER BY created_at DESC, service_date ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var (
			sub    model.Submission
			date   sql.NullTime
			amount string
		)
		if err := rows.Scan(&sub.ID, &sub.RunID, &sub.InvoiceNumber, &date, &amount, &sub.Status, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if date.Valid {
			sub.ServiceDate = date.Time.Format("2006-01-02")
		}
		if sub.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		subs = append(subs, sub)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return subs, nil
}

func serviceDate(r model.Record) sql.NullTime {
	t, err := calendar.ParseDate(r.ServiceDate)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
