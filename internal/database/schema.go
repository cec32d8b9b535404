package database

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS submissions (
    id UUID PRIMARY KEY,
    run_id UUID NOT NULL,
    invoice_number TEXT NOT NULL,
    service_date DATE,
    amount NUMERIC(10,2) NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'filled',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_submissions_run_id ON submissions(run_id);
CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions(created_at);
`

func InitSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}
