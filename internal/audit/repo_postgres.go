package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRepo appends audit events to the audit_events table.
//
// Schema (managed by migrations, INSERT-only policy):
//
//	CREATE TABLE audit_events (
//	    id          uuid PRIMARY KEY,
//	    type        text NOT NULL,
//	    call_id     text NOT NULL,
//	    campaign_id text,
//	    verdict     text,
//	    confidence  double precision,
//	    factors     jsonb,
//	    ip_address  text,
//	    message     text,
//	    metadata    jsonb,
//	    created_at  timestamptz NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events
    (id, type, call_id, campaign_id, verdict, confidence, factors, ip_address, message, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::jsonb, $8, $9, NULLIF($10, '')::jsonb, $11)`

	if _, err := r.db.ExecContext(ctx, q,
		e.ID, string(e.Type), e.CallID, e.CampaignID, e.Verdict, e.Confidence,
		e.Factors, e.IPAddress, e.Message, e.Metadata, e.CreatedAt,
	); err != nil {
		return fmt.Errorf("audit: insert event: %w", err)
	}
	return nil
}
