package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
)

const schemaLockID int64 = 2026101601

type AllocationRepository struct {
	db *sql.DB
}

func NewAllocationRepository(db *sql.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *AllocationRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS allocations (
	id TEXT PRIMARY KEY,
	applicant_id TEXT NOT NULL,
	opportunity_id TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT '',
	organization TEXT NOT NULL DEFAULT '',
	raw_similarity DOUBLE PRECISION NOT NULL,
	final_score DOUBLE PRECISION NOT NULL,
	is_aspirational BOOLEAN NOT NULL DEFAULT FALSE,
	is_rural BOOLEAN NOT NULL DEFAULT FALSE,
	social_category TEXT NOT NULL DEFAULT '',
	participation_status TEXT NOT NULL DEFAULT '',
	allocation_rank INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (applicant_id, opportunity_id)
);

CREATE INDEX IF NOT EXISTS idx_allocations_applicant_rank ON allocations(applicant_id, allocation_rank);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const selectAllocations = `
SELECT id, applicant_id, opportunity_id, role, organization, raw_similarity, final_score,
	is_aspirational, is_rural, social_category, participation_status, allocation_rank, created_at
FROM allocations
WHERE applicant_id = $1
ORDER BY allocation_rank ASC
`

func (r *AllocationRepository) GetExisting(ctx context.Context, applicantID string) ([]domain.Allocation, error) {
	records, err := queryAllocations(ctx, r.db, applicantID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "get existing allocations", err)
	}
	return records, nil
}

// InsertIfAbsent writes records only when the applicant has none stored yet.
// A transaction-scoped advisory lock keyed by the applicant ID serializes
// concurrent writers across processes; the loser gets the winner's rows and
// inserted=false.
func (r *AllocationRepository) InsertIfAbsent(ctx context.Context, applicantID string, records []domain.Allocation) ([]domain.Allocation, bool, error) {
	stored, inserted, err := r.insertIfAbsent(ctx, applicantID, records)
	if err != nil {
		return nil, false, domain.WrapError(domain.ErrStorageUnavailable, "insert allocations", err)
	}
	return stored, inserted, nil
}

func (r *AllocationRepository) insertIfAbsent(ctx context.Context, applicantID string, records []domain.Allocation) ([]domain.Allocation, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, applicantID); err != nil {
		return nil, false, fmt.Errorf("acquire applicant lock: %w", err)
	}

	existing, err := queryAllocations(ctx, tx, applicantID)
	if err != nil {
		return nil, false, err
	}
	if len(existing) > 0 {
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("commit insert tx: %w", err)
		}
		return existing, false, nil
	}

	stored := make([]domain.Allocation, len(records))
	for i, a := range records {
		a.ApplicantID = applicantID
		a.CreatedAt = storedTime(a.CreatedAt)
		stored[i] = a
		_, err := tx.ExecContext(ctx, `
INSERT INTO allocations (
	id, applicant_id, opportunity_id, role, organization, raw_similarity, final_score,
	is_aspirational, is_rural, social_category, participation_status, allocation_rank, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`,
			a.ID, applicantID, a.OpportunityID, a.Role, a.Organization, a.RawSimilarity, a.FinalScore,
			a.IsAspirational, a.IsRural, string(a.SocialCategory), string(a.ParticipationStatus), a.Rank, a.CreatedAt,
		)
		if err != nil {
			return nil, false, fmt.Errorf("insert allocation %s: %w", a.OpportunityID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit insert tx: %w", err)
	}
	return stored, true, nil
}

// storedTime is the value a TIMESTAMPTZ column gives back for t.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func queryAllocations(ctx context.Context, q queryer, applicantID string) ([]domain.Allocation, error) {
	rows, err := q.QueryContext(ctx, selectAllocations, applicantID)
	if err != nil {
		return nil, fmt.Errorf("query allocations: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Allocation, 0)
	for rows.Next() {
		var a domain.Allocation
		var category, status string
		if err := rows.Scan(
			&a.ID, &a.ApplicantID, &a.OpportunityID, &a.Role, &a.Organization, &a.RawSimilarity, &a.FinalScore,
			&a.IsAspirational, &a.IsRural, &category, &status, &a.Rank, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		a.CreatedAt = storedTime(a.CreatedAt)
		a.SocialCategory = domain.SocialCategory(category)
		a.ParticipationStatus = domain.ParticipationStatus(status)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate allocations: %w", err)
	}
	return out, nil
}
