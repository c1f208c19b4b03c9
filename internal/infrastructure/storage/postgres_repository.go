package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"FilingScanner/internal/domain"
	"FilingScanner/internal/ports"
)

// PostgresRepository persists analysis results into Postgres.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ResultRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// AlreadyAnalyzed returns a map with filing IDs that already exist in storage.
func (r *PostgresRepository) AlreadyAnalyzed(ctx context.Context, filingIDs []string) (map[string]bool, error) {
	if r.db == nil || len(filingIDs) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := r.builder.
		Select("filing_id").
		From("analysis_results").
		Where("filing_id = ANY(?)", pq.StringArray(filingIDs)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analyzed: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan id: %w", err)
		}
		result[id] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// SaveResult upserts the analysis result snapshot.
func (r *PostgresRepository) SaveResult(ctx context.Context, result domain.AnalysisResult) error {
	if r.db == nil {
		return nil
	}

	evidence := make(pq.StringArray, 0, len(result.Evidence))
	for _, e := range result.Evidence {
		evidence = append(evidence, e.Text)
	}

	query, args, err := r.builder.
		Insert("analysis_results").
		Columns("filing_id", "tier", "score", "evidence").
		Values(result.FilingID, string(result.Tier), result.Score, evidence).
		Suffix(`ON CONFLICT (filing_id) DO UPDATE
              SET tier = EXCLUDED.tier,
                  score = EXCLUDED.score,
                  evidence = EXCLUDED.evidence,
                  updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}

	return nil
}
