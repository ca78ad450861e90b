package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/antonvlasov/documind/internal/core/domain"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append stores one analysis record. The timestamp is server-assigned at
// second resolution and the id comes from the sequence, so retrieval
// order matches insertion order even within one second.
func (r *HistoryRepository) Append(ctx context.Context, rec *domain.AnalysisRecord) error {
	ts := time.Now().UTC().Truncate(time.Second)

	row := r.db.QueryRowContext(ctx, `
INSERT INTO history (username, created_at, filename, category, summary)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`, rec.Username, ts, rec.Filename, rec.Category, rec.Summary)

	if err := row.Scan(&rec.ID); err != nil {
		return fmt.Errorf("insert analysis record: %w", err)
	}
	rec.Timestamp = ts
	return nil
}

func (r *HistoryRepository) ListByUser(ctx context.Context, username string) ([]domain.AnalysisRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, username, created_at, filename, category, summary
FROM history
WHERE username = $1
ORDER BY id DESC
`, username)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	records := make([]domain.AnalysisRecord, 0, 16)
	for rows.Next() {
		var rec domain.AnalysisRecord
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.Timestamp, &rec.Filename, &rec.Category, &rec.Summary); err != nil {
			return nil, fmt.Errorf("scan analysis record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return records, nil
}
