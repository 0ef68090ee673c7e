package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/vbonduro/venueadmin/internal/domain"
)

// JournalStore keeps a local history of pricing save attempts.
type JournalStore struct {
	db *sql.DB
}

func NewJournalStore(db *sql.DB) *JournalStore {
	return &JournalStore{db: db}
}

func (s *JournalStore) Record(ctx context.Context, rec domain.SaveRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO save_journal (venue_id, outcome, custom, regular_1, regular_2, regular_3, regular_4, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.VenueID, rec.Outcome, storableAmount(rec.Amount.Custom),
		storableAmount(rec.Amount.Regular[0]), storableAmount(rec.Amount.Regular[1]),
		storableAmount(rec.Amount.Regular[2]), storableAmount(rec.Amount.Regular[3]),
		rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record save: %w", err)
	}
	return nil
}

// ListByVenue returns up to limit entries for venueID, newest first.
func (s *JournalStore) ListByVenue(ctx context.Context, venueID string, limit int) ([]*domain.SaveRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, venue_id, outcome, custom, regular_1, regular_2, regular_3, regular_4, created_at
		FROM save_journal WHERE venue_id = ? ORDER BY created_at DESC, id DESC LIMIT ?
	`, venueID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}
	defer rows.Close()

	var records []*domain.SaveRecord
	for rows.Next() {
		rec := &domain.SaveRecord{}
		if err := rows.Scan(&rec.ID, &rec.VenueID, &rec.Outcome, &rec.Amount.Custom,
			&rec.Amount.Regular[0], &rec.Amount.Regular[1], &rec.Amount.Regular[2], &rec.Amount.Regular[3],
			&rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal: %w", err)
	}

	return records, nil
}

// storableAmount maps NaN to 0; SQLite stores NaN as NULL.
func storableAmount(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
