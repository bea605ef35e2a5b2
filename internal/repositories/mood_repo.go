package repositories

import (
	"context"
	"time"

	"mindhaven/internal/models"

	"github.com/google/uuid"
)

type MoodRepository interface {
	Upsert(ctx context.Context, entry *models.MoodEntry) error
	ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.MoodEntry, error)
	ListRecentDates(ctx context.Context, userID uuid.UUID, limit int) ([]time.Time, error)
	ActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

type moodRepo struct {
	db Database
}

func NewMoodRepo(db Database) MoodRepository {
	return &moodRepo{db: db}
}

// Upsert records the day's mood, replacing an earlier value for the same
// (user_id, entry_date).
func (r *moodRepo) Upsert(ctx context.Context, entry *models.MoodEntry) error {
	query := `
		INSERT INTO mood_entries (id, user_id, score, note, entry_date, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, entry_date) DO UPDATE SET
			score = EXCLUDED.score,
			note = EXCLUDED.note
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.UserID, entry.Score, entry.Note, entry.EntryDate)
	return err
}

func (r *moodRepo) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.MoodEntry, error) {
	query := `
		SELECT id, user_id, score, note, entry_date, created_at
		FROM mood_entries
		WHERE user_id = $1 AND entry_date >= $2 AND entry_date <= $3
		ORDER BY entry_date DESC
	`
	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.MoodEntry
	for rows.Next() {
		entry := &models.MoodEntry{}
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Score, &entry.Note, &entry.EntryDate, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ListRecentDates returns the most recent entry dates, newest first. The
// mood service walks them to compute the current daily streak.
func (r *moodRepo) ListRecentDates(ctx context.Context, userID uuid.UUID, limit int) ([]time.Time, error) {
	query := `
		SELECT entry_date
		FROM mood_entries
		WHERE user_id = $1
		ORDER BY entry_date DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// ActiveUserIDs returns users with a mood entry on or after the given day.
// The nightly achievement refresh iterates them instead of the whole user
// table.
func (r *moodRepo) ActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT user_id
		FROM mood_entries
		WHERE entry_date >= $1
	`
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
