package repositories

import (
	"context"
	"time"

	"mindhaven/internal/models"

	"github.com/google/uuid"
)

type JournalRepository interface {
	Create(ctx context.Context, entry *models.JournalEntry) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.JournalEntry, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.JournalEntry, error)
	Update(ctx context.Context, entry *models.JournalEntry) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
}

type journalRepo struct {
	db Database
}

func NewJournalRepo(db Database) JournalRepository {
	return &journalRepo{db: db}
}

func (r *journalRepo) Create(ctx context.Context, entry *models.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (id, user_id, title, body, mood_tag, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.UserID, entry.Title, entry.Body, entry.MoodTag)
	return err
}

func (r *journalRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.JournalEntry, error) {
	entry := &models.JournalEntry{}
	query := `
		SELECT id, user_id, title, body, mood_tag, created_at, updated_at
		FROM journal_entries
		WHERE user_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, userID, id).Scan(&entry.ID, &entry.UserID, &entry.Title, &entry.Body, &entry.MoodTag, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *journalRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.JournalEntry, error) {
	query := `
		SELECT id, user_id, title, body, mood_tag, created_at, updated_at
		FROM journal_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.JournalEntry
	for rows.Next() {
		entry := &models.JournalEntry{}
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Title, &entry.Body, &entry.MoodTag, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *journalRepo) Update(ctx context.Context, entry *models.JournalEntry) error {
	query := `
		UPDATE journal_entries
		SET title = $1, body = $2, mood_tag = $3, updated_at = NOW()
		WHERE user_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, entry.Title, entry.Body, entry.MoodTag, entry.UserID, entry.ID)
	return err
}

func (r *journalRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM journal_entries WHERE user_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, userID, id)
	return err
}

// CountSince counts entries created at or after the given instant. The
// journal service uses it with UTC midnight to enforce the free-plan
// daily quota.
func (r *journalRepo) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM journal_entries WHERE user_id = $1 AND created_at >= $2`
	err := r.db.QueryRow(ctx, query, userID, since).Scan(&count)
	return count, err
}
