package repositories

import (
	"context"

	"mindhaven/internal/models"

	"github.com/google/uuid"
)

type MeditationRepository interface {
	Create(ctx context.Context, session *models.MeditationSession) error
	List(ctx context.Context, category string) ([]*models.MeditationSession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.MeditationSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type meditationRepo struct {
	db Database
}

func NewMeditationRepo(db Database) MeditationRepository {
	return &meditationRepo{db: db}
}

func (r *meditationRepo) Create(ctx context.Context, session *models.MeditationSession) error {
	query := `
		INSERT INTO meditation_sessions (id, title, category, duration_seconds, object_key, premium, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, session.ID, session.Title, session.Category, session.DurationSeconds, session.ObjectKey, session.Premium)
	return err
}

// List returns the catalog, optionally filtered by category. An empty
// category matches everything.
func (r *meditationRepo) List(ctx context.Context, category string) ([]*models.MeditationSession, error) {
	query := `
		SELECT id, title, category, duration_seconds, object_key, premium, created_at
		FROM meditation_sessions
		WHERE $1 = '' OR category = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.MeditationSession
	for rows.Next() {
		session := &models.MeditationSession{}
		if err := rows.Scan(&session.ID, &session.Title, &session.Category, &session.DurationSeconds, &session.ObjectKey, &session.Premium, &session.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *meditationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MeditationSession, error) {
	session := &models.MeditationSession{}
	query := `
		SELECT id, title, category, duration_seconds, object_key, premium, created_at
		FROM meditation_sessions
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&session.ID, &session.Title, &session.Category, &session.DurationSeconds, &session.ObjectKey, &session.Premium, &session.CreatedAt)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *meditationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM meditation_sessions WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
