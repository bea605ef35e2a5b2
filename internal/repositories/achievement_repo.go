package repositories

import (
	"context"

	"mindhaven/internal/models"

	"github.com/google/uuid"
)

type AchievementRepository interface {
	ListDefinitions(ctx context.Context) ([]*models.Achievement, error)
	Award(ctx context.Context, userID uuid.UUID, code string) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.UserAchievement, error)
}

type achievementRepo struct {
	db Database
}

func NewAchievementRepo(db Database) AchievementRepository {
	return &achievementRepo{db: db}
}

func (r *achievementRepo) ListDefinitions(ctx context.Context) ([]*models.Achievement, error) {
	query := `SELECT code, name, description FROM achievements ORDER BY code`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []*models.Achievement
	for rows.Next() {
		achievement := &models.Achievement{}
		if err := rows.Scan(&achievement.Code, &achievement.Name, &achievement.Description); err != nil {
			return nil, err
		}
		achievements = append(achievements, achievement)
	}
	return achievements, rows.Err()
}

// Award grants the achievement once; a repeat award is a no-op. Returns
// whether a new row was written.
func (r *achievementRepo) Award(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	query := `
		INSERT INTO user_achievements (user_id, code, awarded_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, code) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, userID, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *achievementRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.UserAchievement, error) {
	query := `
		SELECT user_id, code, awarded_at
		FROM user_achievements
		WHERE user_id = $1
		ORDER BY awarded_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var awards []*models.UserAchievement
	for rows.Next() {
		award := &models.UserAchievement{}
		if err := rows.Scan(&award.UserID, &award.Code, &award.AwardedAt); err != nil {
			return nil, err
		}
		awards = append(awards, award)
	}
	return awards, rows.Err()
}
