package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agrobridge/tradeapi/internal/domain"
	"github.com/agrobridge/tradeapi/internal/repository"
	"github.com/google/uuid"
)

type activityRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *sql.DB, logger *zap.Logger) *activityRepository {
	return &activityRepository{
		db:     db,
		logger: logger,
	}
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}

	var metadata []byte
	if activity.Metadata != nil {
		var err error
		metadata, err = json.Marshal(activity.Metadata)
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO activities (id, user_id, type, description, related_kind, related_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		activity.ID, activity.UserID, activity.Type, activity.Description,
		activity.RelatedKind, activity.RelatedID, metadata, activity.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create activity", zap.Error(err))
	}
	return err
}

func (r *activityRepository) List(ctx context.Context, filter repository.ActivityFilter) ([]*domain.Activity, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.RelatedKind != nil {
		args = append(args, *filter.RelatedKind)
		where += fmt.Sprintf(" AND related_kind = $%d", len(args))
	}
	if filter.RelatedID != nil {
		args = append(args, *filter.RelatedID)
		where += fmt.Sprintf(" AND related_id = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities "+where, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count activities", zap.Error(err))
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf(`
		SELECT id, user_id, type, description, related_kind, related_id, metadata, created_at
		FROM activities %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list activities", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		var activity domain.Activity
		var metadata []byte
		if err := rows.Scan(
			&activity.ID, &activity.UserID, &activity.Type, &activity.Description,
			&activity.RelatedKind, &activity.RelatedID, &metadata, &activity.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &activity.Metadata); err != nil {
				r.logger.Warn("Failed to decode activity metadata", zap.Error(err))
			}
		}
		activities = append(activities, &activity)
	}

	return activities, total, rows.Err()
}
