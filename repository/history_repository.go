package repository

import (
	"context"
	"fmt"
	"time"

	"tunestream/model"

	"gorm.io/gorm"
)

// PlayHistoryRepository 播放记录
type PlayHistoryRepository interface {
	Record(ctx context.Context, userID, trackID int64, at time.Time) error
	Recent(ctx context.Context, userID int64, limit int) ([]*model.PlayHistory, error)
}

type gormPlayHistoryRepository struct {
	db *gorm.DB
}

// NewGormPlayHistoryRepository 创建播放记录仓库
func NewGormPlayHistoryRepository(db *gorm.DB) PlayHistoryRepository {
	return &gormPlayHistoryRepository{db: db}
}

func (r *gormPlayHistoryRepository) Record(ctx context.Context, userID, trackID int64, at time.Time) error {
	entry := &model.PlayHistory{UserID: userID, TrackID: trackID, PlayedAt: at}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("record play of track %d by user %d: %w", trackID, userID, err)
	}
	return nil
}

func (r *gormPlayHistoryRepository) Recent(ctx context.Context, userID int64, limit int) ([]*model.PlayHistory, error) {
	entries := make([]*model.PlayHistory, 0)
	err := r.db.WithContext(ctx).
		Preload("Track").Preload("Track.Artist").
		Where("user_id = ?", userID).
		Order("played_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("recent plays of user %d: %w", userID, err)
	}
	return entries, nil
}
