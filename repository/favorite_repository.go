package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tunestream/db"
	"tunestream/model"

	"gorm.io/gorm"
)

// FavoriteRepository 收藏
type FavoriteRepository interface {
	// Toggle 已收藏则取消，否则收藏；返回操作后是否处于收藏状态
	Toggle(ctx context.Context, userID, trackID int64) (bool, error)
	ListTracks(ctx context.Context, userID int64) ([]*model.Track, error)
	TrackIDs(ctx context.Context, userID int64) ([]int64, error)
}

type gormFavoriteRepository struct {
	db *gorm.DB
}

// NewGormFavoriteRepository 创建收藏仓库
func NewGormFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &gormFavoriteRepository{db: db}
}

func (r *gormFavoriteRepository) Toggle(ctx context.Context, userID, trackID int64) (bool, error) {
	var fav model.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND track_id = ?", userID, trackID).
		First(&fav).Error
	switch {
	case err == nil:
		if err := r.db.WithContext(ctx).Delete(&fav).Error; err != nil {
			return true, fmt.Errorf("remove favorite: %w", err)
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		fav = model.Favorite{UserID: userID, TrackID: trackID, CreatedAt: time.Now()}
		if err := r.db.WithContext(ctx).Create(&fav).Error; err != nil {
			// 并发请求已经插入，结果一致
			if db.IsDuplicateKey(err) {
				return true, nil
			}
			return false, fmt.Errorf("add favorite: %w", err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("get favorite: %w", err)
	}
}

// ListTracks 用户收藏的曲目，最近收藏的在前
func (r *gormFavoriteRepository) ListTracks(ctx context.Context, userID int64) ([]*model.Track, error) {
	tracks := make([]*model.Track, 0)
	err := r.db.WithContext(ctx).
		Preload("Artist").Preload("Album").
		Joins("JOIN favorites ON favorites.track_id = tracks.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("list favorites of user %d: %w", userID, err)
	}
	return tracks, nil
}

func (r *gormFavoriteRepository) TrackIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids := make([]int64, 0)
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ?", userID).
		Pluck("track_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list favorite ids of user %d: %w", userID, err)
	}
	return ids, nil
}
