package repository

import (
	"context"
	"errors"
	"fmt"

	"tunestream/model"

	"gorm.io/gorm"
)

// PlaylistRepository 歌单
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	ListByUser(ctx context.Context, userID int64) ([]*model.Playlist, error)
	// GetWithTracks 歌单及其曲目，未找到返回 nil, nil
	GetWithTracks(ctx context.Context, id int64) (*model.Playlist, error)
	// Update 保存名称和公开状态
	Update(ctx context.Context, playlist *model.Playlist) error
	AddTrack(ctx context.Context, playlist *model.Playlist, track *model.Track) error
	RemoveTrack(ctx context.Context, playlist *model.Playlist, trackID int64) error
}

type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository 创建歌单仓库
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

func (r *gormPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	if err := r.db.WithContext(ctx).Omit("Tracks").Create(playlist).Error; err != nil {
		return fmt.Errorf("create playlist: %w", err)
	}
	return nil
}

func (r *gormPlaylistRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Playlist, error) {
	playlists := make([]*model.Playlist, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&playlists).Error
	if err != nil {
		return nil, fmt.Errorf("list playlists of user %d: %w", userID, err)
	}
	return playlists, nil
}

func (r *gormPlaylistRepository) GetWithTracks(ctx context.Context, id int64) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.WithContext(ctx).
		Preload("Tracks").Preload("Tracks.Artist").
		Where("id = ?", id).
		First(&playlist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get playlist %d: %w", id, err)
	}
	return &playlist, nil
}

func (r *gormPlaylistRepository) Update(ctx context.Context, playlist *model.Playlist) error {
	err := r.db.WithContext(ctx).
		Model(&model.Playlist{ID: playlist.ID}).
		Updates(map[string]interface{}{
			"name":      playlist.Name,
			"is_public": playlist.IsPublic,
		}).Error
	if err != nil {
		return fmt.Errorf("update playlist %d: %w", playlist.ID, err)
	}
	return nil
}

// AddTrack 重复添加同一首不会产生重复记录
func (r *gormPlaylistRepository) AddTrack(ctx context.Context, playlist *model.Playlist, track *model.Track) error {
	if err := r.db.WithContext(ctx).Model(playlist).Association("Tracks").Append(track); err != nil {
		return fmt.Errorf("add track %d to playlist %d: %w", track.ID, playlist.ID, err)
	}
	return nil
}

func (r *gormPlaylistRepository) RemoveTrack(ctx context.Context, playlist *model.Playlist, trackID int64) error {
	if err := r.db.WithContext(ctx).Model(playlist).Association("Tracks").Delete(&model.Track{ID: trackID}); err != nil {
		return fmt.Errorf("remove track %d from playlist %d: %w", trackID, playlist.ID, err)
	}
	return nil
}
