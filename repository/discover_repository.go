package repository

import (
	"context"
	"fmt"

	"tunestream/model"

	"gorm.io/gorm"
)

// DiscoverRepository 首页和个性化推荐用到的聚合查询
type DiscoverRepository interface {
	// RecentReleases 按专辑发行日期倒序的曲目，没有专辑的排在最后
	RecentReleases(ctx context.Context, limit int) ([]*model.Track, error)
	// TracksByArtists 指定歌手的曲目，按播放次数倒序
	TracksByArtists(ctx context.Context, artistIDs, exclude []int64, limit int) ([]*model.Track, error)
	// ArtistsByTrackCount 曲目数不少于 minTracks 的歌手，按曲目数倒序
	ArtistsByTrackCount(ctx context.Context, exclude []int64, minTracks, limit int) ([]*model.Artist, error)
	// RecentAlbums 按发行日期倒序，artistIDs 为空时不限歌手
	RecentAlbums(ctx context.Context, artistIDs, exclude []int64, limit int) ([]*model.Album, error)

	// TopPlayedArtists 用户播放次数最多的歌手
	TopPlayedArtists(ctx context.Context, userID int64, limit int) ([]int64, error)
	Listened(ctx context.Context, userID int64) (*model.Listened, error)
	// FavoriteArtists 用户收藏的曲目所属的歌手
	FavoriteArtists(ctx context.Context, userID int64) ([]int64, error)
}

type gormDiscoverRepository struct {
	db *gorm.DB
}

// NewGormDiscoverRepository 创建推荐查询仓库
func NewGormDiscoverRepository(db *gorm.DB) DiscoverRepository {
	return &gormDiscoverRepository{db: db}
}

func (r *gormDiscoverRepository) RecentReleases(ctx context.Context, limit int) ([]*model.Track, error) {
	tracks := make([]*model.Track, 0)
	err := r.db.WithContext(ctx).
		Preload("Artist").Preload("Album").
		Joins("LEFT JOIN albums ON albums.id = tracks.album_id").
		Order("albums.release_date DESC").Order("tracks.id DESC").
		Limit(limit).
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("list recent releases: %w", err)
	}
	return tracks, nil
}

func (r *gormDiscoverRepository) TracksByArtists(ctx context.Context, artistIDs, exclude []int64, limit int) ([]*model.Track, error) {
	tracks := make([]*model.Track, 0)
	if len(artistIDs) == 0 {
		return tracks, nil
	}
	q := r.db.WithContext(ctx).
		Preload("Artist").Preload("Album").
		Where("tracks.artist_id IN ?", artistIDs)
	err := excluding(q, exclude).Order("tracks.plays DESC").Limit(limit).Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("list tracks of artists %v: %w", artistIDs, err)
	}
	return tracks, nil
}

func (r *gormDiscoverRepository) ArtistsByTrackCount(ctx context.Context, exclude []int64, minTracks, limit int) ([]*model.Artist, error) {
	artists := make([]*model.Artist, 0)
	q := r.db.WithContext(ctx).Model(&model.Artist{}).
		Select("artists.*, COUNT(tracks.id) AS track_count").
		Joins("LEFT JOIN tracks ON tracks.artist_id = artists.id")
	if len(exclude) > 0 {
		q = q.Where("artists.id NOT IN ?", exclude)
	}
	err := q.Group("artists.id").
		Having("COUNT(tracks.id) >= ?", minTracks).
		Order("track_count DESC").Order("artists.id ASC").
		Limit(limit).
		Find(&artists).Error
	if err != nil {
		return nil, fmt.Errorf("list artists by track count: %w", err)
	}
	return artists, nil
}

func (r *gormDiscoverRepository) RecentAlbums(ctx context.Context, artistIDs, exclude []int64, limit int) ([]*model.Album, error) {
	albums := make([]*model.Album, 0)
	q := r.db.WithContext(ctx).Preload("Artist")
	if len(artistIDs) > 0 {
		q = q.Where("albums.artist_id IN ?", artistIDs)
	}
	if len(exclude) > 0 {
		q = q.Where("albums.id NOT IN ?", exclude)
	}
	err := q.Order("albums.release_date DESC").Order("albums.id DESC").Limit(limit).Find(&albums).Error
	if err != nil {
		return nil, fmt.Errorf("list recent albums: %w", err)
	}
	return albums, nil
}

// historyOf 用户播放记录关联到曲目
func (r *gormDiscoverRepository) historyOf(ctx context.Context, userID int64) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.PlayHistory{}).
		Joins("JOIN tracks ON tracks.id = play_histories.track_id").
		Where("play_histories.user_id = ?", userID)
}

func (r *gormDiscoverRepository) TopPlayedArtists(ctx context.Context, userID int64, limit int) ([]int64, error) {
	ids := make([]int64, 0)
	err := r.historyOf(ctx, userID).
		Select("tracks.artist_id").
		Group("tracks.artist_id").
		Order("COUNT(play_histories.id) DESC").Order("tracks.artist_id ASC").
		Limit(limit).
		Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("top artists of user %d: %w", userID, err)
	}
	return ids, nil
}

func (r *gormDiscoverRepository) Listened(ctx context.Context, userID int64) (*model.Listened, error) {
	out := &model.Listened{
		TrackIDs:  make([]int64, 0),
		ArtistIDs: make([]int64, 0),
		AlbumIDs:  make([]int64, 0),
	}
	if err := r.historyOf(ctx, userID).Distinct().Pluck("play_histories.track_id", &out.TrackIDs).Error; err != nil {
		return nil, fmt.Errorf("listened tracks of user %d: %w", userID, err)
	}
	if err := r.historyOf(ctx, userID).Distinct().Pluck("tracks.artist_id", &out.ArtistIDs).Error; err != nil {
		return nil, fmt.Errorf("listened artists of user %d: %w", userID, err)
	}
	err := r.historyOf(ctx, userID).
		Where("tracks.album_id IS NOT NULL").
		Distinct().Pluck("tracks.album_id", &out.AlbumIDs).Error
	if err != nil {
		return nil, fmt.Errorf("listened albums of user %d: %w", userID, err)
	}
	return out, nil
}

func (r *gormDiscoverRepository) FavoriteArtists(ctx context.Context, userID int64) ([]int64, error) {
	ids := make([]int64, 0)
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Joins("JOIN tracks ON tracks.id = favorites.track_id").
		Where("favorites.user_id = ?", userID).
		Distinct().Pluck("tracks.artist_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("favorite artists of user %d: %w", userID, err)
	}
	return ids, nil
}
