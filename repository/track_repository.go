package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tunestream/model"

	"gorm.io/gorm"
)

// TrackRepository 曲目查询。未找到时返回 nil, nil。
type TrackRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Track, error)
	List(ctx context.Context, limit, offset int) ([]*model.Track, int64, error)
	Search(ctx context.Context, query string, limit int) ([]*model.Track, error)

	// IncrementPlays 播放次数 +1，返回新的次数；曲目不存在时 found 为 false
	IncrementPlays(ctx context.Context, id int64) (plays int64, found bool, err error)

	ListByAlbum(ctx context.Context, albumID int64, exclude []int64, limit int) ([]*model.Track, error)
	ListByArtist(ctx context.Context, artistID int64, exclude []int64, limit int) ([]*model.Track, error)
	Popular(ctx context.Context, exclude []int64, limit int) ([]*model.Track, error)
	Random(ctx context.Context, exclude []int64) (*model.Track, error)
}

// gormTrackRepository GORM 实现
type gormTrackRepository struct {
	db *gorm.DB
}

// NewGormTrackRepository 创建 GORM 曲目仓库
func NewGormTrackRepository(db *gorm.DB) TrackRepository {
	return &gormTrackRepository{db: db}
}

func (r *gormTrackRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Artist").Preload("Album")
}

// GetByID 根据ID获取曲目
func (r *gormTrackRepository) GetByID(ctx context.Context, id int64) (*model.Track, error) {
	var track model.Track
	err := r.withRelations(ctx).Where("id = ?", id).First(&track).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get track %d: %w", id, err)
	}
	return &track, nil
}

// List 按创建时间倒序分页
func (r *gormTrackRepository) List(ctx context.Context, limit, offset int) ([]*model.Track, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Track{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count tracks: %w", err)
	}

	tracks := make([]*model.Track, 0)
	err := r.withRelations(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&tracks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list tracks: %w", err)
	}
	return tracks, total, nil
}

// Search 标题或歌手名包含关键字（不区分大小写）
func (r *gormTrackRepository) Search(ctx context.Context, query string, limit int) ([]*model.Track, error) {
	pattern := likePattern(query)
	tracks := make([]*model.Track, 0)
	err := r.db.WithContext(ctx).
		Joins("Artist").
		Preload("Album").
		Where("LOWER(tracks.title) LIKE ? OR LOWER(Artist.name) LIKE ?", pattern, pattern).
		Order("tracks.plays DESC").
		Limit(limit).
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("search tracks %q: %w", query, err)
	}
	return tracks, nil
}

// IncrementPlays 播放次数 +1
func (r *gormTrackRepository) IncrementPlays(ctx context.Context, id int64) (int64, bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Track{}).
		Where("id = ?", id).
		UpdateColumn("plays", gorm.Expr("plays + ?", 1))
	if res.Error != nil {
		return 0, false, fmt.Errorf("increment plays for track %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}

	var plays int64
	err := r.db.WithContext(ctx).Model(&model.Track{}).
		Where("id = ?", id).
		Select("plays").
		Scan(&plays).Error
	if err != nil {
		return 0, true, fmt.Errorf("read plays for track %d: %w", id, err)
	}
	return plays, true, nil
}

// ListByAlbum 同一专辑中的曲目
func (r *gormTrackRepository) ListByAlbum(ctx context.Context, albumID int64, exclude []int64, limit int) ([]*model.Track, error) {
	tracks := make([]*model.Track, 0)
	q := r.withRelations(ctx).Where("album_id = ?", albumID)
	err := excluding(q, exclude).Order("id ASC").Limit(limit).Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("list tracks of album %d: %w", albumID, err)
	}
	return tracks, nil
}

// ListByArtist 同一歌手的曲目，按播放次数倒序
func (r *gormTrackRepository) ListByArtist(ctx context.Context, artistID int64, exclude []int64, limit int) ([]*model.Track, error) {
	tracks := make([]*model.Track, 0)
	q := r.withRelations(ctx).Where("artist_id = ?", artistID)
	err := excluding(q, exclude).Order("plays DESC").Limit(limit).Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("list tracks of artist %d: %w", artistID, err)
	}
	return tracks, nil
}

// Popular 播放次数最多的曲目
func (r *gormTrackRepository) Popular(ctx context.Context, exclude []int64, limit int) ([]*model.Track, error) {
	tracks := make([]*model.Track, 0)
	err := excluding(r.withRelations(ctx), exclude).Order("plays DESC").Limit(limit).Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("list popular tracks: %w", err)
	}
	return tracks, nil
}

// Random 随机一首
func (r *gormTrackRepository) Random(ctx context.Context, exclude []int64) (*model.Track, error) {
	var track model.Track
	err := excluding(r.withRelations(ctx), exclude).Order("RAND()").Take(&track).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("random track: %w", err)
	}
	return &track, nil
}

func excluding(q *gorm.DB, ids []int64) *gorm.DB {
	if len(ids) == 0 {
		return q
	}
	return q.Where("tracks.id NOT IN ?", ids)
}

// likePattern 生成小写的 LIKE 模式并转义通配符
func likePattern(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	q = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
	return "%" + q + "%"
}
