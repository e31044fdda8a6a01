package repository

import (
	"context"
	"errors"
	"fmt"

	"tunestream/model"

	"gorm.io/gorm"
)

// LibraryRepository 歌手和专辑的只读查询
type LibraryRepository interface {
	GetArtist(ctx context.Context, id int64) (*model.Artist, error)
	GetAlbum(ctx context.Context, id int64) (*model.Album, error)
	ListAlbumsByArtist(ctx context.Context, artistID int64) ([]*model.Album, error)
	SearchArtists(ctx context.Context, query string, limit int) ([]*model.Artist, error)
	SearchAlbums(ctx context.Context, query string, limit int) ([]*model.Album, error)
}

type gormLibraryRepository struct {
	db *gorm.DB
}

// NewGormLibraryRepository 创建歌手/专辑仓库
func NewGormLibraryRepository(db *gorm.DB) LibraryRepository {
	return &gormLibraryRepository{db: db}
}

func (r *gormLibraryRepository) GetArtist(ctx context.Context, id int64) (*model.Artist, error) {
	var artist model.Artist
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&artist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get artist %d: %w", id, err)
	}
	return &artist, nil
}

func (r *gormLibraryRepository) GetAlbum(ctx context.Context, id int64) (*model.Album, error) {
	var album model.Album
	if err := r.db.WithContext(ctx).Preload("Artist").Where("id = ?", id).First(&album).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get album %d: %w", id, err)
	}
	return &album, nil
}

// ListAlbumsByArtist 按发行日期倒序
func (r *gormLibraryRepository) ListAlbumsByArtist(ctx context.Context, artistID int64) ([]*model.Album, error) {
	albums := make([]*model.Album, 0)
	err := r.db.WithContext(ctx).
		Where("artist_id = ?", artistID).
		Order("release_date DESC").
		Find(&albums).Error
	if err != nil {
		return nil, fmt.Errorf("list albums of artist %d: %w", artistID, err)
	}
	return albums, nil
}

func (r *gormLibraryRepository) SearchArtists(ctx context.Context, query string, limit int) ([]*model.Artist, error) {
	artists := make([]*model.Artist, 0)
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", likePattern(query)).
		Order("name ASC").
		Limit(limit).
		Find(&artists).Error
	if err != nil {
		return nil, fmt.Errorf("search artists %q: %w", query, err)
	}
	return artists, nil
}

// SearchAlbums 专辑名或歌手名匹配
func (r *gormLibraryRepository) SearchAlbums(ctx context.Context, query string, limit int) ([]*model.Album, error) {
	pattern := likePattern(query)
	albums := make([]*model.Album, 0)
	err := r.db.WithContext(ctx).
		Joins("Artist").
		Where("LOWER(albums.title) LIKE ? OR LOWER(Artist.name) LIKE ?", pattern, pattern).
		Order("albums.release_date DESC").
		Limit(limit).
		Find(&albums).Error
	if err != nil {
		return nil, fmt.Errorf("search albums %q: %w", query, err)
	}
	return albums, nil
}
