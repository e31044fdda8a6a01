package model

import "time"

// Artist 歌手
type Artist struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:200;not null;index"`
	Bio       string    `json:"bio,omitempty" gorm:"type:text"`
	ImagePath string    `json:"imagePath,omitempty" gorm:"size:767"`
	CreatedAt time.Time `json:"createdAt"`

	// TrackCount 只在按曲目数排序的查询中填充
	TrackCount int64 `json:"trackCount,omitempty" gorm:"->;-:migration"`
}

// Album 专辑
type Album struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"size:200;not null;index"`
	ArtistID    int64     `json:"artistId" gorm:"index;not null"`
	Artist      *Artist   `json:"artist,omitempty" gorm:"foreignKey:ArtistID"`
	CoverPath   string    `json:"coverPath,omitempty" gorm:"size:767"`
	ReleaseDate time.Time `json:"releaseDate" gorm:"type:date;index"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ArtistDetail 歌手页：热门歌曲和专辑
type ArtistDetail struct {
	Artist    *Artist  `json:"artist"`
	TopTracks []*Track `json:"topTracks"`
	Albums    []*Album `json:"albums"`
}

// AlbumWithTracks 包含专辑信息和其包含的歌曲
type AlbumWithTracks struct {
	Album  *Album   `json:"album"`
	Tracks []*Track `json:"tracks"`
}

// SearchResult 搜索结果
type SearchResult struct {
	Query   string    `json:"query"`
	Tracks  []*Track  `json:"tracks"`
	Artists []*Artist `json:"artists"`
	Albums  []*Album  `json:"albums"`
}
