package model

import "time"

// Track 曲库中的一首歌曲
type Track struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"size:200;not null;index"`
	ArtistID    int64     `json:"artistId" gorm:"index;not null"`
	Artist      *Artist   `json:"artist,omitempty" gorm:"foreignKey:ArtistID"`
	AlbumID     *int64    `json:"albumId,omitempty" gorm:"index"`
	Album       *Album    `json:"album,omitempty" gorm:"foreignKey:AlbumID"`
	AudioPath   string    `json:"-" gorm:"size:767"`               // 媒体存储中的 key，不直接暴露
	ContentType string    `json:"-" gorm:"size:100"`               // 入库时声明的类型，可为空
	CoverPath   string    `json:"coverPath,omitempty" gorm:"size:767"`
	Duration    float32   `json:"duration"` // 秒
	Plays       int64     `json:"plays" gorm:"default:0;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
}

// CoverURL 歌曲没有封面时使用专辑封面
func (t *Track) CoverURL() string {
	if t.CoverPath != "" {
		return t.CoverPath
	}
	if t.Album != nil && t.Album.CoverPath != "" {
		return t.Album.CoverPath
	}
	return PlaceholderCover
}

// PlaceholderCover 默认封面
const PlaceholderCover = "/static/placeholder.png"

// TrackCard 返回给前端的精简信息（随机播放、相似歌曲）
type TrackCard struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Cover     string  `json:"cover"`
	StreamURL string  `json:"streamUrl"`
	Duration  float32 `json:"duration"`
}

// Card 构建 TrackCard
func (t *Track) Card() TrackCard {
	card := TrackCard{
		ID:        t.ID,
		Title:     t.Title,
		Cover:     t.CoverURL(),
		StreamURL: StreamURL(t.ID),
		Duration:  t.Duration,
	}
	if t.Artist != nil {
		card.Artist = t.Artist.Name
	}
	return card
}
