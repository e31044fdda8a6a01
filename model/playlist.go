package model

import (
	"fmt"
	"time"
)

// Playlist 用户歌单
type Playlist struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:200;not null"`
	UserID    int64     `json:"userId" gorm:"index;not null"`
	IsPublic  bool      `json:"isPublic" gorm:"default:false"`
	CoverPath string    `json:"coverPath,omitempty" gorm:"size:767"`
	Tracks    []*Track  `json:"tracks,omitempty" gorm:"many2many:playlist_tracks;"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// VisibleTo 歌单只对所有者可见，公开歌单除外
func (p *Playlist) VisibleTo(userID int64) bool {
	return p.IsPublic || p.UserID == userID
}

// Favorite 用户收藏，(user_id, track_id) 唯一
type Favorite struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"userId" gorm:"uniqueIndex:uq_user_track;not null"`
	TrackID   int64     `json:"trackId" gorm:"uniqueIndex:uq_user_track;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// PlayHistory 播放记录
type PlayHistory struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID   int64     `json:"userId" gorm:"index;not null"`
	TrackID  int64     `json:"trackId" gorm:"index;not null"`
	Track    *Track    `json:"track,omitempty" gorm:"foreignKey:TrackID"`
	PlayedAt time.Time `json:"playedAt" gorm:"index"`
}

// TableName 与其他表保持复数命名
func (PlayHistory) TableName() string {
	return "play_histories"
}

// PlayEvent 播放事件，通过 websocket 推送给同一用户的其他设备
type PlayEvent struct {
	Type     string    `json:"type"`
	UserID   int64     `json:"userId"`
	TrackID  int64     `json:"trackId"`
	Title    string    `json:"title"`
	Plays    int64     `json:"plays"`
	PlayedAt time.Time `json:"playedAt"`
}

// StreamURL 曲目的流地址
func StreamURL(trackID int64) string {
	return fmt.Sprintf("/stream/%d", trackID)
}
