package play

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tunestream/logger"
	"tunestream/model"
	"tunestream/repository"
)

// ErrTrackNotFound 曲目不存在
var ErrTrackNotFound = errors.New("track not found")

// Publisher 接收播放事件
type Publisher interface {
	Publish(event model.PlayEvent)
}

// Recorder 处理"开始播放"：播放次数 +1，登录用户记录历史并推送事件。
// 与音频传输完全独立，由客户端在播放开始后单独调用。
type Recorder struct {
	tracks    repository.TrackRepository
	history   repository.PlayHistoryRepository
	publisher Publisher
	now       func() time.Time
}

// NewRecorder 创建 Recorder，publisher 可以为 nil
func NewRecorder(tracks repository.TrackRepository, history repository.PlayHistoryRepository, publisher Publisher) *Recorder {
	return &Recorder{
		tracks:    tracks,
		history:   history,
		publisher: publisher,
		now:       time.Now,
	}
}

// RecordPlay userID 为 0 表示匿名播放，只计数
func (r *Recorder) RecordPlay(ctx context.Context, trackID, userID int64) (*model.PlayEvent, error) {
	track, err := r.tracks.GetByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, fmt.Errorf("track %d: %w", trackID, ErrTrackNotFound)
	}

	plays, found, err := r.tracks.IncrementPlays(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("track %d: %w", trackID, ErrTrackNotFound)
	}

	event := &model.PlayEvent{
		Type:     "play",
		UserID:   userID,
		TrackID:  trackID,
		Title:    track.Title,
		Plays:    plays,
		PlayedAt: r.now(),
	}

	if userID == 0 {
		return event, nil
	}

	if err := r.history.Record(ctx, userID, trackID, event.PlayedAt); err != nil {
		return nil, err
	}
	if r.publisher != nil {
		r.publisher.Publish(*event)
	}

	logger.Debug("播放已记录",
		logger.Int64("trackId", trackID),
		logger.Int64("userId", userID),
		logger.Int64("plays", plays))
	return event, nil
}
