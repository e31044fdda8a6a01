package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tunestream/core/stream"
	"tunestream/logger"
	"tunestream/metrics"
	"tunestream/repository"
	"tunestream/storage"
)

// trackCatalog 把曲目仓库适配成 stream.Catalog，只读
type trackCatalog struct {
	tracks repository.TrackRepository
}

func (c trackCatalog) LookupMedia(ctx context.Context, trackID int64) (*stream.MediaRef, error) {
	track, err := c.tracks.GetByID(ctx, trackID)
	if err != nil || track == nil {
		return nil, err
	}
	return &stream.MediaRef{Key: track.AudioPath, ContentType: track.ContentType}, nil
}

// StreamHandler GET /stream/{track_id}，支持单个 Range
func (h *APIHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	started := time.Now()
	trackID, ok := pathID(r, "track_id")
	if !ok {
		metrics.ObserveStream(http.StatusNotFound, 0, started)
		http.Error(w, "Track not found", http.StatusNotFound)
		return
	}

	res, err := h.streamer.Serve(w, r, trackID)
	if err == nil {
		metrics.ObserveStream(res.Status, res.Written, started)
		logger.Debug("音频传输完成",
			logger.Int64("trackId", trackID),
			logger.Int("status", res.Status),
			logger.Int64("bytes", res.Written),
			logger.Duration("duration", time.Since(started)))
		return
	}

	var (
		rangeErr    *stream.RangeError
		transferErr *stream.TransferError
	)
	switch {
	case errors.As(err, &transferErr):
		metrics.ObserveStream(res.Status, res.Written, started)
		metrics.ObserveAbort(transferErr.ClientGone)
		if transferErr.ClientGone {
			logger.Debug("客户端断开，停止传输",
				logger.Int64("trackId", trackID),
				logger.Int64("written", transferErr.Written),
				logger.Int64("expected", transferErr.Expected))
		} else {
			logger.Error("音频传输中断",
				logger.Int64("trackId", trackID),
				logger.String("key", res.Key),
				logger.Int64("written", transferErr.Written),
				logger.Int64("expected", transferErr.Expected),
				logger.ErrorField(transferErr.Err))
		}
		// 响应头已发出，只能中止连接，客户端看到的是不完整的传输而不是成功
		panic(http.ErrAbortHandler)

	case errors.Is(err, stream.ErrTrackNotFound):
		metrics.ObserveStream(http.StatusNotFound, 0, started)
		http.Error(w, "Track not found", http.StatusNotFound)

	case errors.Is(err, storage.ErrObjectNotFound):
		metrics.ObserveStream(http.StatusNotFound, 0, started)
		logger.Warn("曲目的音频文件不存在",
			logger.Int64("trackId", trackID),
			logger.ErrorField(err))
		http.Error(w, "Audio file not found", http.StatusNotFound)

	case errors.As(err, &rangeErr):
		metrics.ObserveStream(http.StatusRequestedRangeNotSatisfiable, 0, started)
		w.Header().Set("Content-Range", stream.UnsatisfiedContentRange(rangeErr.Size))
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)

	default:
		metrics.ObserveStream(http.StatusInternalServerError, 0, started)
		logger.Error("读取音频失败",
			logger.Int64("trackId", trackID),
			logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
