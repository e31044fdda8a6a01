package server

import (
	"errors"
	"net/http"
	"strings"

	"tunestream/core/play"
	"tunestream/logger"
	"tunestream/model"
)

const (
	searchTrackLimit  = 20
	searchArtistLimit = 10
	searchAlbumLimit  = 10
)

// trackResponse 曲目详情，附带流地址和封面
type trackResponse struct {
	*model.Track
	StreamURL string `json:"streamUrl"`
	Cover     string `json:"cover"`
}

func newTrackResponse(t *model.Track) trackResponse {
	return trackResponse{Track: t, StreamURL: model.StreamURL(t.ID), Cover: t.CoverURL()}
}

func newTrackResponses(tracks []*model.Track) []trackResponse {
	out := make([]trackResponse, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, newTrackResponse(t))
	}
	return out
}

// GetTracksHandler GET /api/tracks?limit&offset
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultPageSize, maxPageSize)
	if limit == 0 {
		limit = defaultPageSize
	}
	offset := queryInt(r, "offset", 0, 0)

	tracks, total, err := h.repos.Tracks.List(r.Context(), limit, offset)
	if err != nil {
		logger.Error("获取曲目列表失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list tracks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tracks": newTrackResponses(tracks),
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetTrackHandler GET /api/tracks/{id}
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	track, err := h.repos.Tracks.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("获取曲目失败", logger.Int64("trackId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get track")
		return
	}
	if track == nil {
		writeError(w, http.StatusNotFound, "Track not found")
		return
	}

	writeJSON(w, http.StatusOK, newTrackResponse(track))
}

// SearchHandler GET /api/search?q=
func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	result := model.SearchResult{
		Query:   query,
		Tracks:  []*model.Track{},
		Artists: []*model.Artist{},
		Albums:  []*model.Album{},
	}
	if query == "" {
		writeJSON(w, http.StatusOK, result)
		return
	}

	ctx := r.Context()
	var err error
	if result.Tracks, err = h.repos.Tracks.Search(ctx, query, searchTrackLimit); err != nil {
		logger.Error("搜索曲目失败", logger.String("query", query), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	if result.Artists, err = h.repos.Library.SearchArtists(ctx, query, searchArtistLimit); err != nil {
		logger.Error("搜索歌手失败", logger.String("query", query), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	if result.Albums, err = h.repos.Library.SearchAlbums(ctx, query, searchAlbumLimit); err != nil {
		logger.Error("搜索专辑失败", logger.String("query", query), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RecordPlayHandler POST /api/tracks/{id}/play
// 与 /stream 分开：拖动进度会产生多个 Range 请求，不能每个都计数
func (h *APIHandler) RecordPlayHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}
	userID, _ := GetUserIDFromContext(r.Context())

	event, err := h.recorder.RecordPlay(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, play.ErrTrackNotFound) {
			writeError(w, http.StatusNotFound, "Track not found")
			return
		}
		logger.Error("记录播放失败", logger.Int64("trackId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to record play")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trackId": id,
		"plays":   event.Plays,
	})
}

// SimilarTrackHandler GET /api/tracks/{id}/similar?exclude=1,2
func (h *APIHandler) SimilarTrackHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	track, err := h.recommender.Similar(r.Context(), id, parseExclude(r.URL.Query().Get("exclude")))
	if err != nil {
		if errors.Is(err, play.ErrTrackNotFound) {
			writeError(w, http.StatusNotFound, "Track not found")
			return
		}
		logger.Error("获取相似曲目失败", logger.Int64("trackId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to find similar track")
		return
	}
	if track == nil {
		writeError(w, http.StatusNotFound, "No similar track found")
		return
	}

	writeJSON(w, http.StatusOK, track.Card())
}

// RandomTrackHandler GET /api/tracks/random?exclude=id
func (h *APIHandler) RandomTrackHandler(w http.ResponseWriter, r *http.Request) {
	track, err := h.recommender.Random(r.Context(), parseExclude(r.URL.Query().Get("exclude")))
	if err != nil {
		logger.Error("随机获取曲目失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to pick a track")
		return
	}
	if track == nil {
		writeError(w, http.StatusNotFound, "No tracks available")
		return
	}

	writeJSON(w, http.StatusOK, track.Card())
}
