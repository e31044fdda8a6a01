package server

import (
	"net/http"

	"tunestream/logger"
)

const historyLimit = 50

// ToggleFavoriteHandler POST /api/tracks/{id}/favorite
func (h *APIHandler) ToggleFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}
	userID, _ := GetUserIDFromContext(r.Context())

	track, err := h.repos.Tracks.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("获取曲目失败", logger.Int64("trackId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to update favorite")
		return
	}
	if track == nil {
		writeError(w, http.StatusNotFound, "Track not found")
		return
	}

	added, err := h.repos.Favorites.Toggle(r.Context(), userID, id)
	if err != nil {
		logger.Error("切换收藏失败",
			logger.Int64("userId", userID),
			logger.Int64("trackId", id),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to update favorite")
		return
	}

	status := "removed"
	if added {
		status = "added"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": status, "trackId": id})
}

// ListFavoritesHandler GET /api/favorites
func (h *APIHandler) ListFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	tracks, err := h.repos.Favorites.ListTracks(r.Context(), userID)
	if err != nil {
		logger.Error("获取收藏失败", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list favorites")
		return
	}
	writeJSON(w, http.StatusOK, newTrackResponses(tracks))
}

// HistoryHandler GET /api/history?limit=
func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	limit := queryInt(r, "limit", historyLimit, historyLimit)
	if limit == 0 {
		limit = historyLimit
	}

	history, err := h.repos.History.Recent(r.Context(), userID, limit)
	if err != nil {
		logger.Error("获取播放记录失败", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get history")
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// FavoriteIDsHandler GET /api/favorites/ids，前端用来标记已收藏的曲目
func (h *APIHandler) FavoriteIDsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	ids, err := h.repos.Favorites.TrackIDs(r.Context(), userID)
	if err != nil {
		logger.Error("获取收藏id失败", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list favorites")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"trackIds": ids})
}
