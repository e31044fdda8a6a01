package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"tunestream/logger"
	"tunestream/model"
)

// ListPlaylistsHandler GET /api/playlists
func (h *APIHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	playlists, err := h.repos.Playlists.ListByUser(r.Context(), userID)
	if err != nil {
		logger.Error("获取歌单列表失败", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to list playlists")
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

// CreatePlaylistHandler POST /api/playlists
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	var req struct {
		Name     string `json:"name"`
		IsPublic bool   `json:"isPublic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Name) > 200 {
		writeError(w, http.StatusBadRequest, "Playlist name is required")
		return
	}

	playlist := &model.Playlist{Name: req.Name, UserID: userID, IsPublic: req.IsPublic}
	if err := h.repos.Playlists.Create(r.Context(), playlist); err != nil {
		logger.Error("创建歌单失败", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to create playlist")
		return
	}

	logger.Info("歌单已创建",
		logger.Int64("playlistId", playlist.ID),
		logger.Int64("userId", userID))
	writeJSON(w, http.StatusCreated, playlist)
}

// loadPlaylist 读取歌单并检查可见性；所有者之外的人看不到私有歌单（返回 404）
func (h *APIHandler) loadPlaylist(w http.ResponseWriter, r *http.Request, ownerOnly bool) (*model.Playlist, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid playlist ID")
		return nil, false
	}
	userID, _ := GetUserIDFromContext(r.Context())

	playlist, err := h.repos.Playlists.GetWithTracks(r.Context(), id)
	if err != nil {
		logger.Error("获取歌单失败", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get playlist")
		return nil, false
	}
	if playlist == nil || !playlist.VisibleTo(userID) {
		writeError(w, http.StatusNotFound, "Playlist not found")
		return nil, false
	}
	if ownerOnly && playlist.UserID != userID {
		writeError(w, http.StatusForbidden, "Only the owner can modify this playlist")
		return nil, false
	}
	return playlist, true
}

// GetPlaylistHandler GET /api/playlists/{id}
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.loadPlaylist(w, r, false)
	if !ok {
		return
	}
	if playlist.Tracks == nil {
		playlist.Tracks = []*model.Track{}
	}
	writeJSON(w, http.StatusOK, playlist)
}

// UpdatePlaylistHandler PATCH /api/playlists/{id} {"name": "...", "isPublic": true}，字段可省略
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.loadPlaylist(w, r, true)
	if !ok {
		return
	}

	var req struct {
		Name     *string `json:"name"`
		IsPublic *bool   `json:"isPublic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || (req.Name == nil && req.IsPublic == nil) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > 200 {
			writeError(w, http.StatusBadRequest, "Playlist name is required")
			return
		}
		playlist.Name = name
	}
	if req.IsPublic != nil {
		playlist.IsPublic = *req.IsPublic
	}

	if err := h.repos.Playlists.Update(r.Context(), playlist); err != nil {
		logger.Error("更新歌单失败", logger.Int64("playlistId", playlist.ID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to update playlist")
		return
	}
	if playlist.Tracks == nil {
		playlist.Tracks = []*model.Track{}
	}
	writeJSON(w, http.StatusOK, playlist)
}

// AddPlaylistTrackHandler POST /api/playlists/{id}/tracks {"trackId": 1}
func (h *APIHandler) AddPlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.loadPlaylist(w, r, true)
	if !ok {
		return
	}

	var req struct {
		TrackID int64 `json:"trackId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TrackID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	track, err := h.repos.Tracks.GetByID(r.Context(), req.TrackID)
	if err != nil {
		logger.Error("获取曲目失败", logger.Int64("trackId", req.TrackID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to add track")
		return
	}
	if track == nil {
		writeError(w, http.StatusNotFound, "Track not found")
		return
	}

	if err := h.repos.Playlists.AddTrack(r.Context(), playlist, track); err != nil {
		logger.Error("添加歌曲到歌单失败",
			logger.Int64("playlistId", playlist.ID),
			logger.Int64("trackId", track.ID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to add track")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"playlistId": playlist.ID, "trackId": track.ID})
}

// RemovePlaylistTrackHandler DELETE /api/playlists/{id}/tracks/{track_id}
func (h *APIHandler) RemovePlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	playlist, ok := h.loadPlaylist(w, r, true)
	if !ok {
		return
	}
	trackID, ok := pathID(r, "track_id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid track ID")
		return
	}

	if err := h.repos.Playlists.RemoveTrack(r.Context(), playlist, trackID); err != nil {
		logger.Error("从歌单移除歌曲失败",
			logger.Int64("playlistId", playlist.ID),
			logger.Int64("trackId", trackID),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to remove track")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
