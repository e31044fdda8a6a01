package server

import (
	"net/http"

	"tunestream/logger"
	"tunestream/model"
)

const (
	artistTopTracks = 10
	albumTrackLimit = 500
)

// GetArtistHandler GET /api/artists/{id}：歌手、热门歌曲和专辑
func (h *APIHandler) GetArtistHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid artist ID")
		return
	}
	ctx := r.Context()

	artist, err := h.repos.Library.GetArtist(ctx, id)
	if err != nil {
		logger.Error("获取歌手失败", logger.Int64("artistId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get artist")
		return
	}
	if artist == nil {
		writeError(w, http.StatusNotFound, "Artist not found")
		return
	}

	topTracks, err := h.repos.Tracks.ListByArtist(ctx, id, nil, artistTopTracks)
	if err != nil {
		logger.Error("获取歌手热门歌曲失败", logger.Int64("artistId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get artist")
		return
	}
	albums, err := h.repos.Library.ListAlbumsByArtist(ctx, id)
	if err != nil {
		logger.Error("获取歌手专辑失败", logger.Int64("artistId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get artist")
		return
	}

	writeJSON(w, http.StatusOK, model.ArtistDetail{
		Artist:    artist,
		TopTracks: topTracks,
		Albums:    albums,
	})
}

// GetAlbumHandler GET /api/albums/{id}
func (h *APIHandler) GetAlbumHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid album ID")
		return
	}
	ctx := r.Context()

	album, err := h.repos.Library.GetAlbum(ctx, id)
	if err != nil {
		logger.Error("获取专辑失败", logger.Int64("albumId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get album")
		return
	}
	if album == nil {
		writeError(w, http.StatusNotFound, "Album not found")
		return
	}

	tracks, err := h.repos.Tracks.ListByAlbum(ctx, id, nil, albumTrackLimit)
	if err != nil {
		logger.Error("获取专辑歌曲失败", logger.Int64("albumId", id), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get album tracks")
		return
	}

	writeJSON(w, http.StatusOK, model.AlbumWithTracks{Album: album, Tracks: tracks})
}
