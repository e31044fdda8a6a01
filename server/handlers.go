package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"tunestream/core/auth"
	"tunestream/core/play"
	"tunestream/core/stream"
	"tunestream/logger"
	"tunestream/repository"
	"tunestream/storage"

	"github.com/gorilla/mux"
)

// Repositories 处理器依赖的所有仓库
type Repositories struct {
	Tracks    repository.TrackRepository
	Library   repository.LibraryRepository
	Users     repository.UserRepository
	Favorites repository.FavoriteRepository
	Playlists repository.PlaylistRepository
	History   repository.PlayHistoryRepository
	Discover  repository.DiscoverRepository
}

// APIHandler 处理所有API请求
type APIHandler struct {
	repos       Repositories
	store       storage.Store
	streamer    *stream.Streamer
	recorder    *play.Recorder
	recommender *play.Recommender
	home        *play.Home
	hub         *play.Hub
	tokens      *auth.TokenManager
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(repos Repositories, store storage.Store, tokens *auth.TokenManager) *APIHandler {
	hub := play.NewHub()
	return &APIHandler{
		repos:       repos,
		store:       store,
		streamer:    stream.NewStreamer(trackCatalog{tracks: repos.Tracks}, store),
		recorder:    play.NewRecorder(repos.Tracks, repos.History, hub),
		recommender: play.NewRecommender(repos.Tracks),
		home:        play.NewHome(repos.Tracks, repos.Favorites, repos.Discover),
		hub:         hub,
		tokens:      tokens,
	}
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("编码响应失败", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// pathID 解析路径参数中的数字 id
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseExclude 解析 "1,2,3"，忽略无法解析的项
func parseExclude(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func queryInt(r *http.Request, key string, fallback, max int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return fallback
	}
	if max > 0 && v > max {
		return max
	}
	return v
}
