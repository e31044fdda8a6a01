package server

import (
	"net/http"

	"tunestream/logger"
	"tunestream/model"
)

type recommendationsResponse struct {
	Tracks  []trackResponse `json:"tracks"`
	Artists []*model.Artist `json:"artists"`
	Albums  []*model.Album  `json:"albums"`
}

type homeResponse struct {
	RecentTracks  []trackResponse         `json:"recentTracks"`
	PopularTracks []trackResponse         `json:"popularTracks"`
	Artists       []*model.Artist         `json:"artists"`
	Albums        []*model.Album          `json:"albums"`
	FavoriteIDs   []int64                 `json:"favoriteIds"`
	Recommended   recommendationsResponse `json:"recommended"`
}

// HomeHandler GET /api/home，带 token 时附加个性化推荐
func (h *APIHandler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	feed, err := h.home.Feed(r.Context(), userID)
	if err != nil {
		logger.Error("获取首页失败", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to load home")
		return
	}

	writeJSON(w, http.StatusOK, homeResponse{
		RecentTracks:  newTrackResponses(feed.RecentTracks),
		PopularTracks: newTrackResponses(feed.PopularTracks),
		Artists:       feed.Artists,
		Albums:        feed.Albums,
		FavoriteIDs:   feed.FavoriteIDs,
		Recommended: recommendationsResponse{
			Tracks:  newTrackResponses(feed.Recommended.Tracks),
			Artists: feed.Recommended.Artists,
			Albums:  feed.Recommended.Albums,
		},
	})
}
