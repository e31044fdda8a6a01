package model

// HomeFeed 首页：新歌、热门、歌手、新专辑，登录用户另有推荐
type HomeFeed struct {
	RecentTracks  []*Track        `json:"recentTracks"`
	PopularTracks []*Track        `json:"popularTracks"`
	Artists       []*Artist       `json:"artists"`
	Albums        []*Album        `json:"albums"`
	FavoriteIDs   []int64         `json:"favoriteIds"`
	Recommended   Recommendations `json:"recommended"`
}

// Recommendations 个性化推荐，匿名用户为空
type Recommendations struct {
	Tracks  []*Track  `json:"tracks"`
	Artists []*Artist `json:"artists"`
	Albums  []*Album  `json:"albums"`
}

// Listened 用户播放过的曲目、歌手和专辑 id
type Listened struct {
	TrackIDs  []int64
	ArtistIDs []int64
	AlbumIDs  []int64
}
