package play

import (
	"context"

	"tunestream/model"
	"tunestream/repository"
)

const (
	homeRecentTracks  = 3
	homePopularTracks = 3
	homeArtists       = 8
	homeAlbums        = 8

	recommendLimit      = 6
	recommendTopArtists = 3
	// 推荐的歌手至少要有这么多首歌
	recommendMinArtistTracks = 2
)

// Home 组装首页
type Home struct {
	tracks    repository.TrackRepository
	favorites repository.FavoriteRepository
	discover  repository.DiscoverRepository
}

// NewHome 创建 Home
func NewHome(tracks repository.TrackRepository, favorites repository.FavoriteRepository, discover repository.DiscoverRepository) *Home {
	return &Home{tracks: tracks, favorites: favorites, discover: discover}
}

// Feed 返回首页内容。userID 为 0 时只有公共部分。
//
// 登录用户的推荐优先来自播放记录里最常听的歌手（排除听过的曲目、歌手和专辑）；
// 据此推荐不出曲目而用户有收藏时，改用收藏曲目的歌手。
func (h *Home) Feed(ctx context.Context, userID int64) (*model.HomeFeed, error) {
	feed := &model.HomeFeed{
		FavoriteIDs: []int64{},
		Recommended: model.Recommendations{
			Tracks:  []*model.Track{},
			Artists: []*model.Artist{},
			Albums:  []*model.Album{},
		},
	}

	var err error
	if feed.RecentTracks, err = h.discover.RecentReleases(ctx, homeRecentTracks); err != nil {
		return nil, err
	}
	if feed.PopularTracks, err = h.tracks.Popular(ctx, nil, homePopularTracks); err != nil {
		return nil, err
	}
	if feed.Artists, err = h.discover.ArtistsByTrackCount(ctx, nil, 0, homeArtists); err != nil {
		return nil, err
	}
	if feed.Albums, err = h.discover.RecentAlbums(ctx, nil, nil, homeAlbums); err != nil {
		return nil, err
	}

	if userID == 0 {
		return feed, nil
	}

	if feed.FavoriteIDs, err = h.favorites.TrackIDs(ctx, userID); err != nil {
		return nil, err
	}
	if err := h.fromHistory(ctx, userID, &feed.Recommended); err != nil {
		return nil, err
	}
	if len(feed.Recommended.Tracks) == 0 && len(feed.FavoriteIDs) > 0 {
		if err := h.fromFavorites(ctx, userID, feed.FavoriteIDs, &feed.Recommended); err != nil {
			return nil, err
		}
	}
	return feed, nil
}

func (h *Home) fromHistory(ctx context.Context, userID int64, rec *model.Recommendations) error {
	top, err := h.discover.TopPlayedArtists(ctx, userID, recommendTopArtists)
	if err != nil || len(top) == 0 {
		return err
	}
	listened, err := h.discover.Listened(ctx, userID)
	if err != nil {
		return err
	}

	if rec.Tracks, err = h.discover.TracksByArtists(ctx, top, listened.TrackIDs, recommendLimit); err != nil {
		return err
	}
	if rec.Artists, err = h.discover.ArtistsByTrackCount(ctx, listened.ArtistIDs, recommendMinArtistTracks, recommendLimit); err != nil {
		return err
	}
	if rec.Albums, err = h.discover.RecentAlbums(ctx, top, listened.AlbumIDs, recommendLimit); err != nil {
		return err
	}

	// 专辑不够时用最新专辑补齐
	if missing := recommendLimit - len(rec.Albums); missing > 0 {
		picked := make([]int64, 0, len(rec.Albums))
		for _, a := range rec.Albums {
			picked = append(picked, a.ID)
		}
		more, err := h.discover.RecentAlbums(ctx, nil, picked, missing)
		if err != nil {
			return err
		}
		rec.Albums = append(rec.Albums, more...)
	}
	return nil
}

func (h *Home) fromFavorites(ctx context.Context, userID int64, favoriteIDs []int64, rec *model.Recommendations) error {
	artists, err := h.discover.FavoriteArtists(ctx, userID)
	if err != nil || len(artists) == 0 {
		return err
	}
	if rec.Tracks, err = h.discover.TracksByArtists(ctx, artists, favoriteIDs, recommendLimit); err != nil {
		return err
	}
	if rec.Artists, err = h.discover.ArtistsByTrackCount(ctx, artists, recommendMinArtistTracks, recommendLimit); err != nil {
		return err
	}
	rec.Albums, err = h.discover.RecentAlbums(ctx, artists, nil, recommendLimit)
	return err
}
