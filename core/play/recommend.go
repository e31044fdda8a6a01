package play

import (
	"context"
	"math/rand"

	"tunestream/model"
	"tunestream/repository"
)

const (
	maxSimilarCandidates = 10
	minSameAlbum         = 5 // 同专辑不足时补充同歌手
	minBeforePopular     = 3 // 仍不足时补充热门
	popularFill          = 5
)

// Recommender "下一首"推荐
type Recommender struct {
	tracks repository.TrackRepository
	pick   func(n int) int
}

// NewRecommender 创建 Recommender
func NewRecommender(tracks repository.TrackRepository) *Recommender {
	return &Recommender{tracks: tracks, pick: rand.Intn}
}

// Similar 从候选中随机选一首：同专辑，其次同歌手（按播放次数），再次热门。
// exclude 中的曲目和当前曲目不会被选中；没有候选时返回 nil, nil。
// 当前曲目不存在时返回 ErrTrackNotFound。
func (r *Recommender) Similar(ctx context.Context, trackID int64, exclude []int64) (*model.Track, error) {
	current, err := r.tracks.GetByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrTrackNotFound
	}

	excluded := append([]int64{trackID}, exclude...)
	var candidates []*model.Track
	seen := make(map[int64]bool)
	add := func(tracks []*model.Track) {
		for _, t := range tracks {
			if len(candidates) >= maxSimilarCandidates {
				return
			}
			if !seen[t.ID] {
				seen[t.ID] = true
				candidates = append(candidates, t)
			}
		}
	}

	if current.AlbumID != nil {
		sameAlbum, err := r.tracks.ListByAlbum(ctx, *current.AlbumID, excluded, maxSimilarCandidates)
		if err != nil {
			return nil, err
		}
		add(sameAlbum)
	}

	if len(candidates) < minSameAlbum {
		sameArtist, err := r.tracks.ListByArtist(ctx, current.ArtistID, excluded, maxSimilarCandidates)
		if err != nil {
			return nil, err
		}
		add(sameArtist)
	}

	if len(candidates) < minBeforePopular {
		popular, err := r.tracks.Popular(ctx, excluded, popularFill)
		if err != nil {
			return nil, err
		}
		add(popular)
	}

	if len(candidates) == 0 {
		return nil, nil
	}
	return candidates[r.pick(len(candidates))], nil
}

// Random 随机一首，曲库为空时返回 nil, nil
func (r *Recommender) Random(ctx context.Context, exclude []int64) (*model.Track, error) {
	return r.tracks.Random(ctx, exclude)
}
