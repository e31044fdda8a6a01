package server

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"tunestream/model"
	"tunestream/repository"
)

// memCatalog 内存版仓库，所有接口共用一把锁
type memCatalog struct {
	mu        sync.Mutex
	tracks    map[int64]*model.Track
	artists   map[int64]*model.Artist
	albums    map[int64]*model.Album
	users     map[int64]*model.User
	favorites map[int64][]int64
	playlists map[int64]*model.Playlist
	history   []*model.PlayHistory
	nextID    int64
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		tracks:    map[int64]*model.Track{},
		artists:   map[int64]*model.Artist{},
		albums:    map[int64]*model.Album{},
		users:     map[int64]*model.User{},
		favorites: map[int64][]int64{},
		playlists: map[int64]*model.Playlist{},
		nextID:    1000,
	}
}

func (m *memCatalog) repos() Repositories {
	return Repositories{
		Tracks:    memTracks{m},
		Library:   memLibrary{m},
		Users:     memUsers{m},
		Favorites: memFavorites{m},
		Playlists: memPlaylists{m},
		History:   memHistory{m},
		Discover:  memDiscover{m},
	}
}

func (m *memCatalog) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memCatalog) sorted(exclude []int64, limit int, keep func(*model.Track) bool) []*model.Track {
	out := make([]*model.Track, 0)
	for _, t := range m.tracks {
		if keep(t) && !slices.Contains(exclude, t.ID) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b *model.Track) int {
		if a.Plays != b.Plays {
			return int(b.Plays - a.Plays)
		}
		return int(a.ID - b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type memTracks struct{ m *memCatalog }

func (r memTracks) GetByID(_ context.Context, id int64) (*model.Track, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.tracks[id], nil
}

func (r memTracks) List(_ context.Context, limit, offset int) ([]*model.Track, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	all := r.m.sorted(nil, 0, func(*model.Track) bool { return true })
	total := int64(len(all))
	if offset >= len(all) {
		return []*model.Track{}, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (r memTracks) Search(_ context.Context, query string, limit int) ([]*model.Track, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	q := strings.ToLower(query)
	return r.m.sorted(nil, limit, func(t *model.Track) bool {
		return strings.Contains(strings.ToLower(t.Title), q)
	}), nil
}

func (r memTracks) IncrementPlays(_ context.Context, id int64) (int64, bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tracks[id]
	if !ok {
		return 0, false, nil
	}
	t.Plays++
	return t.Plays, true, nil
}

func (r memTracks) ListByAlbum(_ context.Context, albumID int64, exclude []int64, limit int) ([]*model.Track, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.sorted(exclude, limit, func(t *model.Track) bool {
		return t.AlbumID != nil && *t.AlbumID == albumID
	}), nil
}

func (r memTracks) ListByArtist(_ context.Context, artistID int64, exclude []int64, limit int) ([]*model.Track, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.sorted(exclude, limit, func(t *model.Track) bool { return t.ArtistID == artistID }), nil
}

func (r memTracks) Popular(_ context.Context, exclude []int64, limit int) ([]*model.Track, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.sorted(exclude, limit, func(*model.Track) bool { return true }), nil
}

func (r memTracks) Random(_ context.Context, exclude []int64) (*model.Track, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	all := r.m.sorted(exclude, 1, func(*model.Track) bool { return true })
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

type memLibrary struct{ m *memCatalog }

func (r memLibrary) GetArtist(_ context.Context, id int64) (*model.Artist, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.artists[id], nil
}

func (r memLibrary) GetAlbum(_ context.Context, id int64) (*model.Album, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.albums[id], nil
}

func (r memLibrary) ListAlbumsByArtist(_ context.Context, artistID int64) ([]*model.Album, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*model.Album, 0)
	for _, a := range r.m.albums {
		if a.ArtistID == artistID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memLibrary) SearchArtists(_ context.Context, query string, limit int) ([]*model.Artist, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*model.Artist, 0)
	for _, a := range r.m.artists {
		if strings.Contains(strings.ToLower(a.Name), strings.ToLower(query)) && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memLibrary) SearchAlbums(_ context.Context, query string, limit int) ([]*model.Album, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*model.Album, 0)
	for _, a := range r.m.albums {
		if strings.Contains(strings.ToLower(a.Title), strings.ToLower(query)) && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

type memUsers struct{ m *memCatalog }

func (r memUsers) CreateUser(_ context.Context, user *model.User) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return 0, repository.ErrUserExists
		}
	}
	user.ID = r.m.id()
	r.m.users[user.ID] = user
	return user.ID, nil
}

func (r memUsers) find(match func(*model.User) bool) *model.User {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if match(u) {
			return u
		}
	}
	return nil
}

func (r memUsers) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Username == username }), nil
}

func (r memUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email }), nil
}

type memFavorites struct{ m *memCatalog }

func (r memFavorites) Toggle(_ context.Context, userID, trackID int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	ids := r.m.favorites[userID]
	if i := slices.Index(ids, trackID); i >= 0 {
		r.m.favorites[userID] = slices.Delete(ids, i, i+1)
		return false, nil
	}
	r.m.favorites[userID] = append(ids, trackID)
	return true, nil
}

func (r memFavorites) ListTracks(_ context.Context, userID int64) ([]*model.Track, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*model.Track, 0)
	for _, id := range r.m.favorites[userID] {
		out = append(out, r.m.tracks[id])
	}
	return out, nil
}

func (r memFavorites) TrackIDs(_ context.Context, userID int64) ([]int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append([]int64{}, r.m.favorites[userID]...), nil
}

type memPlaylists struct{ m *memCatalog }

func (r memPlaylists) Create(_ context.Context, p *model.Playlist) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p.ID = r.m.id()
	p.CreatedAt = time.Now()
	r.m.playlists[p.ID] = p
	return nil
}

func (r memPlaylists) ListByUser(_ context.Context, userID int64) ([]*model.Playlist, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*model.Playlist, 0)
	for _, p := range r.m.playlists {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memPlaylists) GetWithTracks(_ context.Context, id int64) (*model.Playlist, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.playlists[id], nil
}

func (r memPlaylists) Update(_ context.Context, p *model.Playlist) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.playlists[p.ID]
	if !ok {
		return nil
	}
	stored.Name = p.Name
	stored.IsPublic = p.IsPublic
	return nil
}

func (r memPlaylists) AddTrack(_ context.Context, p *model.Playlist, t *model.Track) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range p.Tracks {
		if existing.ID == t.ID {
			return nil
		}
	}
	p.Tracks = append(p.Tracks, t)
	return nil
}

func (r memPlaylists) RemoveTrack(_ context.Context, p *model.Playlist, trackID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p.Tracks = slices.DeleteFunc(p.Tracks, func(t *model.Track) bool { return t.ID == trackID })
	return nil
}

type memHistory struct{ m *memCatalog }

func (r memHistory) Record(_ context.Context, userID, trackID int64, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.history = append(r.m.history, &model.PlayHistory{UserID: userID, TrackID: trackID, PlayedAt: at})
	return nil
}

func (r memHistory) Recent(_ context.Context, userID int64, limit int) ([]*model.PlayHistory, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*model.PlayHistory, 0)
	for i := len(r.m.history) - 1; i >= 0 && len(out) < limit; i-- {
		if r.m.history[i].UserID == userID {
			out = append(out, r.m.history[i])
		}
	}
	return out, nil
}

// memDiscover 推荐查询的简化版：排序只看播放次数和 id
type memDiscover struct{ m *memCatalog }

func (r memDiscover) RecentReleases(_ context.Context, limit int) ([]*model.Track, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.sorted(nil, limit, func(*model.Track) bool { return true }), nil
}

func (r memDiscover) TracksByArtists(_ context.Context, artistIDs, exclude []int64, limit int) ([]*model.Track, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.sorted(exclude, limit, func(t *model.Track) bool { return slices.Contains(artistIDs, t.ArtistID) }), nil
}

func (r memDiscover) ArtistsByTrackCount(_ context.Context, exclude []int64, minTracks, limit int) ([]*model.Artist, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	counts := map[int64]int64{}
	for _, t := range r.m.tracks {
		counts[t.ArtistID]++
	}
	out := make([]*model.Artist, 0)
	for id, a := range r.m.artists {
		if counts[id] >= int64(minTracks) && !slices.Contains(exclude, id) && len(out) < limit {
			artist := *a
			artist.TrackCount = counts[id]
			out = append(out, &artist)
		}
	}
	return out, nil
}

func (r memDiscover) RecentAlbums(_ context.Context, artistIDs, exclude []int64, limit int) ([]*model.Album, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*model.Album, 0)
	for _, a := range r.m.albums {
		if (len(artistIDs) == 0 || slices.Contains(artistIDs, a.ArtistID)) && !slices.Contains(exclude, a.ID) && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memDiscover) TopPlayedArtists(_ context.Context, userID int64, limit int) ([]int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	ids := make([]int64, 0)
	for _, h := range r.m.history {
		artist := r.m.tracks[h.TrackID].ArtistID
		if h.UserID == userID && !slices.Contains(ids, artist) && len(ids) < limit {
			ids = append(ids, artist)
		}
	}
	return ids, nil
}

func (r memDiscover) Listened(_ context.Context, userID int64) (*model.Listened, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := &model.Listened{}
	for _, h := range r.m.history {
		if h.UserID != userID {
			continue
		}
		t := r.m.tracks[h.TrackID]
		out.TrackIDs = append(out.TrackIDs, t.ID)
		out.ArtistIDs = append(out.ArtistIDs, t.ArtistID)
		if t.AlbumID != nil {
			out.AlbumIDs = append(out.AlbumIDs, *t.AlbumID)
		}
	}
	return out, nil
}

func (r memDiscover) FavoriteArtists(_ context.Context, userID int64) ([]int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	ids := make([]int64, 0)
	for _, id := range r.m.favorites[userID] {
		if artist := r.m.tracks[id].ArtistID; !slices.Contains(ids, artist) {
			ids = append(ids, artist)
		}
	}
	return ids, nil
}
