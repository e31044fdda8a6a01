package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverRepository_TopPlayedArtists(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormDiscoverRepository(gdb)

	mock.ExpectQuery("SELECT tracks.artist_id FROM `play_histories` JOIN tracks ON tracks.id = play_histories.track_id " +
		"WHERE play_histories.user_id = \\? GROUP BY .* ORDER BY COUNT\\(play_histories.id\\) DESC").
		WillReturnRows(sqlmock.NewRows([]string{"artist_id"}).AddRow(20).AddRow(10))

	ids, err := repo.TopPlayedArtists(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 10}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscoverRepository_ArtistsByTrackCount(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormDiscoverRepository(gdb)

	mock.ExpectQuery("SELECT artists.\\*, COUNT\\(tracks.id\\) AS track_count FROM `artists` " +
		"LEFT JOIN tracks ON tracks.artist_id = artists.id WHERE artists.id NOT IN \\(\\?,\\?\\) " +
		"GROUP BY .* HAVING COUNT\\(tracks.id\\) >= \\? ORDER BY track_count DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "track_count"}).
			AddRow(3, "Trio", 5).
			AddRow(4, "Duo", 2))

	artists, err := repo.ArtistsByTrackCount(context.Background(), []int64{1, 2}, 2, 6)
	require.NoError(t, err)
	require.Len(t, artists, 2)
	assert.Equal(t, "Trio", artists[0].Name)
	assert.Equal(t, int64(5), artists[0].TrackCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscoverRepository_Listened(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormDiscoverRepository(gdb)

	mock.ExpectQuery("SELECT DISTINCT .*track_id.* FROM `play_histories` JOIN tracks").
		WillReturnRows(sqlmock.NewRows([]string{"track_id"}).AddRow(1).AddRow(6))
	mock.ExpectQuery("SELECT DISTINCT .*artist_id.* FROM `play_histories` JOIN tracks").
		WillReturnRows(sqlmock.NewRows([]string{"artist_id"}).AddRow(10))
	mock.ExpectQuery("SELECT DISTINCT .*album_id.* FROM `play_histories` JOIN tracks .*tracks.album_id IS NOT NULL").
		WillReturnRows(sqlmock.NewRows([]string{"album_id"}))

	listened, err := repo.Listened(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 6}, listened.TrackIDs)
	assert.Equal(t, []int64{10}, listened.ArtistIDs)
	assert.Empty(t, listened.AlbumIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscoverRepository_FavoriteArtists(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormDiscoverRepository(gdb)

	mock.ExpectQuery("SELECT DISTINCT .*artist_id.* FROM `favorites` JOIN tracks ON tracks.id = favorites.track_id WHERE favorites.user_id = \\?").
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"artist_id"}).AddRow(10).AddRow(40))

	ids, err := repo.FavoriteArtists(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 40}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscoverRepository_TracksByArtistsWithoutArtists(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormDiscoverRepository(gdb)

	tracks, err := repo.TracksByArtists(context.Background(), nil, []int64{1}, 6)
	require.NoError(t, err)
	assert.NotNil(t, tracks)
	assert.Empty(t, tracks)
	assert.NoError(t, mock.ExpectationsWereMet(), "no query without artists")
}
