package repository

import (
	"context"
	"testing"

	"tunestream/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestTrackRepository_GetByIDMissReturnsNil(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormTrackRepository(gdb)

	mock.ExpectQuery("SELECT \\* FROM `tracks` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	track, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, track)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrackRepository_IncrementPlays(t *testing.T) {
	t.Run("unknown track", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewGormTrackRepository(gdb)

		mock.ExpectExec("UPDATE `tracks` SET `plays`=plays \\+ \\?").
			WillReturnResult(sqlmock.NewResult(0, 0))

		plays, found, err := repo.IncrementPlays(context.Background(), 9)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Zero(t, plays)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing track", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		repo := NewGormTrackRepository(gdb)

		mock.ExpectExec("UPDATE `tracks` SET `plays`=plays \\+ \\?").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT plays FROM `tracks`").
			WillReturnRows(sqlmock.NewRows([]string{"plays"}).AddRow(12))

		plays, found, err := repo.IncrementPlays(context.Background(), 9)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(12), plays)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFavoriteRepository_ToggleConcurrentInsert(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormFavoriteRepository(gdb)

	mock.ExpectQuery("SELECT \\* FROM `favorites`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "track_id"}))
	mock.ExpectExec("INSERT INTO `favorites`").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	added, err := repo.Toggle(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_ToggleRemovesExisting(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormFavoriteRepository(gdb)

	mock.ExpectQuery("SELECT \\* FROM `favorites`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "track_id"}).AddRow(3, 1, 2))
	mock.ExpectExec("DELETE FROM `favorites`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	added, err := repo.Toggle(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%abc%", likePattern("  ABC "))
	assert.Equal(t, `%100\%\_off%`, likePattern("100%_off"))
}

func TestPlaylistRepository_Update(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewGormPlaylistRepository(gdb)

	mock.ExpectExec("UPDATE `playlists` SET .* WHERE `id` = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &model.Playlist{ID: 5, Name: "Renamed", IsPublic: true})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
