package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackCoverFallback(t *testing.T) {
	tr := &Track{ID: 5, Title: "Song"}
	assert.Equal(t, PlaceholderCover, tr.CoverURL())

	tr.Album = &Album{CoverPath: "/media/albums/a.jpg"}
	assert.Equal(t, "/media/albums/a.jpg", tr.CoverURL())

	tr.CoverPath = "/media/songs/covers/s.jpg"
	assert.Equal(t, "/media/songs/covers/s.jpg", tr.CoverURL())
}

func TestTrackCard(t *testing.T) {
	tr := &Track{ID: 42, Title: "Song", Artist: &Artist{Name: "Band"}, Duration: 201.5}
	card := tr.Card()

	assert.Equal(t, "/stream/42", card.StreamURL)
	assert.Equal(t, "Band", card.Artist)
	assert.Equal(t, float32(201.5), card.Duration)
}

func TestPlaylistVisibility(t *testing.T) {
	p := &Playlist{UserID: 1}
	assert.True(t, p.VisibleTo(1))
	assert.False(t, p.VisibleTo(2))

	p.IsPublic = true
	assert.True(t, p.VisibleTo(2))
}
