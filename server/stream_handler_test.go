package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tunestream/core/auth"
	"tunestream/model"
	"tunestream/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	catalog *memCatalog
	handler *APIHandler
	router  http.Handler
	audio   []byte
}

// newTestEnv 本地目录中放一个 1000 字节的音频文件，曲库中：
// 1 -> songs/one.mp3，2 -> 缺失的文件，3 -> 同一文件但声明为 flac
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	audio := make([]byte, 1000)
	for i := range audio {
		audio[i] = byte(i % 253)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "songs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "songs", "one.mp3"), audio, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "cover.png"), []byte("png"), 0644))

	store, err := storage.NewLocalStore(root)
	require.NoError(t, err)
	return newTestEnvWithStore(t, store, audio)
}

func newTestEnvWithStore(t *testing.T, store storage.Store, audio []byte) *testEnv {
	t.Helper()
	catalog := newMemCatalog()
	album := int64(100)
	catalog.artists[10] = &model.Artist{ID: 10, Name: "The Band"}
	catalog.albums[100] = &model.Album{ID: 100, Title: "First Album", ArtistID: 10}
	catalog.tracks[1] = &model.Track{ID: 1, Title: "Opening", ArtistID: 10, AlbumID: &album, AudioPath: "songs/one.mp3", Plays: 10}
	catalog.tracks[2] = &model.Track{ID: 2, Title: "Ghost", ArtistID: 10, AudioPath: "songs/missing.mp3", Plays: 1}
	catalog.tracks[3] = &model.Track{ID: 3, Title: "Lossless", ArtistID: 10, AlbumID: &album, AudioPath: "songs/one.mp3", ContentType: "audio/flac", Plays: 5}

	h := NewAPIHandler(catalog.repos(), store, auth.NewTokenManager("test-secret", time.Hour))
	return &testEnv{catalog: catalog, handler: h, router: NewRouter(h), audio: audio}
}

func (e *testEnv) do(t *testing.T, method, target, rangeHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestStream_FullContent(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/stream/1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1000", rec.Header().Get("Content-Length"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Range"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, env.audio, rec.Body.Bytes())
}

func TestStream_PartialContent(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		header       string
		contentRange string
		body         []byte
	}{
		{"bytes=0-499", "bytes 0-499/1000", env.audio[:500]},
		{"bytes=950-", "bytes 950-999/1000", env.audio[950:]},
		{"bytes=999-", "bytes 999-999/1000", env.audio[999:]},
		{"bytes=990-5000", "bytes 990-999/1000", env.audio[990:]},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/stream/1", tt.header)

			assert.Equal(t, http.StatusPartialContent, rec.Code)
			assert.Equal(t, tt.contentRange, rec.Header().Get("Content-Range"))
			assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
			assert.Equal(t, tt.body, rec.Body.Bytes())
		})
	}
}

func TestStream_DeclaredContentType(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/stream/3", "bytes=0-9")
	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "audio/flac", rec.Header().Get("Content-Type"))
}

func TestStream_UnsatisfiableRange(t *testing.T) {
	env := newTestEnv(t)

	for _, header := range []string{"bytes=2000-3000", "bytes=1000-", "bytes=500-400"} {
		rec := env.do(t, http.MethodGet, "/stream/1", header)

		assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code, header)
		assert.Equal(t, "bytes */1000", rec.Header().Get("Content-Range"), header)
		assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"), header)
		assert.Zero(t, rec.Body.Len(), header)
	}
}

func TestStream_MalformedRangeFallsBackToFull(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/stream/1", "bytes=0-1,5-9")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, env.audio, rec.Body.Bytes())
}

func TestStream_NotFound(t *testing.T) {
	env := newTestEnv(t)

	unknown := env.do(t, http.MethodGet, "/stream/999", "bytes=0-10")
	assert.Equal(t, http.StatusNotFound, unknown.Code)
	assert.Contains(t, unknown.Body.String(), "Track not found")
	assert.Empty(t, unknown.Header().Get("Content-Range"))

	missing := env.do(t, http.MethodGet, "/stream/2", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Contains(t, missing.Body.String(), "Audio file not found")

	notNumeric := env.do(t, http.MethodGet, "/stream/abc", "")
	assert.Equal(t, http.StatusNotFound, notNumeric.Code)
}

func TestStream_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/stream/1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestStream_CORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodOptions, "/stream/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Range")
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Range")
}

// brokenStore 读到 failAfter 字节后返回错误
type brokenStore struct {
	storage.Store
	failAfter int64
}

func (s brokenStore) OpenFull(ctx context.Context, obj *storage.MediaObject) (io.ReadCloser, error) {
	rc, err := s.Store.OpenFull(ctx, obj)
	if err != nil {
		return nil, err
	}
	return struct {
		io.Reader
		io.Closer
	}{io.MultiReader(io.LimitReader(rc, s.failAfter), failingReader{}), rc}, nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read: input/output error") }

func TestStream_StorageFailureAbortsConnection(t *testing.T) {
	root := t.TempDir()
	audio := make([]byte, 1000)
	require.NoError(t, os.WriteFile(filepath.Join(root, "one.mp3"), audio, 0644))
	local, err := storage.NewLocalStore(root)
	require.NoError(t, err)

	env := newTestEnvWithStore(t, brokenStore{Store: local, failAfter: 100}, audio)
	env.catalog.tracks[1].AudioPath = "one.mp3"

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stream/1")
	if err == nil {
		defer resp.Body.Close()
		var body []byte
		body, err = io.ReadAll(resp.Body)
		assert.Less(t, len(body), 1000, "the client must not receive a complete body")
	}
	assert.Error(t, err, "an aborted transfer must surface as a broken response")
}
