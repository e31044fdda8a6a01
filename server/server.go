package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tunestream/cache"
	"tunestream/config"
	"tunestream/core/auth"
	"tunestream/db"
	"tunestream/logger"
	"tunestream/repository"
	"tunestream/storage"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// NewRouter 注册所有路由
func NewRouter(h *APIHandler) http.Handler {
	router := mux.NewRouter()
	router.Use(routeMiddleware)

	// 音频流：公开访问，方法检查在 handler 内完成
	router.HandleFunc("/stream/{track_id:[0-9]+}", h.StreamHandler)

	api := router.PathPrefix("/api").Subrouter()

	// 曲库
	api.HandleFunc("/home", h.OptionalAuth(h.HomeHandler)).Methods(http.MethodGet)
	api.HandleFunc("/tracks", h.GetTracksHandler).Methods(http.MethodGet)
	api.HandleFunc("/tracks/random", h.RandomTrackHandler).Methods(http.MethodGet)
	api.HandleFunc("/tracks/{id:[0-9]+}", h.GetTrackHandler).Methods(http.MethodGet)
	api.HandleFunc("/tracks/{id:[0-9]+}/similar", h.SimilarTrackHandler).Methods(http.MethodGet)
	api.HandleFunc("/tracks/{id:[0-9]+}/play", h.OptionalAuth(h.RecordPlayHandler)).Methods(http.MethodPost)
	api.HandleFunc("/search", h.SearchHandler).Methods(http.MethodGet)
	api.HandleFunc("/artists/{id:[0-9]+}", h.GetArtistHandler).Methods(http.MethodGet)
	api.HandleFunc("/albums/{id:[0-9]+}", h.GetAlbumHandler).Methods(http.MethodGet)

	// 用户认证相关的API端点
	api.HandleFunc("/auth/login", h.LoginHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", h.RegisterHandler).Methods(http.MethodPost)

	// 需要登录
	api.HandleFunc("/tracks/{id:[0-9]+}/favorite", h.AuthMiddleware(h.ToggleFavoriteHandler)).Methods(http.MethodPost)
	api.HandleFunc("/favorites", h.AuthMiddleware(h.ListFavoritesHandler)).Methods(http.MethodGet)
	api.HandleFunc("/favorites/ids", h.AuthMiddleware(h.FavoriteIDsHandler)).Methods(http.MethodGet)
	api.HandleFunc("/history", h.AuthMiddleware(h.HistoryHandler)).Methods(http.MethodGet)
	api.HandleFunc("/playlists", h.AuthMiddleware(h.ListPlaylistsHandler)).Methods(http.MethodGet)
	api.HandleFunc("/playlists", h.AuthMiddleware(h.CreatePlaylistHandler)).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.AuthMiddleware(h.GetPlaylistHandler)).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.AuthMiddleware(h.UpdatePlaylistHandler)).Methods(http.MethodPatch)
	api.HandleFunc("/playlists/{id:[0-9]+}/tracks", h.AuthMiddleware(h.AddPlaylistTrackHandler)).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id:[0-9]+}/tracks/{track_id:[0-9]+}", h.AuthMiddleware(h.RemovePlaylistTrackHandler)).Methods(http.MethodDelete)

	router.HandleFunc("/ws/plays", h.AuthMiddleware(h.PlayEventsHandler)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.PathPrefix("/static/").Handler(NewStaticHandler(h.store)).Methods(http.MethodGet)

	return corsMiddleware(loggingMiddleware(router))
}

// NewGormRepositories 基于同一个连接创建所有仓库
func NewGormRepositories(gdb *gorm.DB) Repositories {
	return Repositories{
		Tracks:    repository.NewGormTrackRepository(gdb),
		Library:   repository.NewGormLibraryRepository(gdb),
		Users:     repository.NewGormUserRepository(gdb),
		Favorites: repository.NewGormFavoriteRepository(gdb),
		Playlists: repository.NewGormPlaylistRepository(gdb),
		History:   repository.NewGormPlayHistoryRepository(gdb),
		Discover:  repository.NewGormDiscoverRepository(gdb),
	}
}

// openStore 创建媒体存储；Redis 可用时加一层元数据缓存，
// 本地目录开启监听后文件变化会让缓存失效
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := cache.ConnectRedis(cfg)
	if err != nil {
		logger.Warn("Redis 不可用，媒体元数据不做缓存", logger.ErrorField(err))
		return store, nil
	}
	logger.Info("Redis连接成功", logger.String("addr", cfg.RedisAddr()))
	cached := cache.NewCachedStore(store, cache.NewMediaStatCache(redisClient, cfg.StatCacheTTL))

	if local, ok := store.(*storage.LocalStore); ok && cfg.MediaWatch {
		if err := local.Watch(ctx, cached.Invalidate); err != nil {
			logger.Warn("媒体目录监听启动失败", logger.ErrorField(err))
		}
	}
	return cached, nil
}

// Start 初始化依赖并启动 HTTP 服务，收到 SIGINT/SIGTERM 后优雅退出
func Start(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.ConnectGormDB(cfg)
	if err != nil {
		return err
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrate(gdb); err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open media store: %w", err)
	}
	defer cache.CloseRedis()

	handler := NewAPIHandler(NewGormRepositories(gdb), store, auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTokenTTL))

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           NewRouter(handler),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("服务器启动",
			logger.String("addr", cfg.ServerAddr),
			logger.String("mediaBackend", cfg.MediaBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("正在关闭服务器...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("服务器已停止")
	return nil
}
