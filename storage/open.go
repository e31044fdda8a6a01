package storage

import (
	"context"

	"tunestream/config"
	"tunestream/logger"
)

// Open 按配置创建媒体存储后端
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.MediaBackend == config.MediaBackendMinio {
		return NewMinioStore(ctx, cfg)
	}
	store, err := NewLocalStore(cfg.MediaDir)
	if err != nil {
		return nil, err
	}
	logger.Info("使用本地媒体目录", logger.String("root", store.Root()))
	return store, nil
}
