package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"tunestream/config"
	"tunestream/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore 把音频对象保存在 MinIO 存储桶中，key 即对象名
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioClient 按配置创建 MinIO 客户端
func NewMinioClient(cfg *config.Config) (*minio.Client, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}
	return client, nil
}

// NewMinioStore 连接 MinIO 并确认存储桶存在，不存在时创建
func NewMinioStore(ctx context.Context, cfg *config.Config) (*MinioStore, error) {
	logger.Info("正在连接 MinIO 服务器",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("bucket", cfg.MinioBucket))

	client, err := NewMinioClient(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("检查存储桶失败: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return nil, fmt.Errorf("创建存储桶失败: %w", err)
		}
		logger.Info("成功创建存储桶", logger.String("bucket", cfg.MinioBucket))
	}

	return NewMinioStoreWithClient(client, cfg.MinioBucket), nil
}

// NewMinioStoreWithClient 使用已有客户端
func NewMinioStoreWithClient(client *minio.Client, bucket string) *MinioStore {
	return &MinioStore{client: client, bucket: bucket}
}

// Client 返回底层客户端
func (s *MinioStore) Client() *minio.Client {
	return s.client
}

// Bucket 返回存储桶名称
func (s *MinioStore) Bucket() string {
	return s.bucket
}

// Stat 通过 StatObject 获取对象元数据
func (s *MinioStore) Stat(ctx context.Context, key string) (*MediaObject, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("stat %s: %w", key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	return &MediaObject{
		Key:          key,
		Size:         info.Size,
		ContentType:  minioContentType(info.ContentType),
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

// OpenRange 使用 HTTP Range 从 MinIO 读取 [start, end]
func (s *MinioStore) OpenRange(ctx context.Context, obj *MediaObject, start, end int64) (io.ReadCloser, error) {
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(start, end); err != nil {
		return nil, fmt.Errorf("set range %d-%d for %s: %w", start, end, obj.Key, err)
	}
	return s.get(ctx, obj, opts)
}

// OpenFull 读取整个对象
func (s *MinioStore) OpenFull(ctx context.Context, obj *MediaObject) (io.ReadCloser, error) {
	return s.get(ctx, obj, minio.GetObjectOptions{})
}

func (s *MinioStore) get(ctx context.Context, obj *MediaObject, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	// 对象不可变，用 ETag 保证读到的是 Stat 时的同一版本
	if obj.ETag != "" {
		if err := opts.SetMatchETag(obj.ETag); err != nil {
			return nil, err
		}
	}
	object, err := s.client.GetObject(ctx, s.bucket, obj.Key, opts)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("get %s: %w", obj.Key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", obj.Key, err)
	}
	return object, nil
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}

// minioContentType 忽略 MinIO 的默认类型，交给扩展名推断
func minioContentType(ct string) string {
	if ct == "application/octet-stream" || ct == "binary/octet-stream" {
		return ""
	}
	return ct
}
