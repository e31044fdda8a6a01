package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// Lister 列出存储中的对象，media 命令使用
type Lister interface {
	List(ctx context.Context, prefix string) ([]MediaObject, error)
}

// BucketStats 存储统计信息
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
	TypeStats    map[string]int64 // 扩展名 -> 文件数
}

// List 列出本地目录中 key 以 prefix 开头的对象
func (s *LocalStore) List(ctx context.Context, prefix string) ([]MediaObject, error) {
	var objects []MediaObject
	err := s.Walk(prefix, func(obj MediaObject) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		objects = append(objects, obj)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("列出本地媒体失败: %w", err)
	}
	sortObjects(objects)
	return objects, nil
}

// List 递归列出存储桶中 prefix 下的对象
func (s *MinioStore) List(ctx context.Context, prefix string) ([]MediaObject, error) {
	var objects []MediaObject
	objectCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("列出对象时出错: %w", object.Err)
		}
		objects = append(objects, MediaObject{
			Key:          object.Key,
			Size:         object.Size,
			ContentType:  object.ContentType,
			ETag:         object.ETag,
			LastModified: object.LastModified,
		})
	}
	sortObjects(objects)
	return objects, nil
}

func sortObjects(objects []MediaObject) {
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
}

// Summarize 汇总对象数量、大小和扩展名分布
func Summarize(objects []MediaObject) *BucketStats {
	stats := &BucketStats{TypeStats: make(map[string]int64)}
	for _, obj := range objects {
		stats.TotalObjects++
		stats.TotalSize += obj.Size
		if obj.LastModified.After(stats.LastModified) {
			stats.LastModified = obj.LastModified
		}
		stats.TypeStats[fileExtension(obj.Key)]++
	}
	return stats
}

// fileExtension 获取文件扩展名（不含点，小写）
func fileExtension(key string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(key)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}

// FormatSize 格式化文件大小
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
