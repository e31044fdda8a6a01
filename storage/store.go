package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound 表示存储中不存在该对象
var ErrObjectNotFound = errors.New("media object not found")

// MediaObject 描述一个已写入存储的音频对象，写入后不可变
type MediaObject struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

// Store 是媒体存储的抽象，本地文件系统和 MinIO 各有一个实现。
// OpenRange 的 start、end 均为闭区间，调用方保证 0 <= start <= end < Size。
// 返回的 ReadCloser 必须由调用方关闭。
type Store interface {
	Stat(ctx context.Context, key string) (*MediaObject, error)
	OpenRange(ctx context.Context, obj *MediaObject, start, end int64) (io.ReadCloser, error)
	OpenFull(ctx context.Context, obj *MediaObject) (io.ReadCloser, error)
}

// KeyNormalizer 由 key 有多种写法的存储实现（本地文件系统），
// 缓存层用它把同一个对象映射到同一个缓存 key。
type KeyNormalizer interface {
	NormalizeKey(key string) (string, error)
}
