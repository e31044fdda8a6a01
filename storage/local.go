package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tunestream/logger"

	"github.com/fsnotify/fsnotify"
)

// LocalStore 把媒体文件保存在本地目录下，key 为相对路径（使用 /）
type LocalStore struct {
	root string
}

// NewLocalStore 创建本地存储，目录不存在时自动创建
func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media dir %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create media dir %s: %w", abs, err)
	}
	return &LocalStore{root: abs}, nil
}

// Root 返回存储根目录
func (s *LocalStore) Root() string {
	return s.root
}

// NormalizeKey 去掉前导 /，清理 . 和多余分隔符，拒绝越出根目录的 key。
// 监听器上报的 key 和 Stat 返回的 key 都是这个形式。
func (s *LocalStore) NormalizeKey(key string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrObjectNotFound
	}
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid media key %q: %w", key, ErrObjectNotFound)
	}
	return filepath.ToSlash(cleaned), nil
}

// path 返回规范化的 key 和它在根目录下的文件路径
func (s *LocalStore) path(key string) (string, string, error) {
	normalized, err := s.NormalizeKey(key)
	if err != nil {
		return "", "", err
	}
	return normalized, filepath.Join(s.root, filepath.FromSlash(normalized)), nil
}

// Stat 返回对象大小和修改时间
func (s *LocalStore) Stat(ctx context.Context, key string) (*MediaObject, error) {
	normalized, p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("stat %s: is a directory: %w", key, ErrObjectNotFound)
	}
	return &MediaObject{
		Key:          normalized,
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}, nil
}

// OpenRange 打开 [start, end] 区间
func (s *LocalStore) OpenRange(ctx context.Context, obj *MediaObject, start, end int64) (io.ReadCloser, error) {
	if start < 0 || end < start {
		return nil, fmt.Errorf("invalid range %d-%d for %s", start, end, obj.Key)
	}
	f, err := s.open(obj.Key)
	if err != nil {
		return nil, err
	}
	return &sectionReadCloser{
		SectionReader: io.NewSectionReader(f, start, end-start+1),
		f:             f,
	}, nil
}

// OpenFull 打开整个文件
func (s *LocalStore) OpenFull(ctx context.Context, obj *MediaObject) (io.ReadCloser, error) {
	return s.open(obj.Key)
}

func (s *LocalStore) open(key string) (*os.File, error) {
	_, p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return f, nil
}

type sectionReadCloser struct {
	*io.SectionReader
	f *os.File
}

func (r *sectionReadCloser) Close() error {
	return r.f.Close()
}

// Walk 遍历所有对象，供 media 命令使用
func (s *LocalStore) Walk(prefix string, fn func(obj MediaObject) error) error {
	return filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return fn(MediaObject{Key: key, Size: info.Size(), LastModified: info.ModTime()})
	})
}

// Watch 监听根目录（含子目录）的写入、删除、重命名事件，
// 对受影响的 key 调用 onChange，直到 ctx 结束。
func (s *LocalStore) Watch(ctx context.Context, onChange func(key string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	err = filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return fmt.Errorf("watch media dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				s.handleEvent(watcher, event, onChange)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("媒体目录监听出错", logger.ErrorField(err))
			}
		}
	}()

	logger.Info("开始监听媒体目录", logger.String("root", s.root))
	return nil
}

func (s *LocalStore) handleEvent(watcher *fsnotify.Watcher, event fsnotify.Event, onChange func(key string)) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := watcher.Add(event.Name); err != nil {
				logger.Warn("添加子目录监听失败", logger.String("dir", event.Name), logger.ErrorField(err))
			}
			return
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Create) {
		return
	}
	rel, err := filepath.Rel(s.root, event.Name)
	if err != nil {
		return
	}
	key := filepath.ToSlash(rel)
	logger.Debug("媒体文件变化", logger.String("key", key), logger.String("op", event.Op.String()))
	onChange(key)
}
