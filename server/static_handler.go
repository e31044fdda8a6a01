package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"tunestream/core/stream"
	"tunestream/logger"
	"tunestream/storage"
)

// StaticHandler 从媒体存储读取封面等静态对象，/static/{key}
type StaticHandler struct {
	store storage.Store
}

// NewStaticHandler 创建 StaticHandler 实例
func NewStaticHandler(store storage.Store) *StaticHandler {
	return &StaticHandler{store: store}
}

// ServeHTTP 实现 http.Handler 接口
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/static/")
	if key == "" || strings.HasSuffix(key, "/") {
		http.NotFound(w, r)
		return
	}

	obj, err := h.store.Stat(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		logger.Error("读取静态文件失败", logger.String("key", key), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	body, err := h.store.OpenFull(r.Context(), obj)
	if err != nil {
		logger.Error("打开静态文件失败", logger.String("key", key), logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = detectContentType(key)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	if obj.ETag != "" {
		w.Header().Set("ETag", `"`+strings.Trim(obj.ETag, `"`)+`"`)
	}

	if _, err := io.Copy(w, body); err != nil {
		logger.Warn("发送静态文件中断", logger.String("key", key), logger.ErrorField(err))
	}
}

// detectContentType 根据扩展名检测内容类型
func detectContentType(key string) string {
	if ct := stream.ContentTypeByExtension(key); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
