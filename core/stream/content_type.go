package stream

import (
	"mime"
	"path"
	"strings"
)

// DefaultContentType 无法推断类型时使用
const DefaultContentType = "audio/mpeg"

// 系统 mime 表在不同平台上不一致，常见音频格式固定下来
var audioContentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/ogg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".weba": "audio/webm",
}

// ResolveContentType 依次使用：曲库声明的类型、文件扩展名、存储返回的类型，
// 都不可用时返回 audio/mpeg。
func ResolveContentType(declared, key, stored string) string {
	if ct := validMediaType(declared); ct != "" {
		return ct
	}
	if ct := ContentTypeByExtension(key); ct != "" {
		return ct
	}
	if ct := validMediaType(stored); ct != "" {
		return ct
	}
	return DefaultContentType
}

// ContentTypeByExtension 按扩展名查找，找不到返回空串
func ContentTypeByExtension(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return ""
	}
	if ct, ok := audioContentTypes[ext]; ok {
		return ct
	}
	return mime.TypeByExtension(ext)
}

func validMediaType(ct string) string {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return ""
	}
	if _, _, err := mime.ParseMediaType(ct); err != nil {
		return ""
	}
	return ct
}
