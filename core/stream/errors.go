package stream

import (
	"errors"
	"fmt"

	"tunestream/storage"
)

var (
	// ErrTrackNotFound 曲库中没有该曲目，或曲目没有关联音频
	ErrTrackNotFound = errors.New("track not found")
	// ErrUnsatisfiableRange Range 语法正确但超出对象范围
	ErrUnsatisfiableRange = errors.New("range not satisfiable")
)

// IsNotFound 曲目不存在或存储中缺少音频文件，两者对外都是 404
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTrackNotFound) || errors.Is(err, storage.ErrObjectNotFound)
}

// RangeError 携带对象大小，用于生成 "Content-Range: bytes */size"
type RangeError struct {
	Header string
	Size   int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range %q not satisfiable for size %d", e.Header, e.Size)
}

func (e *RangeError) Unwrap() error {
	return ErrUnsatisfiableRange
}

// TransferError 表示响应头已发出后传输中断。此时无法再改状态码，
// HTTP 层需要中止连接而不是当作成功结束。
type TransferError struct {
	TrackID  int64
	Written  int64
	Expected int64
	// ClientGone 为 true 表示写客户端失败（断开），否则是读存储失败
	ClientGone bool
	Err        error
}

func (e *TransferError) Error() string {
	side := "storage read"
	if e.ClientGone {
		side = "client write"
	}
	return fmt.Sprintf("track %d: %s failed after %d/%d bytes: %v", e.TrackID, side, e.Written, e.Expected, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
