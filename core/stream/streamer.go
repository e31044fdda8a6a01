package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"tunestream/storage"
)

// State 单次流式请求所处的阶段
type State int

const (
	StateReceived State = iota
	StateResolved
	StateNoRange
	StateRangeParsed
	StateTransferring
	StateCompleted
	StateAborted
	// StateRejected 在传输开始前就结束（404、416、存储错误）
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateResolved:
		return "resolved"
	case StateNoRange:
		return "no_range"
	case StateRangeParsed:
		return "range_parsed"
	case StateTransferring:
		return "transferring"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// MediaRef 曲库中一条曲目对应的存储引用
type MediaRef struct {
	Key         string
	ContentType string // 曲库声明的类型，可为空
}

// Catalog 只读的曲库查询，曲目不存在时返回 nil, nil
type Catalog interface {
	LookupMedia(ctx context.Context, trackID int64) (*MediaRef, error)
}

// Media 解析完成的媒体对象
type Media struct {
	Object      *storage.MediaObject
	ContentType string
}

// Result 记录一次请求的结果，供日志和指标使用
type Result struct {
	TrackID  int64
	Key      string
	State    State
	Status   int
	Size     int64
	Range    *ByteRange
	Expected int64
	Written  int64
}

const copyBufferSize = 32 * 1024

// Streamer 根据曲目 id 和 Range 头输出音频。无内部可变状态，可并发使用。
type Streamer struct {
	catalog Catalog
	store   storage.Store
}

// NewStreamer 创建 Streamer
func NewStreamer(catalog Catalog, store storage.Store) *Streamer {
	return &Streamer{catalog: catalog, store: store}
}

// Resolve 查曲库再查存储。曲库未命中时不会访问存储。
func (s *Streamer) Resolve(ctx context.Context, trackID int64) (*Media, error) {
	ref, err := s.catalog.LookupMedia(ctx, trackID)
	if err != nil {
		return nil, fmt.Errorf("lookup track %d: %w", trackID, err)
	}
	if ref == nil || ref.Key == "" {
		return nil, fmt.Errorf("track %d: %w", trackID, ErrTrackNotFound)
	}

	obj, err := s.store.Stat(ctx, ref.Key)
	if err != nil {
		return nil, fmt.Errorf("track %d audio file: %w", trackID, err)
	}

	return &Media{
		Object:      obj,
		ContentType: ResolveContentType(ref.ContentType, ref.Key, obj.ContentType),
	}, nil
}

// Serve 处理一次 GET /stream/{id}。
//
// 返回错误时：未写任何响应头的错误（未找到、416、存储错误）由调用方映射成
// 状态码；*TransferError 表示响应头已发出，调用方应中止连接。
func (s *Streamer) Serve(w http.ResponseWriter, r *http.Request, trackID int64) (*Result, error) {
	ctx := r.Context()
	res := &Result{TrackID: trackID, State: StateReceived}

	media, err := s.Resolve(ctx, trackID)
	if err != nil {
		res.State = StateRejected
		return res, err
	}
	size := media.Object.Size
	res.Key = media.Object.Key
	res.Size = size
	res.State = StateResolved

	rangeHeader := r.Header.Get("Range")
	br, err := ParseRange(rangeHeader, size)
	if err != nil {
		res.State = StateRejected
		return res, &RangeError{Header: rangeHeader, Size: size}
	}

	var (
		body   io.ReadCloser
		status int
		length int64
	)
	if br == nil {
		res.State = StateNoRange
		status, length = http.StatusOK, size
		body, err = s.store.OpenFull(ctx, media.Object)
	} else {
		res.State = StateRangeParsed
		res.Range = br
		status, length = http.StatusPartialContent, br.Length()
		body, err = s.store.OpenRange(ctx, media.Object, br.Start, br.End)
	}
	if err != nil {
		res.State = StateRejected
		return res, fmt.Errorf("open track %d: %w", trackID, err)
	}
	defer body.Close()

	h := w.Header()
	h.Set("Content-Type", media.ContentType)
	h.Set("Content-Length", strconv.FormatInt(length, 10))
	h.Set("Accept-Ranges", "bytes")
	if br != nil {
		h.Set("Content-Range", br.ContentRange(size))
	}
	w.WriteHeader(status)

	res.State = StateTransferring
	res.Status = status
	res.Expected = length

	cw := &countingWriter{w: w}
	_, err = io.CopyBuffer(cw, io.LimitReader(&contextReader{ctx: ctx, r: body}, length), make([]byte, copyBufferSize))
	res.Written = cw.n
	if err == nil && cw.n < length {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		res.State = StateAborted
		return res, &TransferError{
			TrackID:    trackID,
			Written:    cw.n,
			Expected:   length,
			ClientGone: cw.err != nil || errors.Is(err, context.Canceled),
			Err:        err,
		}
	}

	res.State = StateCompleted
	return res, nil
}

// contextReader 在每次读之前检查 ctx，客户端断开后尽快停止读存储
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// countingWriter 记录已写字节数和写错误
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	if err != nil {
		c.err = err
	}
	return n, err
}
