package stream

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ByteRange 是闭区间 [Start, End]
type ByteRange struct {
	Start int64
	End   int64
}

// Length 返回区间字节数
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange 生成 206 响应的 Content-Range 值
func (r ByteRange) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// UnsatisfiedContentRange 生成 416 响应的 Content-Range 值
func UnsatisfiedContentRange(size int64) string {
	return fmt.Sprintf("bytes */%d", size)
}

// ParseRange 解析 Range 请求头。
//
// 只接受单段 "bytes=<start>-[<end>]"。头为空、后缀形式 "bytes=-500"、多段、
// 其他单位或任何不符合语法的值都视为没有 Range，返回 nil, nil，由调用方
// 返回完整内容。end 缺省或越过末尾时截断到 size-1；截断后 start 越界或
// start > end 返回 ErrUnsatisfiableRange。
func ParseRange(header string, size int64) (*ByteRange, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}

	unit, rangeSet, ok := strings.Cut(header, "=")
	if !ok || !strings.EqualFold(strings.TrimSpace(unit), "bytes") {
		return nil, nil
	}
	rangeSet = strings.TrimSpace(rangeSet)
	if strings.Contains(rangeSet, ",") {
		return nil, nil
	}

	startText, endText, ok := strings.Cut(rangeSet, "-")
	if !ok || !isDigits(startText) {
		return nil, nil
	}
	if endText != "" && !isDigits(endText) {
		return nil, nil
	}

	if size < 0 {
		size = 0
	}
	last := size - 1

	start, err := strconv.ParseInt(startText, 10, 64)
	if err != nil {
		// 只可能是溢出，起点必然超出对象大小
		return nil, ErrUnsatisfiableRange
	}

	end := last
	if endText != "" {
		e, err := strconv.ParseInt(endText, 10, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, nil
		}
		if err == nil && e < last {
			end = e
		}
	}

	if start >= size || start > end {
		return nil, ErrUnsatisfiableRange
	}
	return &ByteRange{Start: start, End: end}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
