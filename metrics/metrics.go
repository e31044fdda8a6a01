// Package metrics 注册 Prometheus 指标，通过 /metrics 暴露
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tunestream"

var (
	// StreamRequests 按状态码统计流请求
	StreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "requests_total",
		Help:      "Audio stream requests by response status.",
	}, []string{"status"})

	// StreamBytes 实际写给客户端的字节数
	StreamBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "bytes_sent_total",
		Help:      "Audio bytes written to clients.",
	})

	// StreamAborts 传输中断，reason 为 client 或 storage
	StreamAborts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "aborts_total",
		Help:      "Transfers aborted after headers were sent.",
	}, []string{"reason"})

	// StreamDuration 从请求到传输结束的耗时
	StreamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "duration_seconds",
		Help:      "Time spent serving a stream request.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
	})

	// HTTPRequests API 请求计数
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"route", "method", "status"})

	// StatCacheLookups 媒体元数据缓存命中情况，result 为 hit/miss/error
	StatCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "stat_lookups_total",
		Help:      "Media stat cache lookups by result.",
	}, []string{"result"})

	// PlaySubscribers 当前 websocket 订阅数
	PlaySubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ws",
		Name:      "play_subscribers",
		Help:      "Open play event websocket connections.",
	})
)

// ObserveStream 记录一次流请求
func ObserveStream(status int, written int64, started time.Time) {
	StreamRequests.WithLabelValues(strconv.Itoa(status)).Inc()
	if written > 0 {
		StreamBytes.Add(float64(written))
	}
	StreamDuration.Observe(time.Since(started).Seconds())
}

// ObserveAbort 记录一次中断
func ObserveAbort(clientGone bool) {
	reason := "storage"
	if clientGone {
		reason = "client"
	}
	StreamAborts.WithLabelValues(reason).Inc()
}

// ObserveHTTP 记录 API 请求
func ObserveHTTP(route, method string, status int) {
	if status == 0 {
		status = http.StatusOK
	}
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}
