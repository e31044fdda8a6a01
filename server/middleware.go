package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"tunestream/core/auth"
	"tunestream/logger"
	"tunestream/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	usernameKey  contextKey = "username"
	requestIDKey contextKey = "requestID"
	routeKey     contextKey = "route"
)

// RequestIDHeader 请求 id 响应头
const RequestIDHeader = "X-Request-ID"

// corsMiddleware 允许前端跨域播放，暴露 Range 相关的响应头
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges, "+RequestIDHeader)
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder 记录状态码和写出的字节数
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(p []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(p)
	s.bytes += int64(n)
	return n, err
}

// Hijack websocket 升级需要
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// matchedRoute 由 routeMiddleware 在 mux 匹配后填写
type matchedRoute struct {
	template string
}

// loggingMiddleware 生成请求 id 并记录访问日志。包在 router 外层，
// 未匹配的路径和 mux 自己返回的 405 也有日志和指标。
// 流传输中断时 handler 会 panic(http.ErrAbortHandler)，这里照常记日志后继续向上抛。
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		rec := &statusRecorder{ResponseWriter: w}
		route := &matchedRoute{}
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = context.WithValue(ctx, routeKey, route)

		aborted := true
		defer func() {
			tpl := route.template
			if tpl == "" {
				tpl = "unmatched"
			}
			if !strings.HasPrefix(tpl, "/stream/") {
				metrics.ObserveHTTP(tpl, r.Method, rec.status)
			}
			logger.Info("HTTP请求",
				logger.String("requestId", requestID),
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.String("route", tpl),
				logger.Int("status", rec.status),
				logger.Int64("bytes", rec.bytes),
				logger.Duration("duration", time.Since(start)),
				logger.Bool("aborted", aborted))
		}()

		next.ServeHTTP(rec, r.WithContext(ctx))
		aborted = false
	})
}

// routeMiddleware 注册在 mux 上，只对匹配成功的路由执行。
// 记下路由模板，避免指标标签随 id 膨胀。
func routeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if matched, ok := r.Context().Value(routeKey).(*matchedRoute); ok {
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					matched.template = tpl
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequestIDFromContext 返回当前请求 id
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// bearerToken 优先取 Authorization 头，websocket 连接使用 token 查询参数
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func (h *APIHandler) authenticate(r *http.Request) (*auth.Claims, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, auth.ErrInvalidToken
	}
	return h.tokens.ParseToken(token)
}

func withUser(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, userIDKey, claims.UserID)
	return context.WithValue(ctx, usernameKey, claims.Username)
}

// AuthMiddleware 要求有效的 JWT
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), claims)))
	}
}

// OptionalAuth 有有效 token 时注入用户，没有也放行
func (h *APIHandler) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claims, err := h.authenticate(r); err == nil {
			r = r.WithContext(withUser(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	}
}

// GetUserIDFromContext 未登录时返回 0, false
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// GetUsernameFromContext 返回当前用户名
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok
}
