package server

import (
	"net/http"
	"time"

	"tunestream/logger"
	"tunestream/metrics"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// PlayEventsHandler GET /ws/plays?token=，把当前用户的播放事件推给所有设备
func (h *APIHandler) PlayEventsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket 升级失败", logger.ErrorField(err))
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(userID)
	defer sub.Close()
	metrics.PlaySubscribers.Inc()
	defer metrics.PlaySubscribers.Dec()

	logger.Debug("播放事件订阅建立", logger.Int64("userId", userID))

	// 读循环只处理 pong 和关闭帧
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			logger.Debug("播放事件订阅关闭", logger.Int64("userId", userID))
			return
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				logger.Debug("推送播放事件失败", logger.Int64("userId", userID), logger.ErrorField(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
