package play

import (
	"sync"

	"tunestream/logger"
	"tunestream/model"
)

// subscriberBuffer 每个订阅者的缓冲，满了就丢弃事件，不阻塞发布方
const subscriberBuffer = 16

// Hub 按用户分发播放事件，同一用户的多个设备都能收到
type Hub struct {
	mu   sync.RWMutex
	subs map[int64]map[*Subscription]struct{}
}

// Subscription 一个订阅，事件从 C 读取
type Subscription struct {
	C      <-chan model.PlayEvent
	ch     chan model.PlayEvent
	userID int64
	hub    *Hub
	once   sync.Once
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{subs: make(map[int64]map[*Subscription]struct{})}
}

// Subscribe 订阅某个用户的事件
func (h *Hub) Subscribe(userID int64) *Subscription {
	ch := make(chan model.PlayEvent, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, userID: userID, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	return sub
}

// Close 取消订阅并关闭通道，可重复调用
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		if set := s.hub.subs[s.userID]; set != nil {
			delete(set, s)
			if len(set) == 0 {
				delete(s.hub.subs, s.userID)
			}
		}
		close(s.ch)
	})
}

// Publish 实现 Publisher
func (h *Hub) Publish(event model.PlayEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[event.UserID] {
		select {
		case sub.ch <- event:
		default:
			logger.Warn("播放事件订阅者缓冲已满，丢弃事件",
				logger.Int64("userId", event.UserID),
				logger.Int64("trackId", event.TrackID))
		}
	}
}

// Subscribers 当前某用户的订阅数
func (h *Hub) Subscribers(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
