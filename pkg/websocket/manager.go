package websocket

import (
	"context"
	"sync"
	"time"

	"relgraph/pkg/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client 一个用户的WebSocket连接
type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte
}

func NewClient(userID uint, conn *websocket.Conn) *Client {
	return &Client{UserID: userID, Conn: conn, Send: make(chan []byte, 256)}
}

// OfflineQueue 目标不在线时暂存事件
type OfflineQueue interface {
	Push(ctx context.Context, userID uint, event []byte) error
	Drain(ctx context.Context, userID uint) ([][]byte, error)
}

// PresenceTracker 跨实例在线状态
type PresenceTracker interface {
	SetOnline(ctx context.Context, userID uint) error
	Refresh(ctx context.Context, userID uint) error
	SetOffline(ctx context.Context, userID uint) error
}

const storeTimeout = 3 * time.Second

// Manager 管理本实例上的在线连接，每个用户一条
type Manager struct {
	clients  map[uint]*Client
	lock     sync.RWMutex
	offline  OfflineQueue    // 可为nil
	presence PresenceTracker // 可为nil
}

func NewManager(offline OfflineQueue, presence PresenceTracker) *Manager {
	return &Manager{
		clients:  make(map[uint]*Client),
		offline:  offline,
		presence: presence,
	}
}

// AddClient 注册连接，同一用户的旧连接被替换；随后补发离线事件
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	if old, ok := m.clients[client.UserID]; ok {
		close(old.Send)
	}
	m.clients[client.UserID] = client
	m.lock.Unlock()

	m.withStore(func(ctx context.Context) {
		if m.presence != nil {
			if err := m.presence.SetOnline(ctx, client.UserID); err != nil {
				logger.Warn("设置在线状态失败", zap.Uint("user_id", client.UserID), zap.Error(err))
			}
		}
		m.flushOffline(ctx, client)
	})
}

// RemoveClient 仅当 client 仍是该用户的当前连接时移除
func (m *Manager) RemoveClient(client *Client) {
	m.lock.Lock()
	current, ok := m.clients[client.UserID]
	if ok && current == client {
		close(client.Send)
		delete(m.clients, client.UserID)
	}
	m.lock.Unlock()

	if ok && current == client && m.presence != nil {
		m.withStore(func(ctx context.Context) {
			_ = m.presence.SetOffline(ctx, client.UserID)
		})
	}
}

// SendToUser 在线则直接推送，否则写入离线队列
func (m *Manager) SendToUser(userID uint, msg []byte) {
	m.lock.RLock()
	client, ok := m.clients[userID]
	if ok {
		select {
		case client.Send <- msg:
		default:
			logger.Warn("推送队列已满，丢弃事件", zap.Uint("user_id", userID))
		}
	}
	m.lock.RUnlock()

	if !ok && m.offline != nil {
		go m.withStore(func(ctx context.Context) {
			if err := m.offline.Push(ctx, userID, msg); err != nil {
				logger.Warn("写入离线事件失败", zap.Uint("user_id", userID), zap.Error(err))
			}
		})
	}
}

// IsOnline 是否在本实例在线
func (m *Manager) IsOnline(userID uint) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.clients[userID]
	return ok
}

// OnlineCount 本实例在线连接数
func (m *Manager) OnlineCount() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients)
}

func (m *Manager) heartbeat(userID uint) {
	if m.presence == nil {
		return
	}
	m.withStore(func(ctx context.Context) {
		_ = m.presence.Refresh(ctx, userID)
	})
}

func (m *Manager) flushOffline(ctx context.Context, client *Client) {
	if m.offline == nil {
		return
	}
	events, err := m.offline.Drain(ctx, client.UserID)
	if err != nil {
		logger.Warn("获取离线事件失败", zap.Uint("user_id", client.UserID), zap.Error(err))
		return
	}
	m.lock.RLock()
	defer m.lock.RUnlock()
	if m.clients[client.UserID] != client {
		return
	}
	for _, ev := range events {
		select {
		case client.Send <- ev:
		default:
			return
		}
	}
}

func (m *Manager) withStore(fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	fn(ctx)
}
