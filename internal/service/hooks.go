package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"relgraph/internal/model"
	"relgraph/pkg/logger"

	"go.uber.org/zap"
)

// HookPoint 关系变更的挂载点
type HookPoint int

const (
	// HookBeforeCommit 写入前执行，返回错误则放弃写入
	HookBeforeCommit HookPoint = iota
	// HookAfterCommit 写入成功后执行，错误只记录日志
	HookAfterCommit
)

// Event 一次关系变更
type Event struct {
	ActorID   uint
	TargetID  uint
	Status    model.RelationshipStatus
	Direction Direction
	Action    string // model.ActivityAdd / model.ActivityRemove
	At        time.Time
}

// Hook 变更回调
type Hook func(ctx context.Context, ev Event) error

type namedHook struct {
	name string
	fn   Hook
}

// Hooks 按注册顺序执行
type Hooks struct {
	mu     sync.RWMutex
	before []namedHook
	after  []namedHook
}

func NewHooks() *Hooks {
	return &Hooks{}
}

func (h *Hooks) Register(point HookPoint, name string, fn Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch point {
	case HookBeforeCommit:
		h.before = append(h.before, namedHook{name: name, fn: fn})
	case HookAfterCommit:
		h.after = append(h.after, namedHook{name: name, fn: fn})
	}
}

func (h *Hooks) snapshot(point HookPoint) []namedHook {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if point == HookBeforeCommit {
		return append([]namedHook(nil), h.before...)
	}
	return append([]namedHook(nil), h.after...)
}

func (h *Hooks) runBefore(ctx context.Context, ev Event) error {
	for _, hook := range h.snapshot(HookBeforeCommit) {
		if err := hook.fn(ctx, ev); err != nil {
			return fmt.Errorf("hook %s: %w", hook.name, err)
		}
	}
	return nil
}

func (h *Hooks) runAfter(ctx context.Context, ev Event) {
	for _, hook := range h.snapshot(HookAfterCommit) {
		if err := hook.fn(ctx, ev); err != nil {
			logger.Warn("关系变更回调执行失败",
				zap.String("hook", hook.name),
				zap.Uint("actor_id", ev.ActorID),
				zap.Uint("target_id", ev.TargetID),
				zap.String("action", ev.Action),
				zap.Error(err),
			)
		}
	}
}

// EventPayload 推送与消息流使用的事件格式
type EventPayload struct {
	Type      string `json:"type"`
	Action    string `json:"action"`
	Verb      string `json:"verb,omitempty"`
	Status    string `json:"status"`
	ActorID   uint   `json:"actor_id"`
	TargetID  uint   `json:"target_id"`
	Timestamp int64  `json:"timestamp"`
}

func (ev Event) Payload() EventPayload {
	return EventPayload{
		Type:      "relationship",
		Action:    ev.Action,
		Verb:      ev.Status.Verb,
		Status:    Resolution{Status: ev.Status, Direction: ev.Direction}.Slug(),
		ActorID:   ev.ActorID,
		TargetID:  ev.TargetID,
		Timestamp: ev.At.Unix(),
	}
}

// Subject 消息流主题 relationships.<verb>.<action>
func (ev Event) Subject() string {
	verb := ev.Status.Verb
	if verb == "" {
		verb = ev.Status.FromSlug
	}
	return fmt.Sprintf("relationships.%s.%s", verb, ev.Action)
}

// Notifier 向在线用户推送
type Notifier interface {
	SendToUser(userID uint, msg []byte)
}

// Publisher 事件流发布
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NotifyHook 把变更推送给被操作的用户
func NotifyHook(n Notifier) Hook {
	return func(_ context.Context, ev Event) error {
		data, err := json.Marshal(ev.Payload())
		if err != nil {
			return err
		}
		n.SendToUser(ev.TargetID, data)
		return nil
	}
}

// PublishHook 把变更发布到事件流
func PublishHook(p Publisher) Hook {
	return func(ctx context.Context, ev Event) error {
		data, err := json.Marshal(ev.Payload())
		if err != nil {
			return err
		}
		return p.Publish(ctx, ev.Subject(), data)
	}
}
