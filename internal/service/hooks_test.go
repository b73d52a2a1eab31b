package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"relgraph/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent map[uint][][]byte
}

func (n *fakeNotifier) SendToUser(userID uint, msg []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = make(map[uint][][]byte)
	}
	n.sent[userID] = append(n.sent[userID], msg)
}

type fakePublisher struct {
	subjects []string
	payloads [][]byte
}

func (p *fakePublisher) Publish(_ context.Context, subject string, data []byte) error {
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func TestEventPayloadAndSubject(t *testing.T) {
	ev := Event{
		ActorID:   alice,
		TargetID:  bob,
		Status:    model.RelationshipStatus{FromSlug: "following", ToSlug: "followers", Verb: "follow", SymmetricalSlug: strPtr("friends")},
		Direction: Symmetrical,
		Action:    model.ActivityAdd,
		At:        time.Unix(1700000000, 0),
	}
	assert.Equal(t, "relationships.follow.add", ev.Subject())

	p := ev.Payload()
	assert.Equal(t, "friends", p.Status)
	assert.Equal(t, int64(1700000000), p.Timestamp)

	ev.Status.Verb = ""
	ev.Action = model.ActivityRemove
	assert.Equal(t, "relationships.following.remove", ev.Subject())
}

func TestNotifyAndPublishHooks(t *testing.T) {
	env := newTestEnv(t)
	notifier := &fakeNotifier{}
	publisher := &fakePublisher{}
	env.svc.Hooks().Register(HookAfterCommit, "notify", NotifyHook(notifier))
	env.svc.Hooks().Register(HookAfterCommit, "publish", PublishHook(publisher))
	env.svc.Hooks().Register(HookAfterCommit, "metrics", MetricsHook())

	env.follow(t, alice, bob)

	require.Len(t, notifier.sent[bob], 1)
	var payload EventPayload
	require.NoError(t, json.Unmarshal(notifier.sent[bob][0], &payload))
	assert.Equal(t, "relationship", payload.Type)
	assert.Equal(t, alice, payload.ActorID)
	assert.Equal(t, "following", payload.Status)

	assert.Equal(t, []string{"relationships.follow.add"}, publisher.subjects)
}
