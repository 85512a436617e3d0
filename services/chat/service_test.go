package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"homeserve/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []*Event
}

func (p *capturePublisher) Publish(_ string, e *Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func newTestService(t *testing.T) (*Service, *capturePublisher) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	pub := &capturePublisher{}
	return NewService(NewRedisStore(client), pub, nil), pub
}

func TestOpenAndHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Open(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "support", c.Topic)

	th, err := svc.History(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Empty(t, th.Messages)

	_, err = svc.History(ctx, "u2", c.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)
	_, err = svc.History(ctx, "u1", "missing")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestSendClearsDraft(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()
	c, err := svc.Open(ctx, "u1", "billing")
	require.NoError(t, err)

	c, err = svc.SaveDraft(ctx, "u1", c.ID, "My booking was charged tw")
	require.NoError(t, err)
	assert.Equal(t, "My booking was charged tw", c.Draft)

	msg, err := svc.Send(ctx, "u1", c.ID, models.SenderUser, "  My booking was charged twice ")
	require.NoError(t, err)
	assert.Equal(t, "My booking was charged twice", msg.Text)

	th, err := svc.History(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Empty(t, th.Conversation.Draft)
	require.Len(t, th.Messages, 1)
	assert.Equal(t, models.SenderUser, th.Messages[0].Sender)

	require.Len(t, pub.events, 1)
	assert.Equal(t, EventNewMessage, pub.events[0].Type)
}

func TestAgentReplyKeepsDraft(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c, err := svc.Open(ctx, "u1", "")
	require.NoError(t, err)
	_, err = svc.SaveDraft(ctx, "u1", c.ID, "thanks")
	require.NoError(t, err)

	_, err = svc.Send(ctx, "u1", c.ID, models.SenderAgent, "We are looking into it.")
	require.NoError(t, err)

	th, err := svc.History(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, "thanks", th.Conversation.Draft)
}

func TestSendRejections(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()
	c, err := svc.Open(ctx, "u1", "")
	require.NoError(t, err)

	_, err = svc.Send(ctx, "u1", c.ID, models.SenderUser, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = svc.Send(ctx, "u1", c.ID, models.SenderUser, strings.Repeat("x", maxMessageLen+1))
	assert.ErrorIs(t, err, ErrMessageTooLong)
	_, err = svc.Send(ctx, "u1", c.ID, models.Sender("bot"), "hi")
	assert.ErrorIs(t, err, ErrUnknownSender)
	assert.Empty(t, pub.events)
}

func TestHistoryIsCapped(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c, err := svc.Open(ctx, "u1", "")
	require.NoError(t, err)

	for i := 0; i < MaxHistory+5; i++ {
		_, err := svc.Send(ctx, "u1", c.ID, models.SenderUser, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}
	th, err := svc.History(ctx, "u1", c.ID)
	require.NoError(t, err)
	require.Len(t, th.Messages, MaxHistory)
	assert.Equal(t, "message 5", th.Messages[0].Text)
	assert.Equal(t, fmt.Sprintf("message %d", MaxHistory+4), th.Messages[MaxHistory-1].Text)
}
