package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
	"github.com/dryad-restoration/dryad-backend/internal/store"
)

func recvMessage(t *testing.T, ch <-chan Message, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return Message{}
}

func TestHubOrderingAndReconnect(t *testing.T) {
	hub := NewHub(logger.Nop())

	a := hub.NewClient(uuid.New())
	hub.AddChannel(a, NotificationsChannel)
	hub.Broadcast(Message{Channel: NotificationsChannel, Event: EventNotificationAdded, Data: 1})
	hub.Broadcast(Message{Channel: NotificationsChannel, Event: EventNotificationRemoved, Data: 2})

	assert.Equal(t, EventNotificationAdded, recvMessage(t, a.Outbound, time.Second).Event)
	assert.Equal(t, EventNotificationRemoved, recvMessage(t, a.Outbound, time.Second).Event)

	hub.CloseClient(a)
	hub.CloseClient(a)
	_, open := <-a.Outbound
	assert.False(t, open)
	assert.Zero(t, hub.Subscribers(NotificationsChannel))

	b := hub.NewClient(uuid.New())
	hub.AddChannel(b, NotificationsChannel)
	hub.Broadcast(Message{Channel: NotificationsChannel, Event: EventNotificationsClear})
	assert.Equal(t, EventNotificationsClear, recvMessage(t, b.Outbound, time.Second).Event)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(logger.Nop())
	c := hub.NewClient(uuid.New())
	hub.AddChannel(c, "x")

	for i := 0; i < outboundBuffer+5; i++ {
		hub.Broadcast(Message{Channel: "x", Event: EventNotificationAdded, Data: i})
	}
	assert.Len(t, c.Outbound, outboundBuffer)

	hub.RemoveChannel(c, "x")
	hub.Broadcast(Message{Channel: "other", Event: EventNotificationAdded})
	assert.Len(t, c.Outbound, outboundBuffer)
}

func TestServeHTTPWritesEvents(t *testing.T) {
	hub := NewHub(logger.Nop())
	c := hub.NewClient(uuid.New())
	hub.AddChannel(c, NotificationsChannel)
	hub.Broadcast(Message{Channel: NotificationsChannel, Event: EventNotificationAdded, Data: map[string]string{"message": "saved"}})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/notifications/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	hub.ServeHTTP(rec, req, c)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "event: message\ndata: "), body)
	assert.Contains(t, body, `"event":"NotificationAdded"`)
	assert.Contains(t, body, `"message":"saved"`)
}

func TestPumpNotifications(t *testing.T) {
	hub := NewHub(logger.Nop())
	notes := store.NewNotificationStore(logger.Nop())
	t.Cleanup(notes.Close)

	c := hub.NewClient(uuid.New())
	hub.AddChannel(c, NotificationsChannel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, unsubscribe := notes.Subscribe()
	defer unsubscribe()
	go hub.PumpNotifications(ctx, events)

	n, err := notes.Add(store.NotifySuccess, "Job saved", time.Hour)
	require.NoError(t, err)

	msg := recvMessage(t, c.Outbound, time.Second)
	assert.Equal(t, EventNotificationAdded, msg.Event)
	got, ok := msg.Data.(*store.Notification)
	require.True(t, ok)
	assert.Equal(t, n.ID, got.ID)
}
