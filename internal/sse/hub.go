// Package sse fans server-sent events out to subscribed HTTP clients.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
	"github.com/dryad-restoration/dryad-backend/internal/store"
)

type Event string

const (
	EventNotificationAdded   Event = "NotificationAdded"
	EventNotificationRemoved Event = "NotificationRemoved"
	EventNotificationsClear  Event = "NotificationsCleared"
)

// NotificationsChannel carries notification changes to every client.
const NotificationsChannel = "notifications"

const (
	outboundBuffer    = 10
	defaultHeartbeat  = 15 * time.Second
	pingChunkedLength = 8*1024 - len(": ping \n\n")
)

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan Message
	done     chan struct{}
	once     sync.Once
}

type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	heartbeat     time.Duration
	subscriptions map[string]map[*Client]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:           log.With("component", "SSEHub"),
		heartbeat:     defaultHeartbeat,
		subscriptions: make(map[string]map[*Client]bool),
	}
}

func (h *Hub) NewClient(userID uuid.UUID) *Client {
	return &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Channels: make(map[string]bool),
		Outbound: make(chan Message, outboundBuffer),
		done:     make(chan struct{}),
	}
}

func (h *Hub) AddChannel(c *Client, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	c.Channels[channel] = true
	clients, ok := h.subscriptions[channel]
	if !ok {
		clients = make(map[*Client]bool)
		h.subscriptions[channel] = clients
	}
	clients[c] = true
	h.log.Debug("SSE client subscribed", "client_id", c.ID, "channel", channel)
}

func (h *Hub) RemoveChannel(c *Client, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(c, channel)
	delete(c.Channels, channel)
}

func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range c.Channels {
		h.unsubscribeLocked(c, ch)
	}
	c.Channels = make(map[string]bool)
}

func (h *Hub) unsubscribeLocked(c *Client, channel string) {
	if subs, ok := h.subscriptions[channel]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.subscriptions, channel)
		}
	}
}

// Subscribers reports how many clients listen on channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[channel])
}

// Broadcast queues msg for every client on its channel. Clients whose buffer
// is full miss the message.
func (h *Hub) Broadcast(msg Message) {
	if msg.Channel == "" {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.subscriptions[msg.Channel] {
		select {
		case c.Outbound <- msg:
		default:
			h.log.Warn("Dropping SSE message; outbound buffer full", "client_id", c.ID, "event", msg.Event)
		}
	}
}

// ServeHTTP streams the client's messages until the request ends or the
// client is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, c *Client) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			h.log.Debug("SSE client gone", "client_id", c.ID, "error", ctx.Err())
			return
		case <-c.done:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping "+strings.Repeat("#", pingChunkedLength)+"\n\n")
			flusher.Flush()
		case msg, ok := <-c.Outbound:
			if !ok {
				return
			}
			raw, err := json.Marshal(msg)
			if err != nil {
				h.log.Warn("Failed to marshal SSE message", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", raw)
			flusher.Flush()
		}
	}
}

// CloseClient unsubscribes c and ends its stream. Safe to call twice.
func (h *Hub) CloseClient(c *Client) {
	c.once.Do(func() {
		close(c.done)
		h.RemoveClient(c)
		close(c.Outbound)
	})
}

// PumpNotifications relays notification store changes onto
// NotificationsChannel until ctx ends or the subscription closes.
func (h *Hub) PumpNotifications(ctx context.Context, events <-chan store.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			msg := Message{Channel: NotificationsChannel}
			switch ev.Kind {
			case store.EventAdded:
				msg.Event, msg.Data = EventNotificationAdded, ev.Notification
			case store.EventRemoved:
				msg.Event, msg.Data = EventNotificationRemoved, ev.Notification
			case store.EventCleared:
				msg.Event = EventNotificationsClear
			default:
				continue
			}
			h.Broadcast(msg)
		}
	}
}
