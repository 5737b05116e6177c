package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventTokenRedeemed       = "token_redeemed"
	EventSubscriptionExpired = "subscription_expired"
	EventSubscriptionRevoked = "subscription_revoked"
	EventFreeAccessGranted   = "free_access_granted"
	EventChannelReaction     = "channel_reaction"
	EventRankAchieved        = "rank_achieved"
)

// SubscriptionEventPayload describes the minimal subscription snapshot
// for event consumers.
type SubscriptionEventPayload struct {
	UserID     int64      `json:"user_id"`
	Role       string     `json:"role"`
	Status     string     `json:"status"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	TierName   string     `json:"tier_name,omitempty"`
}

// ReactionEventPayload carries a single channel reaction.
type ReactionEventPayload struct {
	UserID    int64  `json:"user_id"`
	ChatID    int64  `json:"chat_id"`
	MessageID int    `json:"message_id"`
	Emoji     string `json:"emoji"`
	Channel   string `json:"channel"` // vip or free
}

// RankEventPayload reports a rank transition.
type RankEventPayload struct {
	UserID   int64  `json:"user_id"`
	RankID   int64  `json:"rank_id"`
	RankName string `json:"rank_name"`
	Points   int64  `json:"points"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
