package events

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	EventNotification     = "notification"
	EventCacheUpdated     = "cache_updated"
	EventCacheInvalidated = "cache_invalidated"
	EventCacheRolledBack  = "cache_rolled_back"
	EventBookingCreated   = "booking_created"
	EventBookingChanged   = "booking_changed"
	EventSessionChanged   = "session_changed"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a user-facing message produced by a mutation.
type Notification struct {
	ID      string `json:"id"`
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// CachePayload names the cache key an event refers to.
type CachePayload struct {
	Key string `json:"key"`
}

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID int64  `json:"booking_id"`
	BikeID    int64  `json:"bike_id"`
	Status    string `json:"status"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
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

// PublishJSON serializes the payload and publishes an event. A nil bus drops it.
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

// Notify publishes a notification event.
func (b *EventBus) Notify(level Level, title, message string) {
	_ = b.PublishJSON(EventNotification, Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Title:   title,
		Message: message,
	})
}

// OnNotification subscribes fn to decoded notifications.
func (b *EventBus) OnNotification(fn func(Notification)) {
	b.Subscribe(EventNotification, func(e *Event) error {
		var n Notification
		if err := e.Decode(&n); err != nil {
			return err
		}
		fn(n)
		return nil
	})
}
