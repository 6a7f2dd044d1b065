package collection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventType names an event emitted by a Collection.
type EventType string

const (
	DocumentCreate EventType = "document:create"
	DocumentUpdate EventType = "document:update"
	DocumentDelete EventType = "document:delete"
	QuerySuccess   EventType = "query:success"
	QueryFailed    EventType = "query:failed"
)

// Event describes something that happened to a collection.
type Event struct {
	Type       EventType `json:"type"`               // The type of event (e.g., 'document:create').
	Timestamp  int64     `json:"timestamp"`          // Unix milliseconds.
	Operation  string    `json:"operation"`          // The operation being performed (e.g., 'insert', 'find').
	Collection string    `json:"collection"`         // Name of the collection affected.
	Input      any       `json:"input,omitempty"`    // Data passed to the operation (if applicable).
	Output     any       `json:"output,omitempty"`   // Data returned by the operation (if applicable).
	Error      *string   `json:"error,omitempty"`    // Error message if the operation failed.
	Query      string    `json:"query,omitempty"`    // Rendered query used in the operation (if applicable).
	Duration   *int64    `json:"duration,omitempty"` // Duration of the operation in milliseconds.
}

// EventCallback is invoked for every event a subscription matches.
type EventCallback func(ctx context.Context, event Event) error

// SubscriptionInfo describes a registered subscription.
type SubscriptionInfo struct {
	ID          string    `json:"id"`
	Event       EventType `json:"event"`
	Label       string    `json:"label,omitempty"`
	Unsubscribe func()    `json:"-"`
}

func createEvent(
	eventType EventType,
	operation string,
	collection string,
	input any,
	output any,
	query string,
	err error,
	startTime time.Time,
) Event {
	var duration *int64
	if !startTime.IsZero() {
		d := time.Since(startTime).Milliseconds()
		duration = &d
	}

	var errStr *string
	if err != nil {
		s := err.Error()
		errStr = &s
	}

	return Event{
		Type:       eventType,
		Timestamp:  time.Now().UnixMilli(),
		Operation:  operation,
		Collection: collection,
		Input:      input,
		Output:     output,
		Error:      errStr,
		Query:      query,
		Duration:   duration,
	}
}

func (c *Collection) emit(event Event) {
	if c.bus == nil {
		return
	}
	c.bus.Emit(string(event.Type), event)
}

// Subscribe registers callback for events of the given type and returns an
// id that can be passed to Unsubscribe. It is a no-op returning "" when the
// collection was created with events disabled.
func (c *Collection) Subscribe(event EventType, label string, callback EventCallback) string {
	if c.bus == nil {
		return ""
	}

	c.subMu.Lock()
	defer c.subMu.Unlock()

	unsubscribe := c.bus.Subscribe(string(event), func(ctx context.Context, e Event) error {
		return callback(ctx, e)
	})
	id := uuid.New().String()
	c.subscriptions[id] = &SubscriptionInfo{
		ID:          id,
		Event:       event,
		Label:       label,
		Unsubscribe: unsubscribe,
	}
	c.logger.Debug("Registered subscription", zap.String("id", id), zap.String("event", string(event)))
	return id
}

// Unsubscribe removes a subscription by its id.
func (c *Collection) Unsubscribe(id string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	if info, ok := c.subscriptions[id]; ok {
		info.Unsubscribe()
		delete(c.subscriptions, id)
		c.logger.Debug("Removed subscription", zap.String("id", id))
	}
}

// Subscriptions returns all currently active subscriptions.
func (c *Collection) Subscriptions() []SubscriptionInfo {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	subs := make([]SubscriptionInfo, 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		subs = append(subs, *sub)
	}
	return subs
}
