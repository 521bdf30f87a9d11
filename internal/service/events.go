package service

// EventType defines the type of event
type EventType string

const (
	EventQuantityDerived    EventType = "quantity_derived"
	EventQuantityAggregated EventType = "quantity_aggregated"
	EventMaterialEvaluated  EventType = "material_evaluated"
)

// Event represents an event that occurred in the pipeline
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// QuantityEvent is the payload for quantity-level events.
type QuantityEvent struct {
	MaterialID string `json:"material_id"`
	Symbol     string `json:"symbol"`
	InternalID string `json:"internal_id"`
	Model      string `json:"model,omitempty"`
}

// MaterialEvent is the payload for material-level events.
type MaterialEvent struct {
	MaterialID string `json:"material_id"`
	Quantities int    `json:"quantities"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	if eb == nil {
		return
	}
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
