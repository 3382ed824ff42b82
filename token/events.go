package token

import (
	"time"
)

type EventType string

const (
	EventTransfer             EventType = "Transfer"
	EventMint                 EventType = "Mint"
	EventBurn                 EventType = "Burn"
	EventApproval             EventType = "Approval"
	EventBlacklistUpdated     EventType = "BlacklistUpdated"
	EventLimitsUpdated        EventType = "LimitsUpdated"
	EventAntiBotDisabled      EventType = "AntiBotDisabled"
	EventAntiWhaleDisabled    EventType = "AntiWhaleDisabled"
	EventOwnershipTransferred EventType = "OwnershipTransferred"
)

type Event struct {
	Type      EventType              `json:"type"`
	From      string                 `json:"from,omitempty"` // Optional (e.g., for Mint)
	To        string                 `json:"to,omitempty"`   // Optional (e.g., for Burn)
	Amount    uint64                 `json:"amount"`
	Timestamp time.Time              `json:"timestamp"`
	TxHash    string                 `json:"tx_hash"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// emitEvent appends to the instance log and forwards to the sink if one is
// attached. Caller must hold t.mu.
func (t *Token) emitEvent(event Event) {
	if t.events == nil {
		t.events = []Event{}
	}
	t.events = append(t.events, event)
	if t.sink != nil {
		t.sink(event)
	}
}

// SetEventSink attaches an observer invoked for every emitted event.
func (t *Token) SetEventSink(sink func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink = sink
}

// GetEvents returns all events for this token
func (t *Token) GetEvents() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	// Return a copy to prevent external modification
	events := make([]Event, len(t.events))
	copy(events, t.events)
	return events
}

// GetEventsByType returns events filtered by type
func (t *Token) GetEventsByType(eventType EventType) []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var filtered []Event
	for _, event := range t.events {
		if event.Type == eventType {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
