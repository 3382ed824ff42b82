package factory

import (
	"time"

	"github.com/launchforge/tokenfactory/token"
)

type EventType string

const (
	EventTokenCreated          EventType = "TokenCreated"
	EventBaseFeeUpdated        EventType = "BaseFeeUpdated"
	EventWhitelistUpdated      EventType = "WhitelistUpdated"
	EventDiscountConfigUpdated EventType = "DiscountConfigUpdated"
	EventFeesWithdrawn         EventType = "FeesWithdrawn"
	EventPaused                EventType = "Paused"
	EventUnpaused              EventType = "Unpaused"
)

type Event struct {
	Type      EventType              `json:"type"`
	Address   string                 `json:"address,omitempty"` // subject: ledger, whitelisted or target address
	Amount    uint64                 `json:"amount,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	TxHash    string                 `json:"tx_hash"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// emitEvent appends to the factory log and forwards to the sink if one is
// attached. Caller must hold f.mu.
func (f *Factory) emitEvent(event Event) {
	f.events = append(f.events, event)
	if f.sink != nil {
		f.sink(event)
	}
}

// SetEventSink attaches an observer invoked for every emitted event.
func (f *Factory) SetEventSink(sink func(Event)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sink = sink
}

// SetTokenEventSink attaches an observer applied to every ledger created
// from now on; existing ledgers are not touched.
func (f *Factory) SetTokenEventSink(sink func(token.Event)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenSink = sink
}

// GetEvents returns all factory events.
func (f *Factory) GetEvents() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	events := make([]Event, len(f.events))
	copy(events, f.events)
	return events
}
