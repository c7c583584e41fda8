package events

// Event represents a structured state change emitted by the claim engine.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// CaptureEmitter records every emitted event in order. Intended for tests and
// offline reconciliation tooling.
type CaptureEmitter struct {
	Events []Event
}

// Emit implements the Emitter interface.
func (c *CaptureEmitter) Emit(evt Event) {
	if c == nil || evt == nil {
		return
	}
	c.Events = append(c.Events, evt)
}

// ByType returns the captured events matching the supplied type, preserving
// emission order.
func (c *CaptureEmitter) ByType(eventType string) []Event {
	if c == nil {
		return nil
	}
	var out []Event
	for _, evt := range c.Events {
		if evt.EventType() == eventType {
			out = append(out, evt)
		}
	}
	return out
}
