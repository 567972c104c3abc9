package events

// EventPublisher delivers ledger events to interested consumers.
// Implementations must not block the caller on slow consumers.
type EventPublisher interface {
	Publish(event Event)
}

// NoOpPublisher is a publisher that does nothing (for testing or when events are disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(event Event) {}

// MultiPublisher fans an event out to several publishers
type MultiPublisher []EventPublisher

// Publish forwards the event to every publisher in order
func (m MultiPublisher) Publish(event Event) {
	for _, p := range m {
		p.Publish(event)
	}
}
