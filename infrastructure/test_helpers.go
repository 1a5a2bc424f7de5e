package infrastructure

import (
	"sync"

	"casino/database"
	"casino/domain/events"
)

// RecordingEventPublisher keeps every published event in memory. Safe for concurrent use.
type RecordingEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

// NewRecordingEventPublisher creates an empty recording publisher
func NewRecordingEventPublisher() *RecordingEventPublisher {
	return &RecordingEventPublisher{}
}

func (r *RecordingEventPublisher) Publish(event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events
func (r *RecordingEventPublisher) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// OfType returns the recorded events of one type
func (r *RecordingEventPublisher) OfType(eventType events.EventType) []events.Event {
	var matched []events.Event
	for _, event := range r.Events() {
		if event.Type() == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

// NewTestUnitOfWorkFactory creates a unit of work factory whose events land in publisher
func NewTestUnitOfWorkFactory(db *database.DB, publisher *RecordingEventPublisher) *UnitOfWorkFactory {
	return NewUnitOfWorkFactory(db, publisher)
}
