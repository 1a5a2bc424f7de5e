package infrastructure

import (
	"casino/domain/events"

	log "github.com/sirupsen/logrus"
)

// NoopEventPublisher drops events. Used when NATS is disabled.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a publisher that discards every event
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

func (p *NoopEventPublisher) Publish(event events.Event) error {
	log.WithField("eventType", event.Type()).Trace("Dropping event, NATS publishing disabled")
	return nil
}
