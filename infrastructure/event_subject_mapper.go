package infrastructure

import (
	"fmt"

	"casino/domain/events"
)

// WalletEventStream is the JetStream stream that carries every wallet event
const WalletEventStream = "wallet_events"

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

var subjectsByEventType = map[events.EventType]string{
	events.EventTypeBalanceChange:       "wallet.balance_changed",
	events.EventTypeWalletCreated:       "wallet.created",
	events.EventTypeBetPlaced:           "wallet.bet.placed",
	events.EventTypeBetSettled:          "wallet.bet.settled",
	events.EventTypeWithdrawalRequested: "wallet.withdrawal.requested",
	events.EventTypeWithdrawalProcessed: "wallet.withdrawal.processed",
	events.EventTypeBonusGranted:        "wallet.bonus.granted",
	events.EventTypeBonusClaimed:        "wallet.bonus.claimed",
	events.EventTypeBonusExpired:        "wallet.bonus.expired",
	events.EventTypeBalanceAdjusted:     "wallet.balance_adjusted",
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := subjectsByEventType[event.Type()]; ok {
		return subject
	}
	// Fallback for unknown event types
	return fmt.Sprintf("wallet.unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range subjectsByEventType {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns the subjects the wallet stream must capture
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{"wallet.>"}
}
