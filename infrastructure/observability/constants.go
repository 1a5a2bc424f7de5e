package observability

// Metric name prefixes
const (
	MetricPrefix = "casino"
	ServiceName  = "casino-wallet"
)

// Metric names
const (
	// Operation metrics
	OperationsTotal   = MetricPrefix + ".operations.total"
	OperationDuration = MetricPrefix + ".operations.duration"

	// Ledger metrics
	LedgerEntriesTotal  = MetricPrefix + ".ledger.entries_total"
	BonusesExpiredTotal = MetricPrefix + ".bonuses.expired_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelOperation = "operation"
	LabelResult    = "result"
	LabelKind      = "kind"
	LabelEventType = "event_type"
)

// Result label values
const (
	ResultSuccess = "success"
)
