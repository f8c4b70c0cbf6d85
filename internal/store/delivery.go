package store

// Delivery states.
const (
	DeliveryPending   = "pending"
	DeliveryRetry     = "retry"
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
)

// CallbackDelivery is one queued POST of a run event to a client URL.
type CallbackDelivery struct {
	ID        string
	RunID     string
	EventType string
	URL       string
	Secret    string
	Payload   []byte
	Status    string
	Attempts  int
}
