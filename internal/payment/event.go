package payment

import "encoding/json"

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// Event is the decoded webhook envelope. Decode it only after the raw body
// has passed signature verification.
type Event struct {
	Kind      string
	OrderID   string
	PaymentID string
}

type eventEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseEvent decodes the canonical webhook bytes.
func ParseEvent(body []byte) (Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Event{}, err
	}
	return Event{
		Kind:      env.Event,
		OrderID:   env.Payload.Payment.Entity.OrderID,
		PaymentID: env.Payload.Payment.Entity.ID,
	}, nil
}
