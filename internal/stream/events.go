package stream

import "github.com/shopspring/decimal"

// Topics carrying settlement events. Producers publish after their
// database transaction commits, never before.
const (
	PaymentSettledTopic  = "payment.settled"
	SavingsReleasedTopic = "savings.released"
)

// PaymentSettledEvent announces a confirmed gateway payment. The
// payload is self-contained so consumers never need a database lookup
// to act on it.
type PaymentSettledEvent struct {
	Reference   string          `json:"reference"`
	Email       string          `json:"email"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentType string          `json:"payment_type"`
}

// SavingsReleasedEvent announces a matured plan released by the
// scheduler.
type SavingsReleasedEvent struct {
	PlanID   string          `json:"plan_id"`
	Email    string          `json:"email"`
	Amount   decimal.Decimal `json:"amount"`
	Interest decimal.Decimal `json:"interest"`
}
