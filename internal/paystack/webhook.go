package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// SignatureHeader carries the keyed hash Paystack computes over the raw
// webhook body.
const SignatureHeader = "X-Paystack-Signature"

const EventChargeSuccess = "charge.success"

var ErrUnknownFunding = errors.New("unrecognized payment metadata shape")

// VerifySignature recomputes the HMAC-SHA512 of the raw body under the
// shared secret and compares it to the header value in constant time.
func VerifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

type Event struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

type EventData struct {
	Reference     string         `json:"reference"`
	Amount        int64          `json:"amount"` // minor currency unit (kobo)
	Customer      Customer       `json:"customer"`
	Metadata      Metadata       `json:"metadata"`
	Authorization *Authorization `json:"authorization"`
}

type Customer struct {
	Email string `json:"email"`
}

type Authorization struct {
	AuthorizationCode string `json:"authorization_code"`
	CardType          string `json:"card_type"`
	Last4             string `json:"last4"`
	ExpMonth          string `json:"exp_month"`
	ExpYear           string `json:"exp_year"`
	Bank              string `json:"bank"`
	Reusable          bool   `json:"reusable"`
}

func ParseEvent(body []byte) (*Event, error) {
	var event Event
	err := json.Unmarshal(body, &event)
	if err != nil {
		return nil, err
	}

	return &event, nil
}

// AmountMajor converts the gateway's minor-unit amount to naira.
func (d *EventData) AmountMajor() decimal.Decimal {
	return decimal.NewFromInt(d.Amount).Div(decimal.NewFromInt(100))
}

// Funding is the typed form of the gateway's loose metadata dict,
// resolved once at the boundary so the rest of the system never
// threads maps around.
type Funding interface {
	// OwnerID is the account the charge was initialized for. It must
	// match the settled customer before any balance moves.
	OwnerID() string

	fundingTarget()
}

type WalletFunding struct {
	UserID string
}

type SavingsFunding struct {
	UserID    string
	SavingsID string
}

func (f WalletFunding) OwnerID() string  { return f.UserID }
func (f SavingsFunding) OwnerID() string { return f.UserID }

func (WalletFunding) fundingTarget()  {}
func (SavingsFunding) fundingTarget() {}

// Funding rejects unknown metadata shapes early rather than letting
// them reach the ledger.
func (m Metadata) Funding() (Funding, error) {
	switch m.PaymentType {
	case PaymentTypeWallet:
		if m.UserID == "" {
			return nil, ErrUnknownFunding
		}
		return WalletFunding{UserID: m.UserID}, nil

	case PaymentTypeSavings:
		if m.UserID == "" || m.SavingsID == "" {
			return nil, ErrUnknownFunding
		}
		return SavingsFunding{UserID: m.UserID, SavingsID: m.SavingsID}, nil

	default:
		return nil, ErrUnknownFunding
	}
}
