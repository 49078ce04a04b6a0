package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event":"charge.success"}`)

	require.True(t, VerifySignature(secret, body, signBody(secret, body)))

	require.False(t, VerifySignature(secret, body, signBody("wrong_secret", body)))
	require.False(t, VerifySignature(secret, body, ""))
	require.False(t, VerifySignature(secret, []byte(`tampered`), signBody(secret, body)))
}

func TestParseEvent(t *testing.T) {
	body := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "ref_123",
			"amount": 500000,
			"customer": {"email": "user@example.com"},
			"metadata": {"payment_type": "wallet", "user_id": "user_1"},
			"authorization": {"authorization_code": "AUTH_x", "reusable": true, "last4": "4081"}
		}
	}`)

	event, err := ParseEvent(body)
	require.NoError(t, err)
	require.Equal(t, EventChargeSuccess, event.Event)
	require.Equal(t, "ref_123", event.Data.Reference)
	require.Equal(t, int64(500000), event.Data.Amount)
	require.Equal(t, "user@example.com", event.Data.Customer.Email)
	require.NotNil(t, event.Data.Authorization)
	require.True(t, event.Data.Authorization.Reusable)

	_, err = ParseEvent([]byte(`not json`))
	require.Error(t, err)
}

func TestAmountMajorConvertsFromKobo(t *testing.T) {
	data := &EventData{Amount: 500000}
	require.True(t, data.AmountMajor().Equal(decimal.RequireFromString("5000")))

	data = &EventData{Amount: 1}
	require.True(t, data.AmountMajor().Equal(decimal.RequireFromString("0.01")))
}

func TestMetadataFunding(t *testing.T) {
	funding, err := Metadata{PaymentType: PaymentTypeWallet, UserID: "user_1"}.Funding()
	require.NoError(t, err)
	require.Equal(t, WalletFunding{UserID: "user_1"}, funding)

	funding, err = Metadata{PaymentType: PaymentTypeSavings, UserID: "user_1", SavingsID: "plan_1"}.Funding()
	require.NoError(t, err)
	require.Equal(t, SavingsFunding{UserID: "user_1", SavingsID: "plan_1"}, funding)

	_, err = Metadata{PaymentType: PaymentTypeWallet}.Funding()
	require.ErrorIs(t, err, ErrUnknownFunding)

	_, err = Metadata{PaymentType: PaymentTypeSavings, UserID: "user_1"}.Funding()
	require.ErrorIs(t, err, ErrUnknownFunding)

	_, err = Metadata{PaymentType: "airtime", UserID: "user_1"}.Funding()
	require.ErrorIs(t, err, ErrUnknownFunding)
}
