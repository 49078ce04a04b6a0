package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *Client {
	client := New("sk_test_secret", "http://localhost/payments/callback")
	client.baseURL = server.URL
	return client
}

func TestInitializeReturnsCheckoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "user@example.com", payload["email"])
		require.Equal(t, float64(500000), payload["amount"])
		require.Equal(t, "http://localhost/payments/callback", payload["callback_url"])

		metadata, ok := payload["metadata"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "wallet", metadata["payment_type"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {"authorization_url": "https://checkout.example.com/abc", "reference": "ref_123"}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	result, err := client.Initialize(context.Background(), "user@example.com", 500000, Metadata{
		PaymentType: PaymentTypeWallet,
		UserID:      "user_1",
	})
	require.NoError(t, err)
	require.Equal(t, "https://checkout.example.com/abc", result.AuthorizationURL)
	require.Equal(t, "ref_123", result.Reference)
}

func TestChargeAuthorizationSendsSavedCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/charge_authorization", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "AUTH_x", payload["authorization_code"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": true,
			"message": "Charge attempted",
			"data": {"status": "success", "reference": "ref_456"}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	result, err := client.ChargeAuthorization(context.Background(), "user@example.com", 100000, "AUTH_x", Metadata{
		PaymentType: PaymentTypeWallet,
		UserID:      "user_1",
	})
	require.NoError(t, err)
	require.Equal(t, "success", result.Status)
	require.Equal(t, "ref_456", result.Reference)
}

func TestGatewayFailuresWrapErrGateway(t *testing.T) {
	declined := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status": false, "message": "Invalid amount"}`))
	}))
	defer declined.Close()

	client := newTestClient(declined)

	_, err := client.Initialize(context.Background(), "user@example.com", 0, Metadata{})
	require.ErrorIs(t, err, ErrGateway)

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer garbage.Close()

	client = newTestClient(garbage)

	_, err = client.ChargeAuthorization(context.Background(), "user@example.com", 100, "AUTH_x", Metadata{})
	require.ErrorIs(t, err, ErrGateway)
}
