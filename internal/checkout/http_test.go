package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPAuthority_Recalculate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/cart/recalculate", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Items, 1)
		assert.Equal(t, "delivery", req.OrderType)

		json.NewEncoder(w).Encode(Quote{
			Success:     true,
			Subtotal:    900,
			DeliveryFee: 199,
			Total:       1099,
			CanSubmit:   true,
		})
	}))
	defer srv.Close()

	a := NewHTTPAuthority(srv.URL)
	quote, err := a.Recalculate(context.Background(), Request{
		Items:           []Item{{ID: "borsch", Name: "Борщ", Price: 450, Amount: 2}},
		OrderType:       "delivery",
		DeliveryAddress: "ул. Ленина, 1",
		CustomerName:    "Иван",
		CustomerPhone:   "+79161234567",
	})

	require.NoError(t, err)
	assert.Equal(t, 1099, quote.Total)
	assert.True(t, quote.CanSubmit)
}

func TestHTTPAuthority_ServerMessageSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "корзина пуста",
			"status":  400,
		})
	}))
	defer srv.Close()

	a := NewHTTPAuthority(srv.URL)
	_, err := a.Recalculate(context.Background(), Request{OrderType: "pickup"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "корзина пуста")
}

func TestHTTPAuthority_Non2xxWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewHTTPAuthority(srv.URL)
	_, err := a.Recalculate(context.Background(), Request{OrderType: "pickup"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http=500")
}

func TestHTTPAuthority_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewHTTPAuthority(srv.URL)
	_, err := a.Recalculate(ctx, Request{OrderType: "pickup"})
	assert.Error(t, err)
}
