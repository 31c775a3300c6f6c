package checkout

import (
	"context"
	"errors"
	"testing"

	"tarelka/internal/cart"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAuthority struct {
	quote    *Quote
	err      error
	calls    int
	lastReq  Request
	onRecalc func()
}

func (m *mockAuthority) Recalculate(_ context.Context, req Request) (*Quote, error) {
	m.calls++
	m.lastReq = req
	if m.onRecalc != nil {
		m.onRecalc()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.quote, nil
}

func filledCart() *cart.Store {
	s := cart.NewStore()
	s.Add(cart.Product{ID: "borsch", Name: "Борщ с говядиной", Price: 450})
	s.Increase("borsch")
	s.Add(cart.Product{ID: "morse", Name: "Морс клюквенный", Price: 300})
	return s
}

func TestSubmit_EmptyCartRejectedLocally(t *testing.T) {
	authority := &mockAuthority{}
	r := NewReconciler(authority)

	_, err := r.Submit(context.Background(), cart.NewStore(), OrderTypePickup, Customer{Name: "Иван"})

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, authority.calls, "no network call may be made for an empty cart")
	assert.Equal(t, Idle, r.State())
}

func TestSubmit_DeliveryRequiresAddress(t *testing.T) {
	authority := &mockAuthority{}
	r := NewReconciler(authority)

	_, err := r.Submit(context.Background(), filledCart(), OrderTypeDelivery, Customer{Name: "Иван", Address: "  "})

	assert.ErrorIs(t, err, ErrNoAddress)
	assert.Zero(t, authority.calls)
}

func TestSubmit_AdoptsServerTotal(t *testing.T) {
	authority := &mockAuthority{quote: &Quote{
		Success:     true,
		Subtotal:    1200,
		DeliveryFee: 199,
		Total:       1399,
		CanSubmit:   true,
	}}
	r := NewReconciler(authority)

	s := filledCart()
	require.Equal(t, 1200, s.Snapshot().TotalPrice)

	res, err := r.Submit(context.Background(), s, OrderTypeDelivery, Customer{
		Name:    "Иван",
		Phone:   "+79161234567",
		Address: "ул. Ленина, 1",
	})

	require.NoError(t, err)
	assert.Equal(t, Accepted, res.State)
	// The amount surfaced to the user comes from the server, not the local sum.
	assert.Equal(t, 1399, res.AmountToPay)
	assert.Equal(t, Accepted, r.State())
}

func TestSubmit_RejectedWithWarnings(t *testing.T) {
	authority := &mockAuthority{quote: &Quote{
		Success:   true,
		Subtotal:  300,
		Total:     300,
		MinOrder:  500,
		CanSubmit: false,
		Warnings:  []string{"Минимальная сумма заказа 500₽"},
	}}
	r := NewReconciler(authority)

	s := cart.NewStore()
	s.Add(cart.Product{ID: "morse", Name: "Морс клюквенный", Price: 300})

	res, err := r.Submit(context.Background(), s, OrderTypePickup, Customer{Name: "Иван", Phone: "+79161234567"})

	require.NoError(t, err, "a 200 response with canSubmit=false is not a transport error")
	assert.Equal(t, Rejected, res.State)
	assert.Equal(t, []string{"Минимальная сумма заказа 500₽"}, res.Warnings)
	assert.Zero(t, res.AmountToPay)
}

func TestSubmit_FailureLeavesCartUntouched(t *testing.T) {
	authority := &mockAuthority{err: errors.New("connection reset")}
	r := NewReconciler(authority)

	s := filledCart()
	before := s.Lines()

	_, err := r.Submit(context.Background(), s, OrderTypePickup, Customer{Name: "Иван", Phone: "+79161234567"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, Failed, r.State())
	assert.Equal(t, before, s.Lines(), "failed submission must not change the cart")
}

func TestSubmit_PayloadIsSnapshotAtSubmitTime(t *testing.T) {
	s := filledCart()

	// Mutate the cart "while the request is in flight"; the payload the
	// authority sees must be the pre-mutation snapshot.
	authority := &mockAuthority{quote: &Quote{Success: true, CanSubmit: true, Total: 1200}}
	authority.onRecalc = func() {
		s.Add(cart.Product{ID: "pelmeni", Name: "Пельмени", Price: 520})
		s.Remove("morse")
	}
	r := NewReconciler(authority)

	_, err := r.Submit(context.Background(), s, OrderTypePickup, Customer{Name: "Иван", Phone: "+79161234567"})
	require.NoError(t, err)

	require.Len(t, authority.lastReq.Items, 2)
	assert.Equal(t, Item{ID: "borsch", Name: "Борщ с говядиной", Price: 450, Amount: 2}, authority.lastReq.Items[0])
	assert.Equal(t, Item{ID: "morse", Name: "Морс клюквенный", Price: 300, Amount: 1}, authority.lastReq.Items[1])
}

func TestSubmit_SingleAttemptPerCall(t *testing.T) {
	authority := &mockAuthority{err: errors.New("timeout")}
	r := NewReconciler(authority)

	s := filledCart()
	_, err := r.Submit(context.Background(), s, OrderTypePickup, Customer{Name: "Иван", Phone: "+79161234567"})
	require.Error(t, err)
	assert.Equal(t, 1, authority.calls, "no automatic retry inside the reconciler")

	// A user-initiated retry is a fresh cycle.
	authority.err = nil
	authority.quote = &Quote{Success: true, CanSubmit: true, Total: 1200}
	res, err := r.Submit(context.Background(), s, OrderTypePickup, Customer{Name: "Иван", Phone: "+79161234567"})
	require.NoError(t, err)
	assert.Equal(t, 2, authority.calls)
	assert.Equal(t, Accepted, res.State)
}

func TestSubmit_PickupOmitsAddress(t *testing.T) {
	authority := &mockAuthority{quote: &Quote{Success: true, CanSubmit: true}}
	r := NewReconciler(authority)

	_, err := r.Submit(context.Background(), filledCart(), OrderTypePickup, Customer{
		Name:    "Иван",
		Phone:   "+79161234567",
		Address: "ул. Ленина, 1", // stale from a previous delivery attempt
	})

	require.NoError(t, err)
	assert.Empty(t, authority.lastReq.DeliveryAddress)
	assert.Equal(t, OrderTypePickup, authority.lastReq.OrderType)
}
