package main

import (
	"errors"
	"net/http"

	"tarelka/internal/checkout"
	"tarelka/internal/pricing"
)

// CartItemPayload is one submitted cart line.
type CartItemPayload struct {
	ID     string `json:"id" validate:"required,max=100"`
	Name   string `json:"name" validate:"required,max=200"`
	Price  int    `json:"price" validate:"gte=0"`
	Amount int    `json:"amount" validate:"required,gt=0"`
}

// RecalculateCartPayload mirrors the checkout request; customer fields are
// optional here because recalculation happens before the form is complete.
// Clients reuse their checkout form object verbatim, so every checkout field
// must be accepted (readJSON rejects unknown fields) even though only items
// and orderType affect the quote.
type RecalculateCartPayload struct {
	Items           []CartItemPayload `json:"items" validate:"required,min=1,dive"`
	OrderType       string            `json:"orderType" validate:"required,oneof=delivery pickup"`
	DeliveryAddress string            `json:"deliveryAddress" validate:"omitempty,max=500"`
	CustomerName    string            `json:"customerName" validate:"omitempty,max=100"`
	CustomerPhone   string            `json:"customerPhone" validate:"omitempty,ruphone"`
	CustomerEmail   string            `json:"customerEmail" validate:"omitempty,email,max=255"`
	Comment         string            `json:"comment" validate:"omitempty,max=500"`
	IdempotencyKey  string            `json:"idempotencyKey" validate:"omitempty,uuid4"`
}

func toPricingItems(items []CartItemPayload) []pricing.Item {
	out := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		out = append(out, pricing.Item{
			ID:     it.ID,
			Name:   it.Name,
			Price:  it.Price,
			Amount: it.Amount,
		})
	}
	return out
}

// recalculateCartHandler is the pricing authority endpoint: it recomputes
// totals server-side from the submitted items and reports whether the order
// may be submitted. The response is written flat (no data envelope) because
// it is the wire contract the mini-app's checkout client consumes.
func (app *application) recalculateCartHandler(w http.ResponseWriter, r *http.Request) {
	var payload RecalculateCartPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	quote, err := app.pricing.Quote(r.Context(), toPricingItems(payload.Items), pricing.OrderType(payload.OrderType))
	if err != nil {
		if errors.Is(err, pricing.ErrEmptyItems) || errors.Is(err, pricing.ErrInvalidAmount) {
			app.badRequestResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	resp := checkout.Quote{
		Success:     true,
		Subtotal:    quote.Subtotal,
		DeliveryFee: quote.DeliveryFee,
		Total:       quote.Total,
		MinOrder:    quote.MinOrder,
		CanSubmit:   quote.CanSubmit,
		Warnings:    quote.Warnings,
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
