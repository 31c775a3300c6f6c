package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tarelka/internal/domain/orders"
	"tarelka/internal/mailer"
	"tarelka/internal/notifications"
	"tarelka/internal/params"
	"tarelka/internal/pricing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CreateOrderPayload struct {
	Items           []CartItemPayload `json:"items" validate:"required,min=1,dive"`
	OrderType       string            `json:"orderType" validate:"required,oneof=delivery pickup"`
	DeliveryAddress string            `json:"deliveryAddress" validate:"required_if=OrderType delivery,omitempty,max=500"`
	CustomerName    string            `json:"customerName" validate:"required,max=100"`
	CustomerPhone   string            `json:"customerPhone" validate:"required,ruphone"`
	CustomerEmail   string            `json:"customerEmail" validate:"omitempty,email,max=255"`
	Comment         string            `json:"comment" validate:"omitempty,max=500"`
	IdempotencyKey  string            `json:"idempotencyKey" validate:"omitempty,uuid4"`
}

type OrderCreatedResponse struct {
	OrderNumber string `json:"order_number"`
	Total       int    `json:"total"`
	Status      string `json:"status"`
}

// createOrderHandler runs the full checkout: server-side recalculation
// first, persistence only when the pricing gate passes. The charged amount
// is always the engine's quote, never the client's sum.
func (app *application) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateOrderPayload
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

	if !quote.CanSubmit {
		type rejected struct {
			Success  bool     `json:"success"`
			Message  string   `json:"message"`
			Warnings []string `json:"warnings"`
		}
		writeJSON(w, http.StatusUnprocessableEntity, rejected{
			Success:  false,
			Message:  "заказ не может быть оформлен",
			Warnings: quote.Warnings,
		})
		return
	}

	in := &orders.NewOrder{
		CustomerName:  payload.CustomerName,
		CustomerPhone: payload.CustomerPhone,
		OrderType:     payload.OrderType,
		Subtotal:      quote.Subtotal,
		DeliveryFee:   quote.DeliveryFee,
		Total:         quote.Total,
	}
	if payload.OrderType == "delivery" {
		in.DeliveryAddress = &payload.DeliveryAddress
	}
	if payload.Comment != "" {
		in.Comment = &payload.Comment
	}
	// Clients that retry submissions send their own key; for the rest we
	// mint one so the stored column stays uniform.
	key := payload.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	in.IdempotencyKey = &key
	// Persist the quote's resolved lines, not the client's: when the menu
	// price overrode a stale snapshot, only the resolved unit prices sum to
	// the stored subtotal.
	for _, it := range quote.Items {
		in.Items = append(in.Items, orders.NewOrderItem{
			MenuItemID: it.ID,
			Name:       it.Name,
			UnitPrice:  it.Price,
			Quantity:   it.Amount,
		})
	}

	order, err := app.orders.Create(r.Context(), in)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if customer := getCustomerFromContext(r); customer != nil {
		app.logger.Infow("order placed via mini-app",
			"order", order.OrderNumber,
			"telegram_id", customer.ID,
			"telegram_username", customer.Username,
		)
	}

	app.notifyOrderAccepted(order, in.Items, payload.CustomerEmail)

	resp := OrderCreatedResponse{
		OrderNumber: order.OrderNumber,
		Total:       order.Total,
		Status:      order.Status,
	}
	if err := app.jsonResponse(w, http.StatusCreated, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// notifyOrderAccepted fans out the restaurant channel message and the
// customer email in the background; notification failures are logged, never
// surfaced, because the order is already committed.
func (app *application) notifyOrderAccepted(order *orders.Order, items []orders.NewOrderItem, email string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := app.notifier.Send(ctx, notifications.NewOrderMessage(order, items)); err != nil {
			app.logger.Errorw("telegram notification failed", "order", order.OrderNumber, "error", err)
		}
	}()

	if email == "" {
		return
	}

	go func() {
		type mailLine struct {
			Name      string
			Quantity  int
			LineTotal int
		}
		lines := make([]mailLine, 0, len(items))
		for _, it := range items {
			lines = append(lines, mailLine{Name: it.Name, Quantity: it.Quantity, LineTotal: it.UnitPrice * it.Quantity})
		}

		_, err := app.mailer.Send(mailer.OrderConfirmedTemplate, order.CustomerName, email, map[string]any{
			"OrderNumber":  order.OrderNumber,
			"CustomerName": order.CustomerName,
			"Items":        lines,
			"Subtotal":     order.Subtotal,
			"DeliveryFee":  order.DeliveryFee,
			"Total":        order.Total,
		})
		if err != nil {
			app.logger.Errorw("confirmation email failed", "order", order.OrderNumber, "error", err)
		}
	}()
}

func (app *application) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "orderNumber")

	detail, err := app.orders.GetByNumber(r.Context(), number)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, detail); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())
	status := r.URL.Query().Get("status")

	list, total, err := app.orders.ListRecent(r.Context(), status, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	resp := struct {
		Orders     []orders.Order    `json:"orders"`
		Pagination params.Pagination `json:"pagination"`
	}{Orders: list, Pagination: p}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateOrderStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=accepted cooking delivering done cancelled"`
}

func (app *application) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid order id"))
		return
	}

	var payload UpdateOrderStatusPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.orders.UpdateStatus(r.Context(), orderID, payload.Status); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"status": payload.Status}); err != nil {
		app.internalServerError(w, r, err)
	}
}
