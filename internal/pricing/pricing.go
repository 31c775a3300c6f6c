package pricing

import (
	"context"
	"errors"
	"fmt"
)

type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
)

var (
	ErrEmptyItems    = errors.New("item list is empty")
	ErrInvalidAmount = errors.New("item amount must be > 0")
)

// Item is one submitted cart line as received from the client. Price is the
// client's snapshot and is only a fallback; the engine resolves the current
// menu price per id.
type Item struct {
	ID     string
	Name   string
	Price  int
	Amount int
}

// Quote is the authoritative recalculation result. Clients must display and
// charge Quote.Total, never their locally computed sum.
//
// Items echoes the submitted lines with Price replaced by the resolved menu
// price. Anything persisted or announced from a quote must use these lines,
// otherwise stored line totals drift from Subtotal when a menu price
// overrode a stale client price.
type Quote struct {
	Subtotal    int
	DeliveryFee int
	Total       int
	MinOrder    int
	CanSubmit   bool
	Warnings    []string
	Items       []Item
}

// PriceSource resolves current unit prices for menu item ids. Ids missing
// from the result are simply unknown to the menu.
type PriceSource interface {
	PricesByIDs(ctx context.Context, ids []string) (map[string]int, error)
}

type Config struct {
	DeliveryFee      int
	FreeDeliveryOver int // 0 disables free delivery
	MinOrder         int
}

// Engine recomputes order totals server-side. Client-submitted totals are
// never trusted; only per-item quantities and, for ids the menu no longer
// knows, the submitted unit price.
type Engine struct {
	prices PriceSource
	cfg    Config
}

func NewEngine(prices PriceSource, cfg Config) *Engine {
	return &Engine{prices: prices, cfg: cfg}
}

func (e *Engine) Quote(ctx context.Context, items []Item, orderType OrderType) (*Quote, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it.Amount <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, it.ID)
		}
		ids = append(ids, it.ID)
	}

	current, err := e.prices.PricesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve prices: %w", err)
	}

	subtotal := 0
	resolved := make([]Item, 0, len(items))
	for _, it := range items {
		if p, ok := current[it.ID]; ok {
			it.Price = p
		}
		subtotal += it.Price * it.Amount
		resolved = append(resolved, it)
	}

	fee := 0
	if orderType == OrderTypeDelivery {
		fee = e.cfg.DeliveryFee
		if e.cfg.FreeDeliveryOver > 0 && subtotal >= e.cfg.FreeDeliveryOver {
			fee = 0
		}
	}

	q := &Quote{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal + fee,
		MinOrder:    e.cfg.MinOrder,
		CanSubmit:   true,
		Items:       resolved,
	}

	if subtotal < e.cfg.MinOrder {
		q.CanSubmit = false
		q.Warnings = append(q.Warnings, fmt.Sprintf("Минимальная сумма заказа %d₽", e.cfg.MinOrder))
	}

	return q, nil
}
