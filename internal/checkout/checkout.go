package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tarelka/internal/cart"
)

const (
	OrderTypeDelivery = "delivery"
	OrderTypePickup   = "pickup"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrNoAddress = errors.New("delivery address is required")
)

// Item is one cart line on the wire, as the pricing authority expects it.
type Item struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Price  int    `json:"price"`
	Amount int    `json:"amount"`
}

// Request is the payload sent to the remote pricing authority.
type Request struct {
	Items           []Item `json:"items"`
	OrderType       string `json:"orderType"`
	DeliveryAddress string `json:"deliveryAddress,omitempty"`
	CustomerName    string `json:"customerName"`
	CustomerPhone   string `json:"customerPhone"`
	Comment         string `json:"comment,omitempty"`
}

// Quote is the authority's response. Total is the amount to charge; the
// locally computed cart total is advisory only.
type Quote struct {
	Success     bool     `json:"success"`
	Subtotal    int      `json:"subtotal"`
	DeliveryFee int      `json:"deliveryFee"`
	Total       int      `json:"total"`
	MinOrder    int      `json:"minOrder,omitempty"`
	CanSubmit   bool     `json:"canSubmit"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Customer holds the user-supplied order metadata collected before submission.
type Customer struct {
	Name    string
	Phone   string
	Address string
	Comment string
}

// State of a checkout attempt.
type State int

const (
	Idle State = iota
	Submitting
	Accepted
	Rejected
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Authority is the remote pricing/validation service the reconciler submits to.
type Authority interface {
	Recalculate(ctx context.Context, req Request) (*Quote, error)
}

// Result of a submission that reached the authority. For Rejected results
// AmountToPay is zero and Warnings carries the server's reasons verbatim.
type Result struct {
	State       State
	Quote       *Quote
	AmountToPay int
	Warnings    []string
}

// Reconciler submits the cart to the pricing authority and adopts its
// response as the final pricing. One network attempt per Submit call; any
// retry is a fresh call initiated by the user. The reconciler never mutates
// the cart, so a failed submission leaves it exactly as it was.
type Reconciler struct {
	authority Authority
	state     State
}

func NewReconciler(a Authority) *Reconciler {
	return &Reconciler{authority: a, state: Idle}
}

// State reports the outcome of the most recent attempt. It is informational;
// Submit always starts a fresh Idle → Submitting cycle.
func (r *Reconciler) State() State {
	return r.state
}

// Submit validates locally, snapshots the cart, and performs exactly one
// submission to the authority. Local validation failures return before any
// network use. Cart mutations made while the request is in flight do not
// affect the already-built payload.
func (r *Reconciler) Submit(ctx context.Context, s *cart.Store, orderType string, cust Customer) (*Result, error) {
	lines := s.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if orderType == OrderTypeDelivery && strings.TrimSpace(cust.Address) == "" {
		return nil, ErrNoAddress
	}

	req := buildRequest(lines, orderType, cust)

	r.state = Submitting
	quote, err := r.authority.Recalculate(ctx, req)
	if err != nil {
		r.state = Failed
		return nil, fmt.Errorf("submit checkout: %w", err)
	}

	if !quote.CanSubmit {
		r.state = Rejected
		return &Result{State: Rejected, Quote: quote, Warnings: quote.Warnings}, nil
	}

	r.state = Accepted
	return &Result{State: Accepted, Quote: quote, AmountToPay: quote.Total}, nil
}

func buildRequest(lines []cart.Line, orderType string, cust Customer) Request {
	items := make([]Item, 0, len(lines))
	for _, line := range lines {
		items = append(items, Item{
			ID:     line.ID,
			Name:   line.Name,
			Price:  line.UnitPrice,
			Amount: line.Quantity,
		})
	}

	req := Request{
		Items:         items,
		OrderType:     orderType,
		CustomerName:  cust.Name,
		CustomerPhone: cust.Phone,
		Comment:       cust.Comment,
	}
	if orderType == OrderTypeDelivery {
		req.DeliveryAddress = cust.Address
	}
	return req
}
