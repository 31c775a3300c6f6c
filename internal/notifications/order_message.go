package notifications

import (
	"fmt"
	"html"
	"strings"

	"tarelka/internal/domain/orders"
)

// NewOrderMessage formats the announcement posted to the restaurant channel
// when an order is accepted. The message is sent with parse_mode HTML, so
// every customer-supplied field is escaped; a raw "<" or "&" would make the
// Bot API reject the whole message with "can't parse entities".
func NewOrderMessage(o *orders.Order, items []orders.NewOrderItem) string {
	var b strings.Builder

	orderKind := "Самовывоз"
	if o.OrderType == "delivery" {
		orderKind = "Доставка"
	}

	fmt.Fprintf(&b, "<b>Новый заказ %s</b>\n", o.OrderNumber)
	fmt.Fprintf(&b, "%s · %s · %s\n\n", orderKind, html.EscapeString(o.CustomerName), o.CustomerPhone)

	for _, it := range items {
		fmt.Fprintf(&b, "• %s × %d — %d₽\n", html.EscapeString(it.Name), it.Quantity, it.UnitPrice*it.Quantity)
	}

	if o.DeliveryFee > 0 {
		fmt.Fprintf(&b, "\nДоставка: %d₽", o.DeliveryFee)
	}
	fmt.Fprintf(&b, "\n<b>Итого: %d₽</b>", o.Total)

	if o.DeliveryAddress != nil && *o.DeliveryAddress != "" {
		fmt.Fprintf(&b, "\nАдрес: %s", html.EscapeString(*o.DeliveryAddress))
	}
	if o.Comment != nil && *o.Comment != "" {
		fmt.Fprintf(&b, "\nКомментарий: %s", html.EscapeString(*o.Comment))
	}

	return b.String()
}
