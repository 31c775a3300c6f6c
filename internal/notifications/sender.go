package notifications

import "context"

// Sender is an abstraction over any channel that announces new orders to
// the restaurant (Telegram channel, SMS gateway, ...).
type Sender interface {
	Send(ctx context.Context, text string) error
}
