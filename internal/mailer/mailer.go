package mailer

import "embed"

const (
	FromName               = "Тарелка"
	maxRetries             = 3
	OrderConfirmedTemplate = "order_confirmed.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
