package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/adebayoakin/gearmart-backend/pkg/config"
	"github.com/adebayoakin/gearmart-backend/pkg/db/models"
	"github.com/adebayoakin/gearmart-backend/pkg/logger"
)

var confirmationTmpl = template.Must(template.New("order_confirmation").Parse(
	`From: {{.From}}
To: {{.To}}
Subject: Order {{.Order.OrderNumber}} confirmed

Hi {{.Order.FirstName}},

Thanks for your order! Payment for order {{.Order.OrderNumber}} has been
received.

{{range .Order.Items}}  {{.Quantity}} x {{.ProductName}} — {{$.Currency}} {{.LineTotal}}
{{end}}
Total: {{.Currency}} {{.Order.Total}}

We'll let you know when it ships.
`))

// SMTPMailer sends transactional mail over plain SMTP. When the transport is
// not configured it degrades to a logged no-op, so environments without an
// SMTP relay still complete checkouts.
type SMTPMailer struct {
	cfg  config.MailConfig
	logg *logger.Logger
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer builds the mailer.
func NewSMTPMailer(cfg config.MailConfig, logg *logger.Logger) (*SMTPMailer, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &SMTPMailer{cfg: cfg, logg: logg, send: smtp.SendMail}, nil
}

// SendOrderConfirmation renders and sends the payment confirmation for an
// order.
func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	if !m.cfg.Enabled() {
		m.logg.Info(m.logg.WithOrderNumber(ctx, order.OrderNumber),
			"mail transport disabled, skipping order confirmation")
		return nil
	}

	var body bytes.Buffer
	err := confirmationTmpl.Execute(&body, map[string]any{
		"From":     m.cfg.From,
		"To":       order.Email,
		"Order":    order,
		"Currency": order.Currency.String(),
	})
	if err != nil {
		return fmt.Errorf("render confirmation email: %w", err)
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, []string{order.Email}, body.Bytes()); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	m.logg.Info(m.logg.WithOrderNumber(ctx, order.OrderNumber), "order confirmation sent")
	return nil
}
