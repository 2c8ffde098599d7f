// Package mailer sends outbound notification email. Delivery is a
// best-effort side channel: a missing SMTP config disables it without
// touching the rest of the system.
package mailer

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	log      *slog.Logger
}

func New(host string, port int, username, password, from string, log *slog.Logger) *Mailer {
	return &Mailer{host: host, port: port, username: username, password: password, from: from, log: log}
}

func (m *Mailer) enabled() bool { return m.host != "" }

func (m *Mailer) send(to, subject, body string) error {
	if !m.enabled() {
		m.log.Info("mail delivery disabled, skipping", "to", to, "subject", subject)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.host, m.port, m.username, m.password)
	return d.DialAndSend(msg)
}

func (m *Mailer) SendReceipt(to, invoiceNumber string, amountCents int64, currency string) error {
	subject := "Payment received for invoice " + invoiceNumber
	body := fmt.Sprintf(
		"We received your payment of %.2f %s for invoice %s. Thank you.",
		float64(amountCents)/100, currency, invoiceNumber,
	)
	return m.send(to, subject, body)
}
