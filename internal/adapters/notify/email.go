package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/alejandrodnm/pumpbot/internal/domain"
)

// Email implementa ports.Notifier por SMTP. Best-effort por contrato: el
// caller loguea el error y sigue.
type Email struct {
	host      string
	port      int
	user      string
	pass      string
	recipient string

	// send permite stubear el envío en tests.
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmail crea un notificador SMTP.
func NewEmail(host string, port int, user, pass, recipient string) *Email {
	return &Email{
		host:      host,
		port:      port,
		user:      user,
		pass:      pass,
		recipient: recipient,
		send:      smtp.SendMail,
	}
}

// Notify envía el evento como email de texto plano.
func (e *Email) Notify(_ context.Context, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		e.user, e.recipient, subject, body)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.user, e.pass, e.host)

	if err := e.send(addr, auth, e.user, []string{e.recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("notify.Email: send %q: %w", subject, err)
	}
	return nil
}

// ReportPositions no aplica por email: sería una tabla por ciclo cada 10
// minutos en la bandeja del operador.
func (e *Email) ReportPositions(context.Context, []domain.Position) error {
	return nil
}
