package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"blogsite/internal/config"
	"blogsite/internal/logger"
)

// Mailer отправляет письма. Ядро не ждёт результата доставки - для
// него отправка fire-and-forget.
type Mailer interface {
	Send(to, subject, body string) error
	SendAsync(to, subject, body string)
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
		from:   cfg.SMTP.From,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("ошибка при отправке письма: %w", err)
	}

	return nil
}

// SendAsync отправляет письмо в отдельной горутине, чтобы не
// задерживать транзакцию регистрации. Сбой доставки только логируется.
func (m *SMTPMailer) SendAsync(to, subject, body string) {
	go func() {
		if err := m.Send(to, subject, body); err != nil {
			logger.Error.Printf("Не удалось отправить письмо на %s: %v", to, err)
		}
	}()
}
