package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"gopkg.in/gomail.v2"
)

var ErrNoRecipient = errors.New("order has no customer email")

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender delivers confirmations through an SMTP relay guarded by a circuit breaker.
type SMTPSender struct {
	dialer   dialer
	renderer *Renderer
	breaker  *gobreaker.CircuitBreaker[struct{}]
	from     string
	fromName string
}

func NewSMTPSender(cfg SMTPConfig, renderer *Renderer, breaker *gobreaker.CircuitBreaker[struct{}]) *SMTPSender {
	return &SMTPSender{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		renderer: renderer,
		breaker:  breaker,
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

func (s *SMTPSender) SendOrderEmail(ctx context.Context, order domain.OrderRecord) (string, error) {
	if strings.TrimSpace(order.CustomerEmail) == "" {
		return "", ErrNoRecipient
	}

	content, err := s.renderer.Render(order)
	if err != nil {
		return "", err
	}

	messageID := newMessageID(s.from)
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", order.CustomerEmail)
	m.SetHeader("Subject", content.Subject)
	m.SetHeader("Message-ID", messageID)
	m.SetBody("text/plain", content.Text)
	m.AddAlternative("text/html", content.HTML)

	// gomail dials without a context
	if err := ctx.Err(); err != nil {
		return "", err
	}

	_, err = s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.dialer.DialAndSend(m)
	})
	if err != nil {
		return "", fmt.Errorf("smtp send failed: %w", err)
	}
	return messageID, nil
}

func newMessageID(from string) string {
	host := "woofcrafts.local"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		host = from[i+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), host)
}
