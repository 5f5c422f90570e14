package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/Engrjalalkhan/easydoctor/internal/config"
)

type Service interface {
	SendBookingCancelled(ctx context.Context, to, patientName string, date time.Time) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendBookingCancelled(_ context.Context, to, patientName string, date time.Time) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your appointment was cancelled")
	m.SetBody("text/plain", fmt.Sprintf(
		"Dear %s,\n\nYour appointment on %s has been cancelled by the doctor. "+
			"Please book a new slot if you still need a consultation.\n",
		patientName, date.Format("Monday, 2 January 2006"),
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send cancellation notice: %w", err)
	}
	return nil
}

// Noop discards notifications; used when SMTP is disabled.
type Noop struct{}

func (Noop) SendBookingCancelled(context.Context, string, string, time.Time) error {
	return nil
}
