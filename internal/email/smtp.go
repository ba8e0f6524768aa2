package email

import (
	"context"
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/labwise/lab-api/internal/config"
)

type smtpService struct {
	cfg    config.EmailConfig
	dialer *gomail.Dialer
}

func NewSMTPService(cfg config.EmailConfig) Service {
	return &smtpService{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *smtpService) SendCriticalAlert(ctx context.Context, to []string, alert AlertContent) error {
	subject := fmt.Sprintf("Critical lab values for %s", alert.PatientName)
	return s.SendCustom(ctx, to, subject, renderAlertBody(alert))
}

func (s *smtpService) SendCustom(ctx context.Context, to []string, subject string, content string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func renderAlertBody(alert AlertContent) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h2>Critical lab values for %s</h2>", alert.PatientName))
	if len(alert.Parameters) > 0 {
		b.WriteString("<p>Parameters outside critical thresholds:</p><ul>")
		for _, p := range alert.Parameters {
			b.WriteString(fmt.Sprintf("<li>%s</li>", p))
		}
		b.WriteString("</ul>")
	}
	if len(alert.Patterns) > 0 {
		b.WriteString("<p>Detected patterns:</p><ul>")
		for _, p := range alert.Patterns {
			b.WriteString(fmt.Sprintf("<li>%s</li>", p))
		}
		b.WriteString("</ul>")
	}
	b.WriteString("<p>Immediate clinical review is recommended.</p>")
	return b.String()
}
