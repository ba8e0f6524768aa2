package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labwise/lab-api/internal/config"
	"github.com/labwise/lab-api/internal/email"
	"github.com/labwise/lab-api/internal/model"
	"github.com/labwise/lab-api/pkg/logger"
	"github.com/labwise/lab-api/pkg/messaging"
	"github.com/labwise/lab-api/pkg/metrics"
)

const (
	defaultChannel       = "alerts"
	defaultRetryAttempts = 3
	defaultRetryDelay    = 5 * time.Second
)

// Notifier delivers critical-value alerts to the configured channels.
type Notifier interface {
	Notify(ctx context.Context, alert *model.CriticalAlert) error
}

type Service struct {
	cfg      config.AlertsConfig
	emailSvc email.Service
	broker   messaging.Broker
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(cfg config.AlertsConfig, emailSvc email.Service, broker messaging.Broker, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		cfg:      cfg,
		emailSvc: emailSvc,
		broker:   broker,
		logger:   log,
		metrics:  m,
	}
}

// Notify dispatches the alert in the background so submission latency
// never waits on SMTP or the broker.
func (s *Service) Notify(ctx context.Context, alert *model.CriticalAlert) error {
	if !s.cfg.Enabled {
		return nil
	}
	if alert == nil {
		return fmt.Errorf("alert is required")
	}

	go func() {
		if err := s.Deliver(context.Background(), alert); err != nil {
			s.logger.Error(err, "failed to deliver critical alert",
				"record_id", alert.RecordID.String(), "patient_id", alert.PatientID)
		}
	}()
	return nil
}

// Deliver sends the alert to every configured channel synchronously.
// A failed channel does not stop the others.
func (s *Service) Deliver(ctx context.Context, alert *model.CriticalAlert) error {
	var errs []error

	if s.broker != nil {
		if err := s.publish(ctx, alert); err != nil {
			s.metrics.AlertsSent.WithLabelValues("failed").Inc()
			errs = append(errs, fmt.Errorf("failed to publish alert: %w", err))
		} else {
			s.metrics.AlertsSent.WithLabelValues("sent").Inc()
		}
	}

	if s.emailSvc != nil && len(s.cfg.Recipients) > 0 {
		if err := s.sendEmail(ctx, alert); err != nil {
			s.metrics.AlertsSent.WithLabelValues("failed").Inc()
			errs = append(errs, fmt.Errorf("failed to email alert: %w", err))
		} else {
			s.metrics.AlertsSent.WithLabelValues("sent").Inc()
		}
	}

	return errors.Join(errs...)
}

func (s *Service) publish(ctx context.Context, alert *model.CriticalAlert) error {
	return s.withRetry(ctx, func() error {
		return s.broker.Publish(ctx, s.channel(), alert)
	})
}

func (s *Service) sendEmail(ctx context.Context, alert *model.CriticalAlert) error {
	content := email.AlertContent{
		PatientName: alert.PatientName,
		Parameters:  alert.Parameters,
		Patterns:    alert.Patterns,
	}
	return s.withRetry(ctx, func() error {
		return s.emailSvc.SendCriticalAlert(ctx, s.cfg.Recipients, content)
	})
}

func (s *Service) withRetry(ctx context.Context, fn func() error) error {
	attempts := s.cfg.RetryAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	delay := s.cfg.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return err
}

func (s *Service) channel() string {
	if s.cfg.Channel != "" {
		return s.cfg.Channel
	}
	return defaultChannel
}
