package email

import (
	"context"
)

type Service interface {
	SendCriticalAlert(ctx context.Context, to []string, alert AlertContent) error
	SendCustom(ctx context.Context, to []string, subject string, content string) error
}

// AlertContent carries the rendered parts of a critical-value notification.
type AlertContent struct {
	PatientName string
	Parameters  []string
	Patterns    []string
}
