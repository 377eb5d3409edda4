// Package notify defines the notification interface and implementations
// for operational alert delivery.
package notify

import "context"

// Severity classifies an alert for display purposes.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert describes a provider connectivity event worth telling an operator
// about, such as a credential that could not be refreshed.
type Alert struct {
	Title    string
	Provider string
	TenantID string
	Severity Severity
	Detail   string
}

// Notifier defines the interface for sending operational alerts.
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
}
