// Package notify is the fire-and-forget toast surface. Nothing awaits a
// notification and no contract depends on one being delivered.
package notify

import "go.uber.org/zap"

// Notifier receives user-facing success and error toasts.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// LogNotifier writes toasts to the structured log. Headless deployments
// and tests use it in place of a UI surface.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(message string) {
	n.logger.Info("toast", zap.String("level", "success"), zap.String("message", message))
}

func (n *LogNotifier) Error(message string) {
	n.logger.Warn("toast", zap.String("level", "error"), zap.String("message", message))
}

// Noop discards all notifications.
type Noop struct{}

func (Noop) Success(string) {}
func (Noop) Error(string)   {}
