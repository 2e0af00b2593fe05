// Package notify delivers operator alerts to chat channels. Notifications are
// dispatched to every registered sender and can be filtered by event type.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Event types.
const (
	EventApprovalsMissing = "approvals_missing"
	EventApprovalsOK      = "approvals_ok"
)

// Sender is the interface that each notification channel must implement.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Notifier dispatches notifications to one or more Senders. Only events whose
// type is in the allowed set are forwarded; an empty set allows everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to senders.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		if e = strings.TrimSpace(e); e != "" {
			allowed[e] = true
		}
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Enabled reports whether at least one sender is configured.
func (n *Notifier) Enabled() bool {
	return len(n.senders) > 0
}

// Notify sends a notification to all senders if event passes the filter.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out", slog.String("event", event))
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// ApprovalsMissing reports the spenders a Safe still has to approve.
func (n *Notifier) ApprovalsMissing(ctx context.Context, safe string, missing []string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Safe %s is missing %d approval(s):", safe, len(missing))
	for _, m := range missing {
		b.WriteString("\n- ")
		b.WriteString(m)
	}
	return n.Notify(ctx, EventApprovalsMissing, "Polymarket approvals missing", b.String())
}

// dispatch sends to every sender. A failing sender does not stop delivery to
// the rest; failures are joined into the returned error.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
