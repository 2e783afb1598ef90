package notify

import (
	"context"
	"fmt"
	"io"
	"os"
)

// TerminalNotifier writes notifications to a terminal writer. It is the
// default channel so a scan with no delivery configured still shows its
// report.
type TerminalNotifier struct {
	writer  io.Writer
	enabled bool
}

// NewTerminalNotifier creates a terminal channel writing to stdout.
func NewTerminalNotifier() *TerminalNotifier {
	return &TerminalNotifier{
		writer:  os.Stdout,
		enabled: true,
	}
}

// Name returns the name of the notifier.
func (t *TerminalNotifier) Name() string {
	return "terminal"
}

// IsEnabled returns whether the notifier is enabled.
func (t *TerminalNotifier) IsEnabled() bool {
	return t.enabled
}

// Send writes the notification to the terminal.
func (t *TerminalNotifier) Send(ctx context.Context, n Notification) error {
	_, err := fmt.Fprintf(t.writer, "\n=== %s ===\n%s\n", n.Title, n.Message)
	return err
}
