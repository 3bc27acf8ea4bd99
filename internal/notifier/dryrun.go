package notifier

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/pfrederiksen/boatrace-collector/internal/collector"
)

// DryRunNotifier prints what would be posted without actually posting
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to stdout
func NewDryRunNotifier() *DryRunNotifier {
	return &DryRunNotifier{out: os.Stdout}
}

// WithOutput redirects the printed messages to w
func (n *DryRunNotifier) WithOutput(w io.Writer) *DryRunNotifier {
	n.out = w
	return n
}

// Notify prints the message that would be posted
func (n *DryRunNotifier) Notify(s collector.Summary) error {
	msg := formatSummary(s)
	_, err := fmt.Fprintf(n.out, "--- Post ---\n%s\n\n(Length: %d characters)\n", msg, utf8.RuneCountInString(msg))
	return err
}
