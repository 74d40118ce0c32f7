// Package notify posts an optional run summary to a Slack incoming webhook.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"ghasreport/internal/engine"
)

type Notifier struct {
	webhookURL string
}

// New returns a Notifier for the given incoming-webhook URL. An empty URL
// yields a disabled notifier whose PostSummary is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{webhookURL: webhookURL}
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.webhookURL != ""
}

// PostSummary sends a plain-text run summary to the webhook.
func (n *Notifier) PostSummary(ctx context.Context, s *engine.Summary) error {
	if !n.Enabled() || s == nil {
		return nil
	}
	return slack.PostWebhookContext(ctx, n.webhookURL, &slack.WebhookMessage{
		Text: FormatSummary(s),
	})
}

// FormatSummary renders the per-feature outcomes as a Slack message body.
func FormatSummary(s *engine.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "GitHub security report for %s %q\n", s.Scope, s.ScopeName)
	for _, o := range s.Outcomes {
		if o.Skipped {
			fmt.Fprintf(&b, "- %s: skipped (%s)\n", o.Feature, o.SkipReason)
			continue
		}
		if o.Rows == 0 {
			fmt.Fprintf(&b, "- %s: no alerts\n", o.Feature)
			continue
		}
		fmt.Fprintf(&b, "- %s: %d alert(s) in %s\n", o.Feature, o.Rows, o.File)
	}
	fmt.Fprintf(&b, "Total: %d alert(s), %d feature(s) skipped.", s.TotalRows(), s.SkippedCount())
	return b.String()
}
