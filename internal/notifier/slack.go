package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/good-yellow-bee/netwatch/internal/models"
)

// SlackConfig holds Slack webhook configuration.
type SlackConfig struct {
	WebhookURL string // Slack incoming webhook URL
}

// Validate validates the Slack configuration.
func (c *SlackConfig) Validate() error {
	return validateWebhookURL(c.WebhookURL)
}

// SlackNotifier sends alerts to Slack via webhook.
type SlackNotifier struct {
	config     SlackConfig
	httpClient *http.Client
}

// NewSlackNotifier creates a new Slack notifier.
func NewSlackNotifier(config SlackConfig) (*SlackNotifier, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid slack config: %w", err)
	}
	return &SlackNotifier{config: config, httpClient: newHTTPClient()}, nil
}

// Name returns "slack".
func (s *SlackNotifier) Name() string {
	return "slack"
}

// Send sends an alert to Slack.
func (s *SlackNotifier) Send(ctx context.Context, alert *models.Alert) error {
	return postJSON(ctx, s.httpClient, "slack", s.config.WebhookURL, s.buildPayload(alert))
}

// Close is a no-op for Slack notifier.
func (s *SlackNotifier) Close() error {
	return nil
}

// slackMessage represents the Slack webhook payload.
type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

// slackBlock represents a Slack Block Kit block.
type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Fields   []slackText `json:"fields,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

// slackText represents text in Slack Block Kit.
type slackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

func (s *SlackNotifier) buildPayload(alert *models.Alert) slackMessage {
	emoji := severityEmoji(alert.Severity)
	header := fmt.Sprintf("%s %s", emoji, title(alert))

	return slackMessage{
		Text: header,
		Blocks: []slackBlock{
			{
				Type: "header",
				Text: &slackText{Type: "plain_text", Text: header, Emoji: true},
			},
			{
				Type: "section",
				Fields: []slackText{
					{Type: "mrkdwn", Text: fmt.Sprintf("*Device:*\n%s", alert.DeviceID)},
					{Type: "mrkdwn", Text: fmt.Sprintf("*Metric:*\n%s", alert.MetricType)},
					{Type: "mrkdwn", Text: fmt.Sprintf("*Severity:*\n%s %s", emoji, strings.ToUpper(string(alert.Severity)))},
					{Type: "mrkdwn", Text: fmt.Sprintf("*Raised:*\n%s", formatTime(alert.RaisedAt))},
					{Type: "mrkdwn", Text: fmt.Sprintf("*Value:*\n%s", formatFloat(alert.Value))},
					{Type: "mrkdwn", Text: fmt.Sprintf("*Threshold:*\n%s", formatFloat(alert.Threshold))},
				},
			},
			{
				Type: "section",
				Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("*Message:*\n%s", alert.Message)},
			},
			{
				Type:     "context",
				Elements: []slackText{{Type: "mrkdwn", Text: fmt.Sprintf("Alert `%s`", alert.ID)}},
			},
		},
	}
}

// severityEmoji returns an emoji for the severity level.
func severityEmoji(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return "\U0001F534" // red circle
	case models.SeverityError:
		return "\U0001F7E0" // orange circle
	case models.SeverityWarning:
		return "\U0001F7E1" // yellow circle
	default:
		return "\u26AA" // white circle
	}
}
