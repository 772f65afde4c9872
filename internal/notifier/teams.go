package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/good-yellow-bee/netwatch/internal/models"
)

// TeamsConfig holds Microsoft Teams webhook configuration.
type TeamsConfig struct {
	WebhookURL string // Teams incoming webhook URL
}

// Validate validates the Teams configuration.
func (c *TeamsConfig) Validate() error {
	return validateWebhookURL(c.WebhookURL)
}

// TeamsNotifier sends alerts to Microsoft Teams via webhook.
type TeamsNotifier struct {
	config     TeamsConfig
	httpClient *http.Client
}

// NewTeamsNotifier creates a new Teams notifier.
func NewTeamsNotifier(config TeamsConfig) (*TeamsNotifier, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid teams config: %w", err)
	}
	return &TeamsNotifier{config: config, httpClient: newHTTPClient()}, nil
}

// Name returns "teams".
func (t *TeamsNotifier) Name() string {
	return "teams"
}

// Send sends an alert to Microsoft Teams.
func (t *TeamsNotifier) Send(ctx context.Context, alert *models.Alert) error {
	return postJSON(ctx, t.httpClient, "teams", t.config.WebhookURL, t.buildPayload(alert))
}

// Close is a no-op for Teams notifier.
func (t *TeamsNotifier) Close() error {
	return nil
}

type teamsMessage struct {
	Type        string            `json:"type"`
	Attachments []teamsAttachment `json:"attachments"`
}

type teamsAttachment struct {
	ContentType string       `json:"contentType"`
	ContentURL  *string      `json:"contentUrl"`
	Content     adaptiveCard `json:"content"`
}

type adaptiveCard struct {
	Schema  string        `json:"$schema"`
	Type    string        `json:"type"`
	Version string        `json:"version"`
	Body    []cardElement `json:"body"`
}

// cardElement covers the Container, TextBlock and FactSet elements the
// alert card uses. Unused fields are omitted per element type.
type cardElement struct {
	Type   string        `json:"type"`
	Text   string        `json:"text,omitempty"`
	Size   string        `json:"size,omitempty"`
	Weight string        `json:"weight,omitempty"`
	Color  string        `json:"color,omitempty"`
	Style  string        `json:"style,omitempty"`
	Wrap   bool          `json:"wrap,omitempty"`
	Items  []cardElement `json:"items,omitempty"`
	Facts  []cardFact    `json:"facts,omitempty"`
}

type cardFact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

func text(s string) cardElement {
	return cardElement{Type: "TextBlock", Text: s, Wrap: true}
}

func (t *TeamsNotifier) buildPayload(alert *models.Alert) teamsMessage {
	emoji := severityEmoji(alert.Severity)

	header := text(emoji + " " + title(alert))
	header.Size, header.Weight = "Large", "Bolder"

	footer := text("_Alert " + alert.ID + "_")
	footer.Color = "light"

	card := adaptiveCard{
		Schema:  "http://adaptivecards.io/schemas/adaptive-card.json",
		Type:    "AdaptiveCard",
		Version: "1.4",
		Body: []cardElement{
			{Type: "Container", Style: teamsSeverityStyle(alert.Severity), Items: []cardElement{header}},
			{Type: "FactSet", Facts: []cardFact{
				{"Device", alert.DeviceID},
				{"Metric", alert.MetricType},
				{"Severity", emoji + " " + strings.ToUpper(string(alert.Severity))},
				{"Value", formatFloat(alert.Value)},
				{"Threshold", formatFloat(alert.Threshold)},
				{"Raised", formatTime(alert.RaisedAt)},
			}},
			text("**Message:** " + alert.Message),
			footer,
		},
	}

	return teamsMessage{
		Type: "message",
		Attachments: []teamsAttachment{
			{ContentType: "application/vnd.microsoft.card.adaptive", Content: card},
		},
	}
}

// teamsSeverityStyle returns an Adaptive Card container style for the severity level.
func teamsSeverityStyle(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical, models.SeverityError:
		return "attention"
	case models.SeverityWarning:
		return "warning"
	default:
		return "default"
	}
}
