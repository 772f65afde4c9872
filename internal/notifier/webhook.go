package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/good-yellow-bee/netwatch/internal/models"
)

// validateWebhookURL requires an HTTPS endpoint.
func validateWebhookURL(u string) error {
	if u == "" {
		return fmt.Errorf("webhook URL is required")
	}
	if !strings.HasPrefix(u, "https://") {
		return fmt.Errorf("webhook URL must use HTTPS")
	}
	return nil
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// postJSON posts payload to url and treats any 2xx as success.
func postJSON(ctx context.Context, client *http.Client, service, url string, payload any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s API error: status %d, body: %s", service, resp.StatusCode, string(body))
	}
	return nil
}

func title(alert *models.Alert) string {
	return fmt.Sprintf("NetWatch %s: %s on %s", strings.ToUpper(string(alert.Severity)), alert.MetricType, alert.DeviceID)
}

func formatFloat(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 MST")
}
