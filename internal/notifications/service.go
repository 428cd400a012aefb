package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nutrilog/internal/config"
	"nutrilog/internal/events"
)

const userAgent = "nutrilog/0.1.0"

// Service defines the notification surface.
type Service interface {
	NotifyToast(ctx context.Context, message string, severity events.Severity) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyToast(ctx context.Context, message string, severity events.Severity) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}
	data := payload{
		title:   toastTitle(severity),
		message: message,
		tags:    []string{"nutrilog", string(severity), severity.Color()},
	}
	if severity == events.SeverityError {
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func toastTitle(severity events.Severity) string {
	switch severity {
	case events.SeveritySuccess:
		return "nutrilog - Logged"
	case events.SeverityWarning:
		return "nutrilog - Estimated"
	case events.SeverityError:
		return "nutrilog - Error"
	default:
		return "nutrilog"
	}
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "nutrilog - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"nutrilog", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyToast(context.Context, string, events.Severity) error { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
