package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marquee/internal/config"
)

const userAgent = "marquee/0.1"

// WarmupSummary is the outcome of one cache warm-up run.
type WarmupSummary struct {
	Combinations int
	Completed    int
	Failed       int
	Results      int
	Cancelled    bool
	Duration     time.Duration
}

// Service is the notification surface used by the CLI.
type Service interface {
	NotifyWarmupCompleted(ctx context.Context, summary WarmupSummary) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
	Enabled() bool
}

// NewService builds an ntfy-backed notifier, or a no-op one without a topic.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
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

func (n *ntfyService) Enabled() bool { return true }

func (n *ntfyService) NotifyWarmupCompleted(ctx context.Context, summary WarmupSummary) error {
	title := "marquee - Cache Warmed"
	tags := []string{"marquee", "warmup", "completed"}
	priority := ""
	switch {
	case summary.Cancelled:
		title = "marquee - Warm-up Stopped"
		tags[2] = "cancelled"
	case summary.Failed > 0:
		tags[2] = "partial"
		priority = "high"
	}
	message := fmt.Sprintf("%d/%d queries completed, %d failed, %d titles returned",
		summary.Completed, summary.Combinations, summary.Failed, summary.Results)
	if summary.Duration > 0 {
		message += fmt.Sprintf("\nDuration: %s", summary.Duration.Round(time.Second))
	}
	return n.send(ctx, payload{title: title, message: message, tags: tags, priority: priority})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if err == nil {
		return nil
	}
	var builder strings.Builder
	if label := strings.TrimSpace(contextLabel); label != "" {
		builder.WriteString(label)
		builder.WriteString(": ")
	}
	builder.WriteString(err.Error())
	return n.send(ctx, payload{
		title:    "marquee - Error",
		message:  builder.String(),
		tags:     []string{"marquee", "error"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "marquee - Test",
		message:  "Notification system test",
		tags:     []string{"marquee", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
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
	if data.priority != "" {
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

func (noopService) Enabled() bool                                              { return false }
func (noopService) NotifyWarmupCompleted(context.Context, WarmupSummary) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error           { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
