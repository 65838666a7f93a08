package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pelotarr/internal/config"
)

const userAgent = "Pelotarr/1.0"

// Service defines the notification surface exposed to the scanner.
type Service interface {
	NotifyScanStarted(ctx context.Context, pending int) error
	NotifyRaceAcquired(ctx context.Context, raceName, libraryPath string, sizeGB float64) error
	NotifyScanCompleted(ctx context.Context, acquired, failed int, duration time.Duration) error
	NotifyFeedRefreshed(ctx context.Context, category string, added int) error
	NotifyError(ctx context.Context, err error, context string) error
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

func (n *ntfyService) NotifyScanStarted(ctx context.Context, pending int) error {
	data := payload{
		title:   "Pelotarr - Scan Started",
		message: fmt.Sprintf("Scanning %d unacquired races", pending),
		tags:    []string{"pelotarr", "scan", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRaceAcquired(ctx context.Context, raceName, libraryPath string, sizeGB float64) error {
	raceName = strings.TrimSpace(raceName)
	message := fmt.Sprintf("Acquired: %s (%.2f GB)", raceName, sizeGB)
	if libraryPath = strings.TrimSpace(libraryPath); libraryPath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, libraryPath)
	}
	data := payload{
		title:    "Pelotarr - Race Acquired",
		message:  message,
		tags:     []string{"pelotarr", "race", "acquired"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyScanCompleted(ctx context.Context, acquired, failed int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var title, message string
	if failed == 0 {
		title = "Pelotarr - Scan Complete"
		message = fmt.Sprintf("Scan complete: %d races acquired in %s", acquired, duration)
	} else {
		title = "Pelotarr - Scan Complete (with errors)"
		message = fmt.Sprintf("Scan complete: %d acquired, %d failed in %s", acquired, failed, duration)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"pelotarr", "scan", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFeedRefreshed(ctx context.Context, category string, added int) error {
	data := payload{
		title:   "Pelotarr - Feed Refreshed",
		message: fmt.Sprintf("%d new items in the %s feed", added, strings.TrimSpace(category)),
		tags:    []string{"pelotarr", "feed", "refreshed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Pelotarr - Error",
		message:  builder.String(),
		tags:     []string{"pelotarr", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Pelotarr - Test",
		message:  "Notification system test",
		tags:     []string{"pelotarr", "test"},
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

func (noopService) NotifyScanStarted(context.Context, int) error                       { return nil }
func (noopService) NotifyRaceAcquired(context.Context, string, string, float64) error  { return nil }
func (noopService) NotifyScanCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyFeedRefreshed(context.Context, string, int) error             { return nil }
func (noopService) NotifyError(context.Context, error, string) error                   { return nil }
func (noopService) TestNotification(context.Context) error                             { return nil }
