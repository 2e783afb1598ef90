package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nepse-scanner/internal/config"
	"nepse-scanner/internal/models"
)

// recordingChannel captures everything sent through it.
type recordingChannel struct {
	name    string
	enabled bool
	sent    []Notification
	err     error
}

func (c *recordingChannel) Name() string    { return c.name }
func (c *recordingChannel) IsEnabled() bool { return c.enabled }

func (c *recordingChannel) Send(ctx context.Context, n Notification) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, n)
	return nil
}

func multiWithLevel(level string, channels ...NotificationChannel) *MultiNotifier {
	mn := NewMultiNotifier(&config.NotificationConfig{Enabled: true, Level: level})
	for _, ch := range channels {
		mn.AddChannel(ch)
	}
	return mn
}

func TestMultiNotifierLevelFiltering(t *testing.T) {
	tests := []struct {
		level    string
		notif    NotificationType
		expected bool
	}{
		{"all", NotificationSignal, true},
		{"all", NotificationError, true},
		{"all", NotificationInfo, true},
		{"signals_only", NotificationSignal, true},
		{"signals_only", NotificationError, false},
		{"errors_only", NotificationError, true},
		{"errors_only", NotificationSignal, false},
		{"", NotificationInfo, true},
	}

	for _, tt := range tests {
		ch := &recordingChannel{name: "rec", enabled: true}
		mn := multiWithLevel(tt.level, ch)

		err := mn.Send(context.Background(), Notification{Type: tt.notif, Title: "t"})
		if err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		delivered := len(ch.sent) == 1
		if delivered != tt.expected {
			t.Errorf("level %q type %q: delivered=%v, want %v", tt.level, tt.notif, delivered, tt.expected)
		}
	}
}

func TestMultiNotifierSkipsDisabledChannels(t *testing.T) {
	off := &recordingChannel{name: "off", enabled: false}
	on := &recordingChannel{name: "on", enabled: true}
	mn := multiWithLevel("all", off, on)

	if err := mn.Send(context.Background(), Notification{Type: NotificationInfo}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(off.sent) != 0 {
		t.Error("disabled channel received a notification")
	}
	if len(on.sent) != 1 {
		t.Error("enabled channel missed the notification")
	}
}

func TestMultiNotifierCollectsChannelErrors(t *testing.T) {
	bad := &recordingChannel{name: "bad", enabled: true, err: errors.New("down")}
	good := &recordingChannel{name: "good", enabled: true}
	mn := multiWithLevel("all", bad, good)

	err := mn.Send(context.Background(), Notification{Type: NotificationInfo})
	if err == nil {
		t.Fatal("expected an aggregated error")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("error does not name the failing channel: %v", err)
	}
	if len(good.sent) != 1 {
		t.Error("one failing channel must not block the others")
	}
}

func TestSendResultRendersSignal(t *testing.T) {
	ch := &recordingChannel{name: "rec", enabled: true}
	mn := multiWithLevel("all", ch)

	result := &models.Result{
		Type: "rsi_support",
		Data: models.RsiSupportReport{
			Signals: []models.RsiSupportSignal{
				{Symbol: "NABIL", RSI: 28.4, SupportLevel: 1195, LastPrice: 1210, PercentFromSupport: 1.3},
			},
			Count:   1,
			MeanRSI: 28.4,
		},
		Timestamp: time.Now(),
	}

	if err := mn.SendResult(context.Background(), result); err != nil {
		t.Fatalf("SendResult failed: %v", err)
	}
	if len(ch.sent) != 1 {
		t.Fatal("expected one notification")
	}
	n := ch.sent[0]
	if n.Type != NotificationSignal {
		t.Errorf("expected a signal notification, got %s", n.Type)
	}
	if !strings.Contains(n.Message, "NABIL") {
		t.Errorf("rendered message missing the symbol: %q", n.Message)
	}
	if n.Data["detector"] != "rsi_support" {
		t.Errorf("detector missing from data: %v", n.Data)
	}
}

func TestWebhookNotifierPosts(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	wn := NewWebhookNotifier(config.WebhookConfig{Enabled: true, URL: server.URL})
	err := wn.Send(context.Background(), Notification{
		Type:      NotificationSignal,
		Title:     "Test",
		Message:   "body",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if received["title"] != "Test" {
		t.Errorf("unexpected payload: %v", received)
	}
}

func TestWebhookNotifierRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	wn := NewWebhookNotifier(config.WebhookConfig{Enabled: true, URL: server.URL})
	err := wn.Send(context.Background(), Notification{Type: NotificationInfo, Timestamp: time.Now()})
	if err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
}

func TestWebhookNotifierDisabledWithoutURL(t *testing.T) {
	wn := NewWebhookNotifier(config.WebhookConfig{Enabled: true, URL: ""})
	if wn.IsEnabled() {
		t.Error("webhook without a URL must be disabled")
	}
}

func TestEmailNotifierDisabledWithoutRecipients(t *testing.T) {
	en := NewEmailNotifier(config.EmailConfig{Enabled: true, SMTPHost: "smtp.example.com", From: "a@b.c"})
	if en.IsEnabled() {
		t.Error("email without recipients must be disabled")
	}
}

func TestRenderTrendReport(t *testing.T) {
	result := &models.Result{
		Type: "trendline",
		Data: models.TrendReport{
			New: []models.TrendSignal{
				{Symbol: "UPPER", Trend: models.TrendUptrend, PercentChange: 8.2, TrendStrength: 0.9},
			},
			Existing: []models.TrendSignal{
				{Symbol: "CHCL", Trend: models.TrendUptrend, PercentChange: 6.1, DaysSinceDetected: 4},
			},
		},
		Timestamp: time.Now(),
	}

	title, message := renderResult(result)
	if title == "" {
		t.Error("expected a non-empty title")
	}
	if !strings.Contains(message, "UPPER") || !strings.Contains(message, "CHCL") {
		t.Errorf("rendered message missing symbols: %q", message)
	}
}
