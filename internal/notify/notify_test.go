package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSlackMessage_Build(t *testing.T) {
	msg := SlackMessage{
		Text: "Batch finished",
		Attachments: []SlackAttachment{
			{
				Color: "good",
				Title: "adfbdd/tsconj",
				Text:  "42 completed, 3 timed out",
			},
		},
	}

	payload, err := msg.ToJSON()
	if err != nil {
		t.Fatal(err)
	}

	if len(payload) == 0 {
		t.Error("Payload should not be empty")
	}
}

func TestSlackNotifier_Send(t *testing.T) {
	var got SlackMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(server.URL)
	err := notifier.Send(Notification{
		Title:    "Batch finished",
		Message:  "5 runs over /corpus",
		Type:     NotifySuccess,
		BatchID:  "abc123",
		BatchDir: "/results/20260823T120000_abc123",
		Fields: []Field{
			{Name: "completed", Value: "4"},
			{Name: "timed out", Value: "1"},
		},
	})

	if err != nil {
		t.Errorf("Send failed: %v", err)
	}
	if len(got.Attachments) != 1 {
		t.Fatalf("got %d attachments, want 1", len(got.Attachments))
	}
	att := got.Attachments[0]
	if att.Title != "abc123" {
		t.Errorf("Title = %q, want batch ID", att.Title)
	}
	if att.Footer != "benchdock" {
		t.Errorf("Footer = %q", att.Footer)
	}
	if len(att.Fields) != 3 {
		t.Fatalf("got %d fields, want 2 counts + results dir", len(att.Fields))
	}
	if att.Fields[0].Title != "completed" || att.Fields[0].Value != "4" {
		t.Errorf("Fields[0] = %+v", att.Fields[0])
	}
	if att.Fields[2].Title != "results" || att.Fields[2].Value != "/results/20260823T120000_abc123" {
		t.Errorf("Fields[2] = %+v", att.Fields[2])
	}
}

func TestSlackNotifier_Disabled(t *testing.T) {
	notifier := NewSlackNotifier("")
	if err := notifier.Send(Notification{Title: "x"}); err != nil {
		t.Errorf("disabled notifier should be a no-op, got %v", err)
	}
}

func TestNotificationTypeColors(t *testing.T) {
	tests := []struct {
		typ  NotificationType
		want string
	}{
		{NotifySuccess, "good"},
		{NotifyWarning, "warning"},
		{NotifyError, "danger"},
		{NotifyInfo, "#439FE0"},
	}

	for _, tt := range tests {
		if got := SlackColor(tt.typ); got != tt.want {
			t.Errorf("SlackColor(%d) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestMultiNotifier(t *testing.T) {
	var sent int
	fn := notifierFunc(func(n Notification) error {
		sent++
		return nil
	})

	multi := NewMultiNotifier(fn, fn, NoopNotifier{})
	if err := multi.Send(Notification{Title: "x"}); err != nil {
		t.Fatal(err)
	}
	if sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}
}

type notifierFunc func(Notification) error

func (f notifierFunc) Send(n Notification) error { return f(n) }
