package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"evreserve/internal/models"
)

type fakeDoer struct {
	status  int
	err     error
	lastReq *http.Request
	body    []byte
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.lastReq = req
	if req.Body != nil {
		f.body, _ = io.ReadAll(req.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func TestWebhookNotifierDelivers(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK}
	n := NewWebhookNotifier("http://hooks.local/events", doer)

	session := &models.Session{ID: "ses-1", StationID: "STN-001", ConnectorID: "C-001-1", UserID: "user-1"}
	if err := n.Notify(context.Background(), session, models.EventStarted); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if doer.lastReq.Method != http.MethodPost {
		t.Fatalf("expected POST, got %s", doer.lastReq.Method)
	}
	if got := doer.lastReq.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}

	var payload struct {
		Event   models.EventType `json:"event"`
		Session *models.Session  `json:"session"`
	}
	if err := json.Unmarshal(doer.body, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Event != models.EventStarted || payload.Session.ID != "ses-1" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestWebhookNotifierNon2xx(t *testing.T) {
	doer := &fakeDoer{status: http.StatusBadGateway}
	n := NewWebhookNotifier("http://hooks.local/events", doer)

	session := &models.Session{ID: "ses-1"}
	if err := n.Notify(context.Background(), session, models.EventReserved); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestMultiAttemptsAll(t *testing.T) {
	failing := &fakeDoer{err: errors.New("connection refused")}
	ok := &fakeDoer{status: http.StatusOK}

	m := Multi{
		NewWebhookNotifier("http://hooks.local/a", failing),
		NewWebhookNotifier("http://hooks.local/b", ok),
	}

	session := &models.Session{ID: "ses-1"}
	err := m.Notify(context.Background(), session, models.EventCancelled)
	if err == nil {
		t.Fatal("expected joined error from failing notifier")
	}
	if ok.lastReq == nil {
		t.Fatal("second notifier was not attempted")
	}
}
