package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"badgectl/credential"
	"badgectl/protocol"
	"badgectl/session"
)

func TestDisabledClient(t *testing.T) {
	connected := false
	c, err := New(Config{}, "door-1", Handlers{OnConnect: func() { connected = true }})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.IsEnabled() {
		t.Fatal("client without host is enabled")
	}
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !connected {
		t.Error("OnConnect not called for disabled client")
	}

	// None of these may touch the nil paho client.
	c.Publish("x", []byte("y"))
	c.PublishSession(&session.Session{})
	c.Ping(time.Now())
	c.Disconnect()
}

func TestTopicsAndPing(t *testing.T) {
	c, _ := New(Config{}, "door-1", Handlers{})
	if got := c.Topic("session"); got != "badgectl/status/node/door-1/session" {
		t.Errorf("Topic = %q", got)
	}
	if c.PingInterval() != 120*time.Second {
		t.Errorf("PingInterval = %s", c.PingInterval())
	}

	c, _ = New(Config{PingSeconds: 30}, "door-1", Handlers{})
	if c.PingInterval() != 30*time.Second {
		t.Errorf("PingInterval = %s", c.PingInterval())
	}
}

func TestBadCACert(t *testing.T) {
	_, err := New(Config{Host: "broker", CACert: "/nonexistent/ca.pem"}, "door-1", Handlers{})
	if err == nil {
		t.Fatal("expected error for missing CA cert")
	}
}

func TestSessionEvent(t *testing.T) {
	id := uuid.MustParse("6f1c1a52-3f7e-4d38-9a49-0c8b8c1c2e11")
	s := &session.Session{
		ID:               id,
		Credential:       credential.UID{0x04, 0xA3, 0xFF, 0x1B},
		Start:            time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		ResponseReceived: true,
		Response:         "ENTRY_OK",
		Code:             protocol.EntryOk,
		Waited:           250 * time.Millisecond,
	}

	raw, err := json.Marshal(NewSessionEvent(s))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}

	want := map[string]any{
		"id":         id.String(),
		"credential": "04 A3 FF 1B",
		"start":      "2024-05-01T08:00:00Z",
		"received":   true,
		"response":   "ENTRY_OK",
		"code":       "entry_ok",
		"waited_ms":  float64(250),
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
	if _, ok := got["link_error"]; ok {
		t.Error("link_error present without an error")
	}

	s.LinkErr = errors.New("serial closed")
	if ev := NewSessionEvent(s); ev.LinkError != "serial closed" {
		t.Errorf("LinkError = %q", ev.LinkError)
	}
}
