package app

import (
	"errors"
	"testing"
	"time"
)

func TestProbeAddr(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"http://localhost:8000", "localhost:8000"},
		{"https://chat.example.com", "chat.example.com:443"},
		{"http://chat.example.com", "chat.example.com:80"},
	}
	for _, tc := range cases {
		if got := probeAddr(tc.in); got != tc.want {
			t.Fatalf("probeAddr(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMonitorTracksProbeResult(t *testing.T) {
	m := NewMonitor("http://localhost:8000", time.Hour)
	reachable := true
	m.dial = func(string, time.Duration) error {
		if reachable {
			return nil
		}
		return errors.New("unreachable")
	}

	m.probe()
	if !m.Online() {
		t.Fatalf("expected online after successful probe")
	}

	reachable = false
	m.probe()
	if m.Online() {
		t.Fatalf("expected offline after failed probe")
	}
}

func TestMonitorNotifiesSubscribersOnTransition(t *testing.T) {
	m := NewMonitor("http://localhost:8000", time.Hour)
	sub := m.Subscribe()
	defer sub.Close()

	m.set(false)
	select {
	case v := <-sub.C:
		if v {
			t.Fatalf("expected offline notification")
		}
	case <-time.After(time.Second):
		t.Fatalf("no notification delivered")
	}

	// Same state again: no duplicate notification.
	m.set(false)
	select {
	case <-sub.C:
		t.Fatalf("unexpected notification without a transition")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestSubscriptionCloseIdempotent(t *testing.T) {
	m := NewMonitor("http://localhost:8000", time.Hour)
	sub := m.Subscribe()
	sub.Close()
	sub.Close()

	m.set(false)
	select {
	case <-sub.C:
		t.Fatalf("closed subscription still receives")
	case <-time.After(10 * time.Millisecond):
	}
}
