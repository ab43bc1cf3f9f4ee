package app

import (
	"net"
	"net/url"
	"sync"
	"time"
)

const defaultProbeInterval = 5 * time.Second

// Monitor is the reachability signal: it probes the chat server's address on
// an interval and keeps a boolean the pipeline reads synchronously at
// submission time. Listeners register through explicit Subscription objects
// and must Close them on teardown.
type Monitor struct {
	addr     string
	interval time.Duration
	dial     func(addr string, timeout time.Duration) error

	mu     sync.Mutex
	online bool
	subs   map[*Subscription]struct{}
	stop   chan struct{}
	once   sync.Once
}

// Subscription delivers online/offline transitions until closed. Close is
// idempotent.
type Subscription struct {
	C chan bool

	m    *Monitor
	once sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.m.mu.Lock()
		delete(s.m.subs, s)
		s.m.mu.Unlock()
	})
}

// NewMonitor probes the host of serverURL. The zero interval means the
// default. Until the first probe completes the signal reads as online, so a
// slow probe never blocks the first submission.
func NewMonitor(serverURL string, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	return &Monitor{
		addr:     probeAddr(serverURL),
		interval: interval,
		dial: func(addr string, timeout time.Duration) error {
			conn, err := net.DialTimeout("tcp", addr, timeout)
			if err != nil {
				return err
			}
			return conn.Close()
		},
		online: true,
		subs:   make(map[*Subscription]struct{}),
		stop:   make(chan struct{}),
	}
}

func probeAddr(serverURL string) string {
	u, err := url.Parse(serverURL)
	if err != nil || u.Host == "" {
		return serverURL
	}
	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "https":
			host = net.JoinHostPort(u.Hostname(), "443")
		default:
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	}
	return host
}

// Start launches the probe loop. Safe to call once; Stop ends it.
func (m *Monitor) Start() {
	go func() {
		t := time.NewTicker(m.interval)
		defer t.Stop()
		m.probe()
		for {
			select {
			case <-m.stop:
				return
			case <-t.C:
				m.probe()
			}
		}
	}()
}

func (m *Monitor) Stop() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Monitor) probe() {
	err := m.dial(m.addr, 2*time.Second)
	m.set(err == nil)
}

func (m *Monitor) set(online bool) {
	m.mu.Lock()
	changed := online != m.online
	m.online = online
	var targets []*Subscription
	if changed {
		for s := range m.subs {
			targets = append(targets, s)
		}
	}
	m.mu.Unlock()

	for _, s := range targets {
		select {
		case s.C <- online:
		default:
			// Slow listener; it will read the current state next time.
		}
	}
}

// Online is the synchronous read used by the submission guard.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *Monitor) Subscribe() *Subscription {
	s := &Subscription{C: make(chan bool, 1), m: m}
	m.mu.Lock()
	m.subs[s] = struct{}{}
	m.mu.Unlock()
	return s
}
