// Package netmon tracks whether the backend is reachable and notifies
// subscribers on transitions.
package netmon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/heartmarshall/glossync/internal/config"
)

// Prober checks backend reachability and returns the round-trip time.
type Prober interface {
	Ping(ctx context.Context) (time.Duration, error)
}

type subscription struct {
	onOnline  func()
	onOffline func()
}

// Monitor holds the current online state. Callbacks fire only on transitions;
// onOnline is debounced and cancelled if the link drops inside the window.
type Monitor struct {
	cfg    config.NetworkConfig
	prober Prober
	clock  clockwork.Clock
	log    *slog.Logger

	mu      sync.Mutex
	online  bool
	link    LinkInfo
	rtt     *time.Duration
	subs    map[int]subscription
	nextSub int
	pending clockwork.Timer
	gen     uint64
}

// New creates a Monitor. The initial state is cfg.AssumeOnline.
func New(cfg config.NetworkConfig, prober Prober, clock clockwork.Clock, logger *slog.Logger) *Monitor {
	return &Monitor{
		cfg:    cfg,
		prober: prober,
		clock:  clock,
		log:    logger.With("service", "netmon"),
		online: cfg.AssumeOnline,
		subs:   make(map[int]subscription),
	}
}

// IsOnline reports the current state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Status returns a snapshot including link metadata when known.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{
		Online:         m.online,
		ConnectionType: m.link.ConnectionType,
		EffectiveType:  m.link.EffectiveType,
		Downlink:       m.link.Downlink,
		RTTMs:          m.link.RTTMs,
	}
	if m.rtt != nil {
		if st.RTTMs == nil {
			ms := m.rtt.Milliseconds()
			st.RTTMs = &ms
		}
		if st.EffectiveType == nil {
			et := EffectiveTypeFor(*m.rtt)
			st.EffectiveType = &et
		}
	}
	return st
}

// Subscribe registers transition callbacks. Either may be nil.
// The returned function removes the subscription.
func (m *Monitor) Subscribe(onOnline, onOffline func()) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = subscription{onOnline: onOnline, onOffline: onOffline}
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// Report records a transition observed by the client.
func (m *Monitor) Report(online bool) {
	m.setOnline(online, "client")
}

// ReportLink records client-reported connection metadata. Nil fields keep
// their previous value.
func (m *Monitor) ReportLink(link LinkInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if link.ConnectionType != nil {
		m.link.ConnectionType = link.ConnectionType
	}
	if link.EffectiveType != nil {
		m.link.EffectiveType = link.EffectiveType
	}
	if link.Downlink != nil {
		m.link.Downlink = link.Downlink
	}
	if link.RTTMs != nil {
		m.link.RTTMs = link.RTTMs
	}
}

// Run probes the backend immediately and then every probe interval until ctx
// is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.probe(ctx)

	ticker := m.clock.NewTicker(m.cfg.ProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.stopPending()
			return nil
		case <-ticker.Chan():
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	probeCtx := ctx
	if m.cfg.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, m.cfg.ProbeTimeout)
		defer cancel()
	}

	rtt, err := m.prober.Ping(probeCtx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		m.log.DebugContext(ctx, "probe failed", slog.String("error", err.Error()))
		m.setOnline(false, "probe")
		return
	}

	m.mu.Lock()
	m.rtt = &rtt
	m.mu.Unlock()
	m.setOnline(true, "probe")
}

func (m *Monitor) setOnline(online bool, source string) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	m.gen++
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}

	m.log.Info("network transition", slog.Bool("online", online), slog.String("source", source))

	if online && m.cfg.Debounce > 0 {
		gen := m.gen
		m.pending = m.clock.AfterFunc(m.cfg.Debounce, func() { m.fireOnline(gen) })
		m.mu.Unlock()
		return
	}

	callbacks := m.callbacks(online)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// fireOnline runs the debounced onOnline callbacks unless another transition
// happened since the timer was armed.
func (m *Monitor) fireOnline(gen uint64) {
	m.mu.Lock()
	if m.gen != gen || !m.online {
		m.mu.Unlock()
		return
	}
	m.pending = nil
	callbacks := m.callbacks(true)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// callbacks must be called with mu held.
func (m *Monitor) callbacks(online bool) []func() {
	out := make([]func(), 0, len(m.subs))
	for _, s := range m.subs {
		fn := s.onOffline
		if online {
			fn = s.onOnline
		}
		if fn != nil {
			out = append(out, fn)
		}
	}
	return out
}

func (m *Monitor) stopPending() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	m.gen++
}
