// Package session keeps one cart and checkout orchestrator per POS session.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_pos/internal/cart"
	"github.com/fjod/go_pos/internal/checkout"
	"github.com/fjod/go_pos/internal/store"
	"go.uber.org/zap"
)

type Session struct {
	ID       string
	Cart     *cart.Aggregator
	Checkout *checkout.Orchestrator

	lastUsed atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

func (s *Session) idleSince(cutoff time.Time) bool {
	return s.lastUsed.Load() < cutoff.UnixNano()
}

type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	cartKey string
	catalog cart.ProductLookup
	store   store.Store
	email   checkout.EmailSender
	opts    []checkout.Option
	logger  *zap.Logger
	now     func() time.Time
}

// NewManager creates sessions whose carts persist under "<cartKey>:<session id>".
func NewManager(cartKey string, catalog cart.ProductLookup, s store.Store, email checkout.EmailSender, logger *zap.Logger, opts ...checkout.Option) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		cartKey:  cartKey,
		catalog:  catalog,
		store:    s,
		email:    email,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the session for id, restoring its saved cart on first use.
func (m *Manager) Get(ctx context.Context, id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		s.touch(m.now())
		return s
	}

	log := m.logger.With(zap.String("session_id", id))
	agg := cart.NewAggregator(m.cartKey+":"+id, m.catalog, m.store, log)
	agg.Load(ctx)

	s := &Session{
		ID:       id,
		Cart:     agg,
		Checkout: checkout.New(agg, m.email, log, m.opts...),
	}
	s.touch(m.now())
	m.sessions[id] = s
	return s
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Evict drops sessions unused for longer than idle. Sessions with a checkout or order
// logging still running are kept. Their carts stay in the store and reload on next use.
func (m *Manager) Evict(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if s.idleSince(cutoff) && !s.Checkout.Busy() {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Run evicts idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context, idle time.Duration) {
	ticker := time.NewTicker(min(idle, time.Minute))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Evict(idle); n > 0 {
				m.logger.Debug("idle sessions evicted", zap.Int("evicted", n), zap.Int("remaining", m.Len()))
			}
		}
	}
}

// Drain waits for background order logging of every session.
func (m *Manager) Drain(ctx context.Context) error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		if err := s.Checkout.Drain(ctx); err != nil {
			return err
		}
	}
	return nil
}
