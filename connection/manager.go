package connection

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/skyezerfox/magma/metrics"
)

// Registry is the in-memory Players implementation.
type Registry struct {
	mu      sync.RWMutex
	players map[uint64]Identity
	online  atomic.Int64

	log     zerolog.Logger
	metrics *metrics.Collector
}

// NewRegistry creates an empty registry. m may be nil.
func NewRegistry(log zerolog.Logger, m *metrics.Collector) *Registry {
	return &Registry{
		players: make(map[uint64]Identity),
		log:     log.With().Str("component", "registry").Logger(),
		metrics: m,
	}
}

// Register adds p. Registering the same connection ID twice is a no-op.
func (r *Registry) Register(p Identity) {
	r.mu.Lock()
	if _, ok := r.players[p.ID]; ok {
		r.mu.Unlock()
		return
	}
	for _, other := range r.players {
		if other.Username == p.Username {
			r.log.Warn().Str("username", p.Username).Msg("Player is already connected from another session")
			break
		}
	}
	r.players[p.ID] = p
	n := r.online.Add(1)
	r.mu.Unlock()

	r.metrics.PlayersOnline(int(n))
	r.log.Info().Str("username", p.Username).Uint64("id", p.ID).Msg("Player added")
}

// Unregister removes p if present.
func (r *Registry) Unregister(p Identity) {
	r.mu.Lock()
	if _, ok := r.players[p.ID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.players, p.ID)
	n := r.online.Add(-1)
	r.mu.Unlock()

	r.metrics.PlayersOnline(int(n))
	r.log.Info().Str("username", p.Username).Uint64("id", p.ID).Msg("Player removed")
}

// OnlineCount reads the player count without taking the lock.
func (r *Registry) OnlineCount() int {
	return int(r.online.Load())
}

// Players returns a snapshot ordered by connection ID.
func (r *Registry) Players() []Identity {
	r.mu.RLock()
	out := make([]Identity, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
