package presence

import (
	"sync"

	"sparkchat/pkg/logger"
	"sparkchat/pkg/metrics"
)

// Channel is a live real-time connection capable of receiving pushed
// payloads. Send must not block; it reports false when the payload was
// dropped (stale or saturated connection). The transport beneath is
// responsible for tearing down channels that stop accepting writes.
type Channel interface {
	Send(payload []byte) bool
}

// Router maps identities to their currently bound channels. It is pure
// routing state: it holds no conversation data and is safe to reconstruct
// empty on restart, since reconnecting clients re-bind. An instance is
// created at process start and injected into its consumers.
type Router struct {
	mu       sync.RWMutex
	channels map[string]map[Channel]struct{}
}

func NewRouter() *Router {
	return &Router{channels: make(map[string]map[Channel]struct{})}
}

// Bind registers ch under identity. Binding the same channel twice is a
// no-op. Multiple simultaneous channels per identity are valid
// (multi-device).
func (r *Router) Bind(identity string, ch Channel) {
	r.mu.Lock()
	set, ok := r.channels[identity]
	if !ok {
		set = make(map[Channel]struct{})
		r.channels[identity] = set
	}
	_, dup := set[ch]
	set[ch] = struct{}{}
	r.mu.Unlock()
	if !dup {
		metrics.BoundChannels.Inc()
		logger.Info("channel_bound", "identity", identity)
	}
}

// Unbind removes ch from identity's set, dropping the identity entry when
// it becomes empty. Late or duplicate unbinds are harmless.
func (r *Router) Unbind(identity string, ch Channel) {
	r.mu.Lock()
	set, ok := r.channels[identity]
	var removed bool
	if ok {
		if _, removed = set[ch]; removed {
			delete(set, ch)
			if len(set) == 0 {
				delete(r.channels, identity)
			}
		}
	}
	r.mu.Unlock()
	if removed {
		metrics.BoundChannels.Dec()
		logger.Info("channel_unbound", "identity", identity)
	}
}

// Push sends payload to every channel currently bound to identity. Each
// delivery is independent: a drop on one channel never prevents delivery to
// the others and is never surfaced to the caller. No binding means the
// identity is offline and the push is a no-op.
func (r *Router) Push(identity string, payload []byte) {
	r.mu.RLock()
	set := r.channels[identity]
	snapshot := make([]Channel, 0, len(set))
	for ch := range set {
		snapshot = append(snapshot, ch)
	}
	r.mu.RUnlock()

	for _, ch := range snapshot {
		if ch.Send(payload) {
			metrics.PushesDelivered.Inc()
		} else {
			metrics.PushesDropped.Inc()
			logger.Warn("push_dropped", "identity", identity)
		}
	}
}

// Channels reports how many channels are bound to identity.
func (r *Router) Channels(identity string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels[identity])
}
