package dispatch

import (
	"encoding/json"

	"sparkchat/pkg/logger"
	"sparkchat/pkg/models"
	"sparkchat/pkg/presence"
	"sparkchat/pkg/store"
)

// Event names pushed over the realtime channel.
const (
	EventMessage        = "message"
	EventMessageDeleted = "message-deleted"
	EventError          = "error"
)

// Envelope is the wire frame for pushed payloads.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// GroupResolver resolves a group id to its member identities. The store
// registry is the production implementation.
type GroupResolver interface {
	GetGroup(id string) (models.Group, error)
}

type storeResolver struct{}

func (storeResolver) GetGroup(id string) (models.Group, error) { return store.GetGroup(id) }

// Dispatcher resolves a persisted message's recipient set and fans it out
// over the presence router. It must only ever see messages that are already
// durable: a crash between persist and push loses at most a live
// notification, never the message itself.
type Dispatcher struct {
	router *presence.Router
	groups GroupResolver
}

func New(router *presence.Router) *Dispatcher {
	return &Dispatcher{router: router, groups: storeResolver{}}
}

// NewWithResolver builds a dispatcher with a custom group resolver.
func NewWithResolver(router *presence.Router, groups GroupResolver) *Dispatcher {
	return &Dispatcher{router: router, groups: groups}
}

// Dispatch pushes m to every resolved recipient and echoes it to the
// sender so the sender's own live sessions reflect the send. A group id
// that resolves to nothing produces no pushes and no error; the message
// stays retrievable through the history fetch.
func (d *Dispatcher) Dispatch(m models.Message) {
	recipients := d.resolve(m)
	payload, err := json.Marshal(Envelope{Event: EventMessage, Data: m})
	if err != nil {
		logger.Error("dispatch_marshal_failed", "id", m.ID, "error", err)
		return
	}
	// The sender is always part of the fan-out; a sender who is also a
	// group member still receives the payload exactly once per channel.
	seen := map[string]struct{}{m.Sender: {}}
	d.router.Push(m.Sender, payload)
	for _, identity := range recipients {
		if _, dup := seen[identity]; dup {
			continue
		}
		seen[identity] = struct{}{}
		d.router.Push(identity, payload)
	}
	logger.Debug("message_dispatched", "id", m.ID, "recipients", len(recipients))
}

// DispatchDelete notifies the original receiver that a message was removed.
// The notice carries only the id; clients drop the record locally.
func (d *Dispatcher) DispatchDelete(m models.Message) {
	payload, err := json.Marshal(Envelope{Event: EventMessageDeleted, Data: map[string]string{"id": m.ID}})
	if err != nil {
		logger.Error("dispatch_marshal_failed", "id", m.ID, "error", err)
		return
	}
	d.router.Push(m.Receiver, payload)
	logger.Debug("delete_dispatched", "id", m.ID, "receiver", m.Receiver)
}

// resolve returns the recipient set for m: the single receiver for direct
// messages, the group's member list for group messages.
func (d *Dispatcher) resolve(m models.Message) []string {
	if !m.IsGroup {
		return []string{m.Receiver}
	}
	g, err := d.groups.GetGroup(m.Receiver)
	if err != nil {
		if err != store.ErrNotFound {
			logger.Error("group_resolve_failed", "group", m.Receiver, "error", err)
		} else {
			logger.Warn("group_not_found", "group", m.Receiver, "id", m.ID)
		}
		return nil
	}
	return g.Members
}
