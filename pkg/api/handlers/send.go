package handlers

import (
	"time"

	"sparkchat/pkg/dispatch"
	"sparkchat/pkg/metrics"
	"sparkchat/pkg/models"
	"sparkchat/pkg/store"
	"sparkchat/pkg/utils"
	"sparkchat/pkg/validation"
)

// SendMessage is the single send path shared by the REST endpoint and the
// realtime channel: stamp, snapshot the sender's avatar, validate, persist,
// then dispatch. Persistence failure aborts before dispatch so a failed
// send is never silently dropped; once the message is durable, live
// delivery is best-effort and cannot fail the send.
func SendMessage(d *dispatch.Dispatcher, m models.Message) (models.Message, error) {
	if m.ID == "" {
		m.ID = utils.GenID()
	}
	if m.TS == 0 {
		m.TS = time.Now().UTC().UnixNano()
	}
	if u, err := store.GetUser(m.Sender); err == nil {
		m.Avatar = u.Avatar
	}
	if err := validation.ValidateMessage(m); err != nil {
		return m, err
	}
	if err := store.SaveMessage(m); err != nil {
		return m, err
	}
	metrics.MessagesSent.Inc()
	d.Dispatch(m)
	return m, nil
}
