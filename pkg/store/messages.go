package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync/atomic"

	"sparkchat/pkg/logger"
	"sparkchat/pkg/models"
)

// seq provides a small counter to reduce key collisions when multiple
// messages share the same nanosecond timestamp.
var seq uint64

// MaxConversation bounds the number of messages returned by a single
// conversation fetch.
const MaxConversation = 1000

type msgLocator struct {
	Key string         `json:"key"`
	Msg models.Message `json:"msg"`
}

// convKey returns the conversation namespace a message belongs to. Group
// traffic lives under the group id; direct traffic under the canonical
// ordering of the two identities so both directions share one range.
func convKey(m models.Message) string {
	if m.IsGroup {
		return "g:" + m.Receiver
	}
	return directKey(m.Sender, m.Receiver)
}

func directKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "d:" + a + ":" + b
}

// SaveMessage persists a message under its conversation range and indexes
// it by id for point lookup and deletion. Key format:
// conv:<ck>:msg:<unix_nano_padded>-<seq>, ordered by insertion time.
func SaveMessage(m models.Message) error {
	if db == nil {
		return notOpened()
	}
	s := atomic.AddUint64(&seq, 1)
	key := fmt.Sprintf("conv:%s:msg:%020d-%06d", convKey(m), m.TS, s)

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := set(key, data); err != nil {
		logger.Error("save_message_failed", "key", key, "error", err)
		return err
	}

	loc, err := json.Marshal(msgLocator{Key: key, Msg: m})
	if err != nil {
		return fmt.Errorf("failed to marshal message locator: %w", err)
	}
	if err := set("msg:"+m.ID, loc); err != nil {
		logger.Error("save_message_index_failed", "id", m.ID, "error", err)
		return err
	}
	logger.Info("message_saved", "id", m.ID, "conv", convKey(m))
	return nil
}

// ListConversation returns the conversation between a and b in ascending
// creation order, capped at limit (MaxConversation when limit <= 0). When
// the conversation exceeds the cap the most recent messages are kept. The
// range covers both direct directions; when b names a group the group range
// is included so group history resolves through the same call.
func ListConversation(a, b string, limit int) ([]models.Message, error) {
	if db == nil {
		return nil, notOpened()
	}
	if limit <= 0 || limit > MaxConversation {
		limit = MaxConversation
	}
	out, err := scanConv(directKey(a, b))
	if err != nil {
		return nil, err
	}
	grp, err := scanConv("g:" + b)
	if err != nil {
		return nil, err
	}
	out = append(out, grp...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func scanConv(ck string) ([]models.Message, error) {
	iter, err := prefixIter("conv:" + ck + ":msg:")
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Message
	for iter.First(); iter.Valid(); iter.Next() {
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			logger.Error("conversation_invalid_record", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, m)
	}
	return out, iter.Error()
}

// GetMessage returns a message by id or ErrNotFound.
func GetMessage(id string) (models.Message, error) {
	v, err := get("msg:" + id)
	if err != nil {
		return models.Message{}, err
	}
	var loc msgLocator
	if err := json.Unmarshal(v, &loc); err != nil {
		return models.Message{}, fmt.Errorf("invalid message record: %w", err)
	}
	return loc.Msg, nil
}

// DeleteMessage removes a message after verifying ownership. It returns the
// deleted message so the caller can notify the original receiver. Fails
// with ErrNotFound when absent and ErrForbidden when requester is not the
// sender; the record is left intact in that case.
func DeleteMessage(id, requester string) (models.Message, error) {
	v, err := get("msg:" + id)
	if err != nil {
		return models.Message{}, err
	}
	var loc msgLocator
	if err := json.Unmarshal(v, &loc); err != nil {
		return models.Message{}, fmt.Errorf("invalid message record: %w", err)
	}
	if loc.Msg.Sender != requester {
		return models.Message{}, ErrForbidden
	}
	// Conversation entry and locator go in one batch; a half-deleted
	// message must never exist.
	if err := delAll(loc.Key, "msg:"+id); err != nil {
		logger.Error("delete_message_failed", "id", id, "error", err)
		return models.Message{}, err
	}
	logger.Info("message_deleted", "id", id, "requester", requester)
	return loc.Msg, nil
}
