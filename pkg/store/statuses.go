package store

import (
	"encoding/json"
	"fmt"
	"sync/atomic"

	"sparkchat/pkg/logger"
	"sparkchat/pkg/models"
)

// FeedLimit bounds the number of statuses returned by the feed.
const FeedLimit = 50

var statusSeq uint64

// SaveStatus appends a status post. Statuses are append-only; the key's
// timestamp prefix makes the feed a reverse range scan.
func SaveStatus(s models.Status) error {
	if db == nil {
		return notOpened()
	}
	n := atomic.AddUint64(&statusSeq, 1)
	key := fmt.Sprintf("status:%020d-%06d", s.TS, n)
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	if err := set(key, data); err != nil {
		logger.Error("save_status_failed", "id", s.ID, "error", err)
		return err
	}
	logger.Info("status_saved", "id", s.ID, "author", s.Author)
	return nil
}

// ListStatusFeed returns the most recent statuses, newest first, capped at
// limit (FeedLimit when limit <= 0).
func ListStatusFeed(limit int) ([]models.Status, error) {
	if limit <= 0 || limit > FeedLimit {
		limit = FeedLimit
	}
	iter, err := prefixIter("status:")
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	out := make([]models.Status, 0, limit)
	for iter.Last(); iter.Valid() && len(out) < limit; iter.Prev() {
		var s models.Status
		if err := json.Unmarshal(iter.Value(), &s); err != nil {
			logger.Error("feed_invalid_record", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, s)
	}
	return out, iter.Error()
}

// PurgeStatusesBefore deletes statuses created before cutoff (unix nanos)
// and reports how many were removed. Used by the retention sweeper.
func PurgeStatusesBefore(cutoff int64) (int, error) {
	iter, err := prefixIter("status:")
	if err != nil {
		return 0, err
	}
	defer iter.Close()
	var victims []string
	for iter.First(); iter.Valid(); iter.Next() {
		var s models.Status
		if err := json.Unmarshal(iter.Value(), &s); err != nil {
			continue
		}
		if s.TS < cutoff {
			victims = append(victims, string(iter.Key()))
		}
	}
	if err := iter.Error(); err != nil {
		return 0, err
	}
	for _, k := range victims {
		if err := del(k); err != nil {
			return 0, err
		}
	}
	if len(victims) > 0 {
		logger.Info("statuses_purged", "count", len(victims))
	}
	return len(victims), nil
}
