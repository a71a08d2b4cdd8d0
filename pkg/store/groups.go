package store

import (
	"encoding/json"
	"fmt"

	"sparkchat/pkg/logger"
	"sparkchat/pkg/models"
)

// SaveGroup stores group metadata under its id.
func SaveGroup(g models.Group) error {
	if db == nil {
		return notOpened()
	}
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal group: %w", err)
	}
	if err := set("group:"+g.ID, data); err != nil {
		logger.Error("save_group_failed", "group", g.ID, "error", err)
		return err
	}
	logger.Info("group_saved", "group", g.ID, "members", len(g.Members))
	return nil
}

// GetGroup returns the group for id or ErrNotFound.
func GetGroup(id string) (models.Group, error) {
	v, err := get("group:" + id)
	if err != nil {
		return models.Group{}, err
	}
	var g models.Group
	if err := json.Unmarshal(v, &g); err != nil {
		return models.Group{}, fmt.Errorf("invalid group record: %w", err)
	}
	return g, nil
}

// ListGroupsFor returns all groups whose member set contains identity.
func ListGroupsFor(identity string) ([]models.Group, error) {
	iter, err := prefixIter("group:")
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Group
	for iter.First(); iter.Valid(); iter.Next() {
		var g models.Group
		if err := json.Unmarshal(iter.Value(), &g); err != nil {
			logger.Error("groups_invalid_record", "key", string(iter.Key()), "error", err)
			continue
		}
		if g.HasMember(identity) {
			out = append(out, g)
		}
	}
	return out, iter.Error()
}
