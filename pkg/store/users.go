package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"sparkchat/pkg/logger"
	"sparkchat/pkg/models"
)

// usersMu serializes the exists-check-then-set in CreateUser so two
// concurrent registrations of the same identity cannot both succeed.
var usersMu sync.Mutex

// CreateUser inserts a new user record. Registration with an identity that
// already exists fails with ErrConflict and writes nothing.
func CreateUser(u models.User) error {
	if db == nil {
		return notOpened()
	}
	usersMu.Lock()
	defer usersMu.Unlock()
	key := "user:" + u.Identity
	if _, err := get(key); err == nil {
		return ErrConflict
	} else if err != ErrNotFound {
		return err
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := set(key, data); err != nil {
		logger.Error("create_user_failed", "identity", u.Identity, "error", err)
		return err
	}
	logger.Info("user_created", "identity", u.Identity)
	return nil
}

// PutUser overwrites an existing user record (profile update path).
func PutUser(u models.User) error {
	if db == nil {
		return notOpened()
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := set("user:"+u.Identity, data); err != nil {
		logger.Error("put_user_failed", "identity", u.Identity, "error", err)
		return err
	}
	logger.Info("user_updated", "identity", u.Identity)
	return nil
}

// GetUser returns the user for identity or ErrNotFound.
func GetUser(identity string) (models.User, error) {
	v, err := get("user:" + identity)
	if err != nil {
		return models.User{}, err
	}
	var u models.User
	if err := json.Unmarshal(v, &u); err != nil {
		return models.User{}, fmt.Errorf("invalid user record: %w", err)
	}
	return u, nil
}

// LookupUsers returns public summaries for the candidates that are
// registered. Unknown identities are silently skipped.
func LookupUsers(candidates []string) ([]models.UserSummary, error) {
	if db == nil {
		return nil, notOpened()
	}
	out := make([]models.UserSummary, 0, len(candidates))
	for _, c := range candidates {
		u, err := GetUser(c)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, u.Summary())
	}
	return out, nil
}
