package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/example/workshop-planner/internal/scheduler"
)

// SessionKeyPrefix namespaces persisted session lists.
const SessionKeyPrefix = "workshop_sessions_"

// SessionKey returns the storage key for a workshop's session list.
func SessionKey(workshopID string) string {
	return SessionKeyPrefix + workshopID
}

// SessionStore persists generated session lists keyed by workshop id. The
// stored value is the bare JSON array of sessions.
type SessionStore struct {
	kv KeyValueStore
}

// NewSessionStore wraps a key-value substrate.
func NewSessionStore(kv KeyValueStore) *SessionStore {
	return &SessionStore{kv: kv}
}

// Save fully overwrites the session list stored for workshopID.
func (s *SessionStore) Save(ctx context.Context, workshopID string, sessions []scheduler.Session) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("session store not configured")
	}
	if sessions == nil {
		sessions = []scheduler.Session{}
	}
	payload, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encode sessions for %s: %w", workshopID, err)
	}
	if err := s.kv.Set(ctx, SessionKey(workshopID), payload); err != nil {
		return fmt.Errorf("save sessions for %s: %w", workshopID, err)
	}
	return nil
}

// Load returns the session list stored for workshopID. It returns
// ErrNotFound on a miss and ErrCorrupt when the value does not decode into a
// non-empty list.
func (s *SessionStore) Load(ctx context.Context, workshopID string) ([]scheduler.Session, error) {
	if s == nil || s.kv == nil {
		return nil, fmt.Errorf("session store not configured")
	}
	payload, err := s.kv.Get(ctx, SessionKey(workshopID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load sessions for %s: %w", workshopID, err)
	}
	var sessions []scheduler.Session
	if err := json.Unmarshal(payload, &sessions); err != nil {
		return nil, fmt.Errorf("%w: sessions for %s: %v", ErrCorrupt, workshopID, err)
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("%w: sessions for %s: empty list", ErrCorrupt, workshopID)
	}
	return sessions, nil
}

// Delete removes the session list stored for workshopID.
func (s *SessionStore) Delete(ctx context.Context, workshopID string) error {
	if s == nil || s.kv == nil {
		return fmt.Errorf("session store not configured")
	}
	if err := s.kv.Delete(ctx, SessionKey(workshopID)); err != nil {
		return fmt.Errorf("delete sessions for %s: %w", workshopID, err)
	}
	return nil
}

// Exists reports whether a session list is stored for workshopID.
func (s *SessionStore) Exists(ctx context.Context, workshopID string) (bool, error) {
	if s == nil || s.kv == nil {
		return false, fmt.Errorf("session store not configured")
	}
	_, err := s.kv.Get(ctx, SessionKey(workshopID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("check sessions for %s: %w", workshopID, err)
	}
}

// IDs lists the workshop ids that have a stored session list.
func (s *SessionStore) IDs(ctx context.Context) ([]string, error) {
	if s == nil || s.kv == nil {
		return nil, fmt.Errorf("session store not configured")
	}
	keys, err := s.kv.Keys(ctx, SessionKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list session keys: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, SessionKeyPrefix))
	}
	return ids, nil
}

// CleanupOrphaned deletes every stored session list whose workshop id is not
// in keep and returns the removed ids.
func (s *SessionStore) CleanupOrphaned(ctx context.Context, keep []string) ([]string, error) {
	ids, err := s.IDs(ctx)
	if err != nil {
		return nil, err
	}
	active := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		active[id] = struct{}{}
	}
	removed := make([]string, 0)
	for _, id := range ids {
		if _, ok := active[id]; ok {
			continue
		}
		if err := s.Delete(ctx, id); err != nil {
			return removed, err
		}
		removed = append(removed, id)
	}
	return removed, nil
}
