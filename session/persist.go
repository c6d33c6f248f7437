package session

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/keystore"
)

// StorageKey is where the session record is persisted.
const StorageKey = "auth-store"

const recordVersion = 0

// record is the persisted document: {"state": {...}, "version": 0}.
type record struct {
	State   Session `json:"state"`
	Version int     `json:"version"`
}

// Load reads the persisted session without touching the store. A missing record yields
// the defaults. HasHydrated is always false in the result.
func (s *Store) Load(ctx context.Context) (Session, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, keystore.ErrNotFound) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, errors.Wrapf(err, "[session.Store.Load] read %s", s.key)
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Session{}, errors.Wrapf(err, "[session.Store.Load] decode %s", s.key)
	}
	rec.State.HasHydrated = false
	return rec.State, nil
}

// persist writes snap unless a newer snapshot was already written.
func (s *Store) persist(ctx context.Context, version uint64, snap Session) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if version < s.persistedVersion {
		return
	}
	data, err := json.Marshal(record{State: snap, Version: recordVersion})
	if err != nil {
		s.logger.Err(err).Msg("Encode session")
		return
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		s.logger.Err(err).Str("key", s.key).Msg("Persist session")
		return
	}
	s.persistedVersion = version
}
