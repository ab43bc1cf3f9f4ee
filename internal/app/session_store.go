package app

import (
	"encoding/json"
	"strconv"
	"time"
)

// SessionStore owns the durable list of chat sessions. Every write rewrites
// the whole snapshot under one key; there are no partial patches, so a failed
// write can never leave the stored list half-updated.
type SessionStore struct {
	kv  KV
	log *Logger
}

func NewSessionStore(kv KV, log *Logger) *SessionStore {
	return &SessionStore{kv: kv, log: log}
}

// Load deserializes the stored session list. Absent or malformed content is
// treated as an empty list, never as a fatal error.
func (s *SessionStore) Load() []Session {
	raw, ok, err := s.kv.Get(kvKeySessions)
	if err != nil {
		s.log.Error("session load failed", map[string]interface{}{"error": err.Error()})
		return []Session{}
	}
	if !ok {
		return []Session{}
	}
	var sessions []Session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		s.log.Error("session data malformed, resetting", map[string]interface{}{"error": err.Error()})
		return []Session{}
	}
	if sessions == nil {
		sessions = []Session{}
	}
	return sessions
}

// Save serializes the full sequence. A subsequent Load returns the same
// sequence.
func (s *SessionStore) Save(sessions []Session) error {
	b, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	if err := s.kv.Set(kvKeySessions, string(b)); err != nil {
		s.log.Error("session save failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

// Create allocates an empty session with a time-derived id and the
// placeholder title, prepends it so the visible list stays
// most-recently-created first, and persists the new list.
func (s *SessionStore) Create() *Session {
	now := time.Now()
	sess := Session{
		ID:        NewSessionID(now),
		Title:     DefaultTitle,
		Messages:  []Message{},
		CreatedAt: now,
	}
	sessions := append([]Session{sess}, s.Load()...)
	_ = s.Save(sessions)
	return &sess
}

// Delete removes the session with the given id. Deleting an unknown id is a
// no-op, so the operation is idempotent.
func (s *SessionStore) Delete(id string) {
	sessions := s.Load()
	out := sessions[:0]
	for _, sess := range sessions {
		if sess.ID != id {
			out = append(out, sess)
		}
	}
	if len(out) != len(sessions) {
		_ = s.Save(out)
	}
}

// UpdateMessages replaces the persisted message history for one session.
// Unknown ids are ignored.
func (s *SessionStore) UpdateMessages(id string, msgs []Message) {
	sessions := s.Load()
	for i := range sessions {
		if sessions[i].ID == id {
			sessions[i].Messages = cloneMessages(msgs)
			_ = s.Save(sessions)
			return
		}
	}
}

// UpdateTitle rewrites one session's title. Unknown ids are ignored.
func (s *SessionStore) UpdateTitle(id, title string) {
	sessions := s.Load()
	for i := range sessions {
		if sessions[i].ID == id {
			sessions[i].Title = title
			_ = s.Save(sessions)
			return
		}
	}
}

// DarkMode reads the persisted dark-mode preference. Absent or malformed
// content falls back to the default.
func (s *SessionStore) DarkMode(def bool) bool {
	raw, ok, err := s.kv.Get(kvKeyDarkMode)
	if err != nil || !ok {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func (s *SessionStore) SetDarkMode(on bool) {
	if err := s.kv.Set(kvKeyDarkMode, strconv.FormatBool(on)); err != nil {
		s.log.Error("dark mode save failed", map[string]interface{}{"error": err.Error()})
	}
}
