package capture

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	// SessionTimeout is how long a session survives without activity.
	SessionTimeout = 30 * time.Minute

	// SweepInterval is how often the background sweep evicts expired
	// sessions. The sweep only bounds memory; lazy eviction on access
	// is the correctness mechanism.
	SweepInterval = 5 * time.Minute
)

// Store holds at most one active CaptureSession per key. All access
// goes through its methods; the underlying map is never shared.
//
// Mutating operations on a missing session log and no-op rather than
// fail: the chat channel has no way to recover from an error mid-flow,
// so stale operations are silently dropped.
type Store struct {
	mu       sync.Mutex
	sessions map[Key]*Session
	now      func() time.Time
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[Key]*Session),
		now:      time.Now,
	}
}

// Create replaces any existing session at key with a fresh one.
// Callers that want to convert an existing menu session without losing
// its fields must use ConvertToDataSession instead.
func (s *Store) Create(key Key, t LogicalType, menu bool) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{
		Key:            key,
		Type:           t,
		Fields:         make(map[string]Value),
		IsMenuSession:  menu,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	s.sessions[key] = sess
	return copySession(sess)
}

// Get returns a snapshot of the session at key, touching its activity
// timestamp. An expired session is evicted and nil is returned.
func (s *Store) Get(key Key) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.live(key)
	if sess == nil {
		return nil
	}
	sess.LastActivityAt = s.now()
	return copySession(sess)
}

// live returns the stored session at key, evicting it first if it has
// expired. Callers must hold s.mu.
func (s *Store) live(key Key) *Session {
	sess, ok := s.sessions[key]
	if !ok {
		return nil
	}
	if s.now().Sub(sess.LastActivityAt) > SessionTimeout {
		delete(s.sessions, key)
		return nil
	}
	return sess
}

// SetPendingField marks the session as awaiting raw text for field.
func (s *Store) SetPendingField(key Key, field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.live(key)
	if sess == nil {
		log.Printf("capture: set pending field %q on missing session %s", field, key)
		return
	}
	sess.PendingField = field
	sess.LastActivityAt = s.now()
}

// WriteField stores a field value and clears the pending field
// unconditionally, even when the written field differs from the one
// that was pending (the user volunteered a different field).
func (s *Store) WriteField(key Key, field string, v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.live(key)
	if sess == nil {
		log.Printf("capture: write field %q on missing session %s", field, key)
		return
	}
	sess.Fields[field] = v
	sess.PendingField = ""
	sess.LastActivityAt = s.now()
}

// MergeFields writes several fields at once. Used when extraction runs
// against an existing session; the session's type is not touched.
func (s *Store) MergeFields(key Key, fields map[string]Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.live(key)
	if sess == nil {
		log.Printf("capture: merge fields on missing session %s", key)
		return
	}
	for k, v := range fields {
		sess.Fields[k] = v
	}
	sess.PendingField = ""
	sess.LastActivityAt = s.now()
}

// MarkSaved records the persisted record id. The session stays alive so
// further edits keep updating the same record.
func (s *Store) MarkSaved(key Key, recordID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.live(key)
	if sess == nil {
		log.Printf("capture: mark saved on missing session %s", key)
		return
	}
	sess.SavedAlready = true
	sess.SavedRecordID = recordID
	sess.LastActivityAt = s.now()
}

// SetConfidence records the extraction confidence on the session. The
// value is advisory: no flow currently branches on it.
func (s *Store) SetConfidence(key Key, confidence float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.live(key)
	if sess == nil {
		log.Printf("capture: set confidence on missing session %s", key)
		return
	}
	sess.Confidence = confidence
}

// Reclassify changes the session's logical type in place, preserving
// all accumulated fields.
func (s *Store) Reclassify(key Key, t LogicalType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.live(key)
	if sess == nil {
		log.Printf("capture: reclassify missing session %s", key)
		return
	}
	sess.Type = t
	sess.LastActivityAt = s.now()
}

// ConvertToDataSession turns a menu session into a normal capture
// session of the given type, preserving fields gathered so far.
func (s *Store) ConvertToDataSession(key Key, t LogicalType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.live(key)
	if sess == nil {
		log.Printf("capture: convert missing session %s", key)
		return
	}
	sess.IsMenuSession = false
	sess.Type = t
	sess.LastActivityAt = s.now()
}

// End removes and returns the session at key, or nil if none exists.
// Used for both completion and cancellation.
func (s *Store) End(key Key) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.live(key)
	if sess == nil {
		return nil
	}
	delete(s.sessions, key)
	return copySession(sess)
}

// HasActive reports whether a live session exists at key.
func (s *Store) HasActive(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live(key) != nil
}

// IsAwaitingInput reports whether the session at key is waiting for raw
// text for a specific field.
func (s *Store) IsAwaitingInput(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.live(key)
	return sess != nil && sess.PendingField != ""
}

// ActiveCount returns the number of live sessions. Diagnostic only.
func (s *Store) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	now := s.now()
	for _, sess := range s.sessions {
		if now.Sub(sess.LastActivityAt) <= SessionTimeout {
			count++
		}
	}
	return count
}

// Sweep evicts every expired session and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for key, sess := range s.sessions {
		if now.Sub(sess.LastActivityAt) > SessionTimeout {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed
}

// RunSweeper runs Sweep every SweepInterval until ctx is cancelled. It
// is owned by the process supervisor, not self-scheduled by the store,
// so tests can drive Sweep directly.
func (s *Store) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("capture: swept %d expired sessions", n)
			}
		}
	}
}
