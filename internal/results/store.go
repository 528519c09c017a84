// Package results keeps the latest result of each capability per session so pages can be re-rendered.
//
// Requests for the same capability can overlap (a user resubmits before the first answer arrives).
// Every request takes a Ticket before calling the backend and hands the response back with Complete;
// the store's Policy decides whether an out of order response replaces the stored one.
package results

import (
	"fmt"
	"sync"
	"time"

	"github.com/eduvision-ai/eduvision/internal/metrics"
	"github.com/google/uuid"
)

// Policy decides which of several overlapping responses is kept
type Policy int

const (
	// LatestRequest keeps the response to the most recently issued request; older responses arriving late are discarded
	LatestRequest Policy = iota
	// LastArrival keeps whichever response arrived last, regardless of when its request was issued
	LastArrival
)

var policyNames = map[string]Policy{
	"latest-request": LatestRequest,
	"last-arrival":   LastArrival,
}

func ParsePolicy(name string) (Policy, error) {
	p, ok := policyNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown result policy %q", name)
	}
	return p, nil
}

func (p Policy) String() string {
	for name, policy := range policyNames {
		if policy == p {
			return name
		}
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Ticket identifies one request for a capability
type Ticket struct {
	SessionID  uuid.UUID
	Capability string
	Seq        uint64
}

// Entry is a stored result
type Entry struct {
	Value       any
	Seq         uint64
	CompletedAt time.Time
}

type slot struct {
	issued uint64 // newest ticket issued
	stored uint64 // ticket of the stored entry
	entry  *Entry
}

type sessionState struct {
	slots      map[string]*slot
	documentID string
	lastSeen   time.Time
}

// Store is safe for concurrent use
type Store struct {
	mu       sync.Mutex
	policy   Policy
	seq      uint64
	sessions map[uuid.UUID]*sessionState
	now      func() time.Time
}

func NewStore(policy Policy) *Store {
	return &Store{
		policy:   policy,
		sessions: make(map[uuid.UUID]*sessionState),
		now:      time.Now,
	}
}

func (s *Store) Policy() Policy {
	return s.policy
}

// state returns the session's state, creating it when needed. Caller holds mu.
func (s *Store) state(sessionID uuid.UUID) *sessionState {
	st, ok := s.sessions[sessionID]
	if !ok {
		st = &sessionState{slots: make(map[string]*slot)}
		s.sessions[sessionID] = st
	}
	st.lastSeen = s.now()
	return st
}

func (st *sessionState) slot(capability string) *slot {
	sl, ok := st.slots[capability]
	if !ok {
		sl = &slot{}
		st.slots[capability] = sl
	}
	return sl
}

// Begin issues a ticket for a new request. Tickets increase monotonically across the store.
func (s *Store) Begin(sessionID uuid.UUID, capability string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.state(sessionID).slot(capability).issued = s.seq

	return Ticket{SessionID: sessionID, Capability: capability, Seq: s.seq}
}

// Complete stores the response for the ticket and reports whether it was kept.
//
// Under LatestRequest a response is discarded when a response to a newer request is already stored.
// Responses for sessions that have been forgotten are always discarded.
func (s *Store) Complete(t Ticket, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, kept := s.complete(t, value)
	return kept
}

// CompleteUpload is Complete for an upload response. When the response is kept and documentID is set,
// it also becomes the session's document id, so a stale upload can replace neither.
func (s *Store) CompleteUpload(t Ticket, value any, documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, kept := s.complete(t, value)
	if kept && documentID != "" {
		st.documentID = documentID
	}
	return kept
}

// complete applies the policy to the response. Caller holds mu.
func (s *Store) complete(t Ticket, value any) (*sessionState, bool) {
	st, ok := s.sessions[t.SessionID]
	if !ok {
		return nil, false
	}
	st.lastSeen = s.now()
	sl := st.slot(t.Capability)

	if s.policy == LatestRequest && t.Seq < sl.stored {
		metrics.StaleResultsDiscarded.WithLabelValues(t.Capability).Inc()
		return st, false
	}

	sl.stored = t.Seq
	sl.entry = &Entry{Value: value, Seq: t.Seq, CompletedAt: s.now()}
	return st, true
}

// Pending reports whether a request for the capability was issued after the stored result
func (s *Store) Pending(sessionID uuid.UUID, capability string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	sl, ok := st.slots[capability]
	return ok && sl.issued > sl.stored
}

// Get returns the stored result for the capability
func (s *Store) Get(sessionID uuid.UUID, capability string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		return Entry{}, false
	}
	sl, ok := st.slots[capability]
	if !ok || sl.entry == nil {
		return Entry{}, false
	}
	return *sl.entry, true
}

// DocumentID returns the document most recently uploaded in the session
func (s *Store) DocumentID(sessionID uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.sessions[sessionID]; ok {
		return st.documentID
	}
	return ""
}

// Forget drops everything held for the session
func (s *Store) Forget(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
}

// Prune drops sessions that have not been used for longer than idle and returns how many were removed
func (s *Store) Prune(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	removed := 0
	for id, st := range s.sessions {
		if st.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of sessions with stored state
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}
