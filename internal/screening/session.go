package screening

import (
	"context"
	"sync"
	"time"

	"github.com/molscreen/molscreen/internal/infrastructure/logging"
	"github.com/molscreen/molscreen/pkg/errors"
)

// InputSource identifies which of the two mutually exclusive input channels
// is active for a session.
type InputSource string

const (
	SourceNone InputSource = ""
	SourceText InputSource = "text"
	SourceFile InputSource = "file"
)

// Session is the state of one visitor's screening workflow.  Exactly one
// input source is active at a time; selecting either clears the other and
// any previous result set.  A submission in flight blocks overlapping
// submissions for the same session.
type Session struct {
	mu       sync.Mutex
	source   InputSource
	text     string
	fileName string
	results  []Prediction
	hasRes   bool
	inFlight bool
	lastSeen time.Time
}

// View is an immutable snapshot of a session, safe to hand to handlers and
// templates without further locking.
type View struct {
	Source     InputSource
	Text       string
	FileName   string
	HasResults bool
	InFlight   bool
	Results    []Prediction
}

func newSession() *Session {
	return &Session{lastSeen: time.Now()}
}

// UseText activates the free-text channel, clearing any selected file and
// any previous result set.
func (s *Session) UseText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = SourceText
	s.text = text
	s.fileName = ""
	s.results = nil
	s.hasRes = false
	s.lastSeen = time.Now()
}

// UseFile activates the file channel, clearing any entered text and any
// previous result set.
func (s *Session) UseFile(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = SourceFile
	s.fileName = name
	s.text = ""
	s.results = nil
	s.hasRes = false
	s.lastSeen = time.Now()
}

// Begin marks a submission as in flight.  A second submission while one is
// pending is rejected with a conflict.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return errors.Conflict("a prediction request is already in progress")
	}
	s.inFlight = true
	s.lastSeen = time.Now()
	return nil
}

// Complete stores a fresh result set, replacing any prior one, and clears
// the in-flight flag.
func (s *Session) Complete(results []Prediction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	s.hasRes = true
	s.inFlight = false
	s.lastSeen = time.Now()
}

// Fail clears the in-flight flag without installing results.
func (s *Session) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.lastSeen = time.Now()
}

// Clear resets the session to its initial state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = SourceNone
	s.text = ""
	s.fileName = ""
	s.results = nil
	s.hasRes = false
	s.inFlight = false
	s.lastSeen = time.Now()
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := make([]Prediction, len(s.results))
	copy(results, s.results)
	return View{
		Source:     s.source,
		Text:       s.text,
		FileName:   s.fileName,
		HasResults: s.hasRes,
		InFlight:   s.inFlight,
		Results:    results,
	}
}

func (s *Session) touchedBefore(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff) && !s.inFlight
}

// Store keeps sessions in memory, keyed by the browser session ID, and
// evicts idle ones after a TTL.  There is no durable state: a restart
// forgets everything.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	log      logging.Logger
}

// NewStore constructs a session store with the given idle TTL.
func NewStore(ttl time.Duration, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		log:      log.Named("sessions"),
	}
}

// Get returns the session for id, creating it on first use.
func (st *Store) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		return s
	}
	s := newSession()
	st.sessions[id] = s
	return s
}

// Delete removes the session for id, if any.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// sweep evicts sessions idle for longer than the TTL.  In-flight sessions
// are never evicted.
func (st *Store) sweep() int {
	cutoff := time.Now().Add(-st.ttl)
	st.mu.Lock()
	defer st.mu.Unlock()
	evicted := 0
	for id, s := range st.sessions {
		if s.touchedBefore(cutoff) {
			delete(st.sessions, id)
			evicted++
		}
	}
	return evicted
}

// StartSweeper runs periodic eviction until ctx is cancelled.
func (st *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := st.sweep(); n > 0 {
					st.log.Debug("evicted idle sessions", logging.Int("count", n))
				}
			}
		}
	}()
}
