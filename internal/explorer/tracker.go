package explorer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/mauv0809/financial-explorer/internal/models"
)

const (
	maxSessions = 1024
	sessionTTL  = time.Hour
)

type entry struct {
	result  models.QueryResult
	touched time.Time
}

// Tracker keeps the latest query result per viewer session. Every submission gets a
// sequence number from a single counter; a completion is only kept if its sequence
// number is still the latest one begun for that session.
//
// At most maxSessions sessions are held. Beyond that the least recently used one is
// evicted, and a session idle for longer than sessionTTL reads as unknown.
type Tracker struct {
	seq      atomic.Uint64
	mu       sync.Mutex
	sessions *lru.Cache
	now      func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		sessions: lru.New(maxSessions),
		now:      time.Now,
	}
}

// Begin starts a submission for session. The previous result, including any error,
// is replaced by a Loading result carrying the new sequence number.
func (t *Tracker) Begin(session, ticker string) models.QueryResult {
	r := models.QueryResult{
		Seq:    t.seq.Add(1),
		Ticker: ticker,
		State:  models.StateLoading,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions.Add(session, entry{result: r, touched: t.now()})
	return r
}

// Complete records r for session unless a newer submission has begun since.
// It reports whether r was kept.
func (t *Tracker) Complete(session string, r models.QueryResult) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.getLocked(session)
	if !ok || cur.result.Seq != r.Seq {
		return false
	}
	t.sessions.Add(session, entry{result: r, touched: t.now()})
	return true
}

// Current returns the latest result for session.
func (t *Tracker) Current(session string) (models.QueryResult, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.getLocked(session)
	return cur.result, ok
}

// Len reports how many sessions are held.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessions.Len()
}

// getLocked looks session up and drops it if it has been idle past sessionTTL.
func (t *Tracker) getLocked(session string) (entry, bool) {
	v, ok := t.sessions.Get(session)
	if !ok {
		return entry{}, false
	}
	e := v.(entry)
	if e.touched.Before(t.now().Add(-sessionTTL)) {
		t.sessions.Remove(session)
		return entry{}, false
	}
	return e, true
}
