package explorer

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/financial-explorer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerBeginClearsPreviousResult(t *testing.T) {
	tr := NewTracker()

	first := tr.Begin("s", "AAPL")
	require.True(t, tr.Complete("s", models.QueryResult{Seq: first.Seq, Ticker: "AAPL", State: models.StateFailed, Message: "Failed to fetch data."}))

	second := tr.Begin("s", "MSFT")
	assert.Greater(t, second.Seq, first.Seq)

	cur, ok := tr.Current("s")
	require.True(t, ok)
	assert.Equal(t, models.StateLoading, cur.State)
	assert.Empty(t, cur.Message)
	assert.Equal(t, "MSFT", cur.Ticker)
}

func TestTrackerRejectsStaleCompletion(t *testing.T) {
	tr := NewTracker()

	old := tr.Begin("s", "AAPL")
	latest := tr.Begin("s", "MSFT")

	// the newer response arrives first, the older one afterwards
	assert.True(t, tr.Complete("s", models.QueryResult{Seq: latest.Seq, Ticker: "MSFT", State: models.StateSuccess}))
	assert.False(t, tr.Complete("s", models.QueryResult{Seq: old.Seq, Ticker: "AAPL", State: models.StateSuccess}))

	cur, _ := tr.Current("s")
	assert.Equal(t, "MSFT", cur.Ticker)
	assert.Equal(t, models.StateSuccess, cur.State)
}

func TestTrackerSessionsAreIndependent(t *testing.T) {
	tr := NewTracker()

	a := tr.Begin("a", "AAPL")
	b := tr.Begin("b", "MSFT")

	assert.True(t, tr.Complete("a", models.QueryResult{Seq: a.Seq, State: models.StateSuccess}))
	assert.True(t, tr.Complete("b", models.QueryResult{Seq: b.Seq, State: models.StateNoData}))
	assert.False(t, tr.Complete("c", models.QueryResult{Seq: b.Seq}))

	_, ok := tr.Current("c")
	assert.False(t, ok)
}

func TestTrackerSequenceIsMonotonic(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	seqs := make(chan uint64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seqs <- tr.Begin(fmt.Sprintf("s%d", i), "AAPL").Seq
		}(i)
	}
	wg.Wait()
	close(seqs)

	seen := make(map[uint64]bool)
	for s := range seqs {
		assert.False(t, seen[s], "duplicate sequence %d", s)
		seen[s] = true
	}
	assert.Len(t, seen, 100)
}

func TestTrackerExpiresIdleSessions(t *testing.T) {
	tr := NewTracker()
	now := time.Now()
	tr.now = func() time.Time { return now }

	idle := tr.Begin("idle", "AAPL")
	now = now.Add(2 * sessionTTL)
	tr.Begin("fresh", "MSFT")

	_, ok := tr.Current("idle")
	assert.False(t, ok)
	assert.False(t, tr.Complete("idle", models.QueryResult{Seq: idle.Seq, State: models.StateSuccess}))
	_, ok = tr.Current("fresh")
	assert.True(t, ok)
	assert.Equal(t, 1, tr.Len())
}

func TestTrackerCapsSessions(t *testing.T) {
	tr := NewTracker()

	keep := tr.Begin("keep", "AAPL")
	for i := 0; i < 5*maxSessions; i++ {
		tr.Begin(fmt.Sprintf("s%d", i), "AAPL")
		if i%100 == 0 {
			// a session in active use is never the one evicted
			_, ok := tr.Current("keep")
			require.True(t, ok, "after %d sessions", i)
		}
	}

	assert.Equal(t, maxSessions, tr.Len())
	_, ok := tr.Current("s0")
	assert.False(t, ok)
	assert.True(t, tr.Complete("keep", models.QueryResult{Seq: keep.Seq, State: models.StateSuccess}))
}
