package middleware

import (
	"testing"
	"time"
)

func TestLimiterTableReusesEntries(t *testing.T) {
	table := newLimiterTable()
	now := time.Now()

	a := table.get("user-1", 1, 1, now)
	b := table.get("user-1", 1, 1, now.Add(time.Second))
	if a != b {
		t.Error("same key returned different limiters; token state would reset per request")
	}
	if len(table.clients) != 1 {
		t.Errorf("table holds %d entries for one key, want 1", len(table.clients))
	}
}

func TestLimiterTableSweepEvictsIdleEntries(t *testing.T) {
	table := newLimiterTable()
	now := time.Now()

	table.get("idle", 1, 1, now.Add(-2*limiterIdleTTL))
	table.get("active", 1, 1, now)

	table.sweep(now.Add(-limiterIdleTTL))

	if _, ok := table.clients["idle"]; ok {
		t.Error("idle entry survived the sweep")
	}
	if _, ok := table.clients["active"]; !ok {
		t.Error("active entry was evicted")
	}
}

func TestLimiterTableSweepKeepsTokenState(t *testing.T) {
	table := newLimiterTable()
	now := time.Now()

	lim := table.get("user-1", 0.001, 1, now)
	lim.Allow() // drain the bucket

	table.sweep(now.Add(-limiterIdleTTL))

	if table.get("user-1", 0.001, 1, now).Allow() {
		t.Error("sweep reset a recently seen client's drained bucket")
	}
}
