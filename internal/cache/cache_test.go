package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/docscore/docscore/internal/score"
	"github.com/docscore/docscore/internal/semantic"
)

func TestCache_GetSetRoundTrip(t *testing.T) {
	c := New(NewMemoryStore(), time.Hour, 10)
	c.Set("k", []byte("v"))

	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Errorf("Get = %q, %v; want %q, true", got, ok, "v")
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c := New(NewMemoryStore(), time.Hour, 10)
	if _, ok := c.Get("absent"); ok {
		t.Error("Get(absent) = hit, want miss")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	now := time.Now()
	c := New(NewMemoryStore(), time.Hour, 10)
	c.now = func() time.Time { return now }

	c.Set("k", []byte("v"))

	c.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should be a miss")
	}

	// Expired entries are deleted silently.
	c.now = func() time.Time { return now }
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should have been removed")
	}
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	now := time.Now()
	c := New(NewMemoryStore(), 0, 10)
	c.now = func() time.Time { return now }
	c.Set("k", []byte("v"))

	c.now = func() time.Time { return now.Add(1000 * time.Hour) }
	if _, ok := c.Get("k"); !ok {
		t.Error("zero TTL should disable expiry")
	}
}

func TestCache_EvictsOldestBeyondCapacity(t *testing.T) {
	now := time.Now()
	c := New(NewMemoryStore(), time.Hour, 3)

	for i := 0; i < 5; i++ {
		i := i
		c.now = func() time.Time { return now.Add(time.Duration(i) * time.Minute) }
		c.Set(fmt.Sprintf("k%d", i), []byte("v"))
	}

	c.now = func() time.Time { return now.Add(10 * time.Minute) }
	for _, key := range []string{"k0", "k1"} {
		if _, ok := c.Get(key); ok {
			t.Errorf("oldest entry %s should have been evicted", key)
		}
	}
	for _, key := range []string{"k2", "k3", "k4"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("entry %s should survive eviction", key)
		}
	}
}

func TestCache_LastWriterWins(t *testing.T) {
	c := New(NewMemoryStore(), time.Hour, 10)
	c.Set("k", []byte("first"))
	c.Set("k", []byte("second"))

	got, _ := c.Get("k")
	if string(got) != "second" {
		t.Errorf("Get = %q, want the later write", got)
	}
}

func TestCache_SemanticEnvelope(t *testing.T) {
	c := New(NewMemoryStore(), time.Hour, 10)
	result := &semantic.Result{
		Criteria: map[string]score.CriterionResult{
			"OR-01": {CriterionID: "OR-01", Score: 7.5, Details: "ok"},
		},
		Summary: "fine",
		Raw:     []byte(`{"scores":{}}`),
	}

	c.SetSemantic("v1:abc", result)
	got := c.GetSemantic("v1:abc")
	if got == nil {
		t.Fatal("GetSemantic = nil, want cached result")
	}
	if got.Criteria["OR-01"].Score != 7.5 {
		t.Errorf("round-tripped score = %v, want 7.5", got.Criteria["OR-01"].Score)
	}
	if got.Summary != "fine" {
		t.Errorf("Summary = %q", got.Summary)
	}

	if c.GetSemantic("v1:other") != nil {
		t.Error("GetSemantic on an unknown hash should be nil")
	}
}

func TestCache_ReportKeyedByMode(t *testing.T) {
	c := New(NewMemoryStore(), time.Hour, 10)
	report := &score.ScoreReport{CompositeScore: 7.2, Status: score.StatusGreen}

	c.SetReport("v1:abc", "full", report)

	if got := c.GetReport("v1:abc", "full"); got == nil || got.CompositeScore != 7.2 {
		t.Errorf("GetReport(full) = %+v, want the cached report", got)
	}
	if c.GetReport("v1:abc", "estimated") != nil {
		t.Error("a full-mode report must not satisfy an estimated-mode lookup")
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	store := NewMemoryStore()
	c := New(store, time.Hour, 10)
	_ = store.Set(semanticKey("v1:abc"), Entry{Value: []byte("{broken"), SavedAt: time.Now()})

	if c.GetSemantic("v1:abc") != nil {
		t.Error("corrupt cached payload should read as a miss")
	}
}
