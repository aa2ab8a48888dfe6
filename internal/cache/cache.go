// Package cache memoizes semantic evaluations and whole reports keyed
// by content hash. Policy: TTL-based silent expiry on read, capacity
// bound with oldest-first eviction, read or parse errors treated as
// misses. The cache owns eviction; callers only get and set.
package cache

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/docscore/docscore/internal/score"
	"github.com/docscore/docscore/internal/semantic"
)

// Entry is one stored value with its write timestamp.
type Entry struct {
	Value   []byte
	SavedAt time.Time
}

// KeyInfo identifies an entry for eviction ordering.
type KeyInfo struct {
	Key     string
	SavedAt time.Time
}

// Store is the key-value collaborator the cache drives. Implementations
// must be safe for use by a single cache instance; the cache serializes
// its own read-modify-write sequences.
type Store interface {
	Get(key string) (*Entry, error)
	Set(key string, e Entry) error
	Delete(key string) error
	List() ([]KeyInfo, error)
}

// Cache applies TTL and capacity policy over a Store.
type Cache struct {
	mu         sync.Mutex
	store      Store
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// New creates a cache over the given store.
func New(store Store, ttl time.Duration, maxEntries int) *Cache {
	return &Cache{
		store:      store,
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the value for key, treating expired entries and store
// errors as misses. Expired entries are deleted silently.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, err := c.store.Get(key)
	if err != nil || e == nil {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.SavedAt) > c.ttl {
		_ = c.store.Delete(key)
		return nil, false
	}
	return e.Value, true
}

// Set writes a value, last-writer-wins, then prunes oldest entries
// while over capacity.
func (c *Cache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.store.Set(key, Entry{Value: value, SavedAt: c.now()})
	c.prune()
}

func (c *Cache) prune() {
	if c.maxEntries <= 0 {
		return
	}
	infos, err := c.store.List()
	if err != nil || len(infos) <= c.maxEntries {
		return
	}
	// Oldest first.
	for i := 0; i < len(infos); i++ {
		for j := i + 1; j < len(infos); j++ {
			if infos[j].SavedAt.Before(infos[i].SavedAt) {
				infos[i], infos[j] = infos[j], infos[i]
			}
		}
	}
	for _, info := range infos[:len(infos)-c.maxEntries] {
		_ = c.store.Delete(info.Key)
	}
}

// Persistence layout keys.

func semanticKey(contentHash string) string { return "sem:" + contentHash }

func reportKey(contentHash, mode string) string { return "report:" + contentHash + ":" + mode }

type semanticEnvelope struct {
	Raw         json.RawMessage  `json:"raw,omitempty"`
	Transformed *semantic.Result `json:"transformed"`
	SavedAt     time.Time        `json:"savedAt"`
}

type reportEnvelope struct {
	Results *score.ScoreReport `json:"results"`
	SavedAt time.Time          `json:"savedAt"`
}

// GetSemantic returns a previously cached semantic result for a content
// hash, or nil on miss or parse failure.
func (c *Cache) GetSemantic(contentHash string) *semantic.Result {
	data, ok := c.Get(semanticKey(contentHash))
	if !ok {
		return nil
	}
	var env semanticEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	return env.Transformed
}

// SetSemantic caches both the raw payload and the transformed result.
func (c *Cache) SetSemantic(contentHash string, result *semantic.Result) {
	env := semanticEnvelope{Raw: result.Raw, Transformed: result, SavedAt: time.Now()}
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	c.Set(semanticKey(contentHash), data)
}

// GetReport returns a cached whole report for hash+mode, or nil.
func (c *Cache) GetReport(contentHash, mode string) *score.ScoreReport {
	data, ok := c.Get(reportKey(contentHash, mode))
	if !ok {
		return nil
	}
	var env reportEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}
	return env.Results
}

// SetReport caches a whole report keyed by contentHash:mode.
func (c *Cache) SetReport(contentHash, mode string, report *score.ScoreReport) {
	env := reportEnvelope{Results: report, SavedAt: time.Now()}
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	c.Set(reportKey(contentHash, mode), data)
}
