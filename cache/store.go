package cache

import (
	"container/list"
	"context"
	"sort"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// Store is an in-memory, capacity-bounded cache with TTL expiry, strict LRU
// eviction and a tag index for group invalidation.
//
// Expiry is lazy: an expired entry is discarded only when it is looked up,
// and until then it still occupies a slot and can be chosen for eviction.
// Eviction happens only when Set adds a new key to a full store.
type Store struct {
	mu      sync.Mutex
	policy  Policy
	maxSize int
	now     func() time.Time

	entries map[string]*list.Element
	order   *list.List // front is most recently used
	tags    map[string]mapset.Set[string]

	hits          uint64
	misses        uint64
	sets          uint64
	evictions     uint64
	invalidations uint64
}

type cacheEntry struct {
	key            string
	value          any
	expiresAt      time.Time
	lastAccessedAt time.Time
	tags           mapset.Set[string]
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock replaces the store's time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a new store with the given policy.
func NewStore(policy Policy, opts ...StoreOption) *Store {
	s := &Store{
		policy:  policy,
		maxSize: policy.EffectiveMaxSize(),
		now:     time.Now,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		tags:    make(map[string]mapset.Set[string]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the store's policy.
func (s *Store) Policy() Policy {
	return s.policy
}

// Get retrieves a value from the cache. Returns (nil, false) on miss or expiry.
// A hit moves the entry to the most recently used position.
func (s *Store) Get(_ context.Context, key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	now := s.now()
	if !now.Before(entry.expiresAt) {
		s.removeElement(elem)
		s.misses++
		return nil, false
	}

	s.hits++
	entry.lastAccessedAt = now
	s.order.MoveToFront(elem)
	return entry.value, true
}

// Set stores value under key, filed under each tag. A ttl <= 0 uses the
// policy default; the result is clamped to the policy maximum. If the
// effective TTL is zero nothing is stored.
func (s *Store) Set(_ context.Context, key string, value any, ttl time.Duration, tags ...string) {
	ttl = s.policy.EffectiveTTL(ttl)
	if ttl <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	tagSet := mapset.NewThreadUnsafeSet[string]()
	for _, tag := range tags {
		if tag != "" {
			tagSet.Add(tag)
		}
	}

	if elem, ok := s.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		s.unindex(entry)
		entry.value = value
		entry.expiresAt = now.Add(ttl)
		entry.lastAccessedAt = now
		entry.tags = tagSet
		s.index(entry)
		s.order.MoveToFront(elem)
		s.sets++
		return
	}

	if len(s.entries) >= s.maxSize {
		if oldest := s.order.Back(); oldest != nil {
			s.removeElement(oldest)
			s.evictions++
		}
	}

	entry := &cacheEntry{
		key:            key,
		value:          value,
		expiresAt:      now.Add(ttl),
		lastAccessedAt: now,
		tags:           tagSet,
	}
	s.entries[key] = s.order.PushFront(entry)
	s.index(entry)
	s.sets++
}

// Delete removes a value from the cache. Idempotent - no effect on miss.
func (s *Store) Delete(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		s.removeElement(elem)
	}
}

// InvalidateTag removes every entry filed under tag and returns how many
// were removed.
func (s *Store) InvalidateTag(_ context.Context, tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.invalidateTag(tag)
}

// InvalidateTags invalidates each tag in turn. An entry filed under several
// of the tags is removed, and counted, once.
func (s *Store) InvalidateTags(_ context.Context, tags ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, tag := range tags {
		removed += s.invalidateTag(tag)
	}
	return removed
}

// Clear empties the store and the tag index. Counters are kept.
func (s *Store) Clear(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*list.Element)
	s.order.Init()
	s.tags = make(map[string]mapset.Set[string])
}

// Stats returns a snapshot of the store counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hitRate float64
	if total := s.hits + s.misses; total > 0 {
		hitRate = float64(s.hits) / float64(total)
	}

	return Stats{
		Hits:          s.hits,
		Misses:        s.misses,
		Sets:          s.sets,
		Evictions:     s.evictions,
		Invalidations: s.invalidations,
		HitRate:       hitRate,
		Size:          len(s.entries),
		MaxSize:       s.maxSize,
		TagCount:      len(s.tags),
	}
}

// Len returns the number of entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Keys returns the keys in eviction order, most recently used first.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*cacheEntry).key)
	}
	return keys
}

// Tags returns the indexed tags, sorted.
func (s *Store) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags := make([]string, 0, len(s.tags))
	for tag := range s.tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (s *Store) invalidateTag(tag string) int {
	keys, ok := s.tags[tag]
	if !ok {
		return 0
	}

	removed := 0
	for _, key := range keys.ToSlice() {
		if elem, ok := s.entries[key]; ok {
			s.removeElement(elem)
			removed++
		}
	}
	delete(s.tags, tag)
	s.invalidations += uint64(removed)
	return removed
}

// removeElement drops an entry and unfiles it from every tag. Callers hold mu.
func (s *Store) removeElement(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	s.order.Remove(elem)
	delete(s.entries, entry.key)
	s.unindex(entry)
}

func (s *Store) index(entry *cacheEntry) {
	entry.tags.Each(func(tag string) bool {
		keys, ok := s.tags[tag]
		if !ok {
			keys = mapset.NewThreadUnsafeSet[string]()
			s.tags[tag] = keys
		}
		keys.Add(entry.key)
		return false
	})
}

func (s *Store) unindex(entry *cacheEntry) {
	entry.tags.Each(func(tag string) bool {
		if keys, ok := s.tags[tag]; ok {
			keys.Remove(entry.key)
			if keys.Cardinality() == 0 {
				delete(s.tags, tag)
			}
		}
		return false
	})
}

// Ensure Store implements Cache
var _ Cache = (*Store)(nil)
