package shellcache

import (
	"sort"
	"sync"
)

// Store is one named cache: request key to snapshot
type Store struct {
	name    string
	mu      sync.RWMutex
	entries map[string]*Snapshot
}

func newStore(name string) *Store {
	return &Store{name: name, entries: make(map[string]*Snapshot)}
}

// Name returns the store's name
func (s *Store) Name() string {
	return s.name
}

// Match returns a copy of the snapshot stored under key
func (s *Store) Match(key string) (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return snap.clone(), true
}

// Put stores snap under key, replacing any previous entry
func (s *Store) Put(key string, snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = snap.clone()
}

// PutAll stores every entry in one step; readers never observe a partial set
func (s *Store) PutAll(entries map[string]*Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, snap := range entries {
		s.entries[key] = snap.clone()
	}
}

// Delete removes key and reports whether it was present
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok
}

// Keys returns the stored keys in sorted order
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Registry holds stores by name
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// Open returns the store called name, creating it if needed
func (r *Registry) Open(name string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[name]
	if !ok {
		store = newStore(name)
		r.stores[name] = store
	}
	return store
}

// Has reports whether a store called name exists
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.stores[name]
	return ok
}

// Delete drops the store called name and reports whether it existed
func (r *Registry) Delete(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.stores[name]
	delete(r.stores, name)
	return ok
}

// Keys returns the store names in sorted order
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
