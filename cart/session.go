package cart

import (
	"sort"
	"strings"
	"sync"
)

// State is the structured value the session holds per cart instance: the
// ordered line items plus the cart-level coupons and fees.
type State struct {
	Items   *Content               `json:"items"`
	Coupons map[string]*CartCoupon `json:"coupons"`
	Fees    map[string]*CartFee    `json:"fees"`
}

// NewState returns an empty cart state.
func NewState() *State {
	return &State{
		Items:   NewContent(),
		Coupons: make(map[string]*CartCoupon),
		Fees:    make(map[string]*CartFee),
	}
}

// SessionStore is the key-value session boundary the cart persists its
// per-instance state through.
type SessionStore interface {
	Get(key string) (*State, bool)
	Put(key string, state *State)
	Remove(key string)
	Keys() []string
}

// MemoryStore is a mutex-guarded in-memory SessionStore.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*State)}
}

func (m *MemoryStore) Get(key string) (*State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.states[key]
	return s, ok
}

func (m *MemoryStore) Put(key string, state *State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[key] = state
}

func (m *MemoryStore) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, key)
}

func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.states))
	for k := range m.states {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Namespaced wraps a SessionStore so every key is scoped under a prefix.
// Used to give each HTTP session its own private cart namespace over a
// shared store.
func Namespaced(s SessionStore, prefix string) SessionStore {
	return &namespacedStore{base: s, prefix: prefix + ":"}
}

type namespacedStore struct {
	base   SessionStore
	prefix string
}

func (n *namespacedStore) Get(key string) (*State, bool) { return n.base.Get(n.prefix + key) }
func (n *namespacedStore) Put(key string, state *State)  { n.base.Put(n.prefix+key, state) }
func (n *namespacedStore) Remove(key string)             { n.base.Remove(n.prefix + key) }

func (n *namespacedStore) Keys() []string {
	var keys []string
	for _, k := range n.base.Keys() {
		if strings.HasPrefix(k, n.prefix) {
			keys = append(keys, strings.TrimPrefix(k, n.prefix))
		}
	}
	return keys
}
