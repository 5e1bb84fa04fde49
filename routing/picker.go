package routing

import (
	"errors"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-rendezvous"
)

// ErrNoBackends indicates a picker created without any backend address
var ErrNoBackends = errors.New("no backends configured")

// Picker selects a backend address for a key using rendezvous hashing,
// so adding or removing one backend only remaps the keys that belonged
// to it.
//
// The backend list is kept here and the rendezvous table is rebuilt on
// every change; the rendezvous value itself is treated as immutable,
// the same way go-redis rebuilds its ring on topology changes.
type Picker struct {
	mu       sync.Mutex
	backends []string
	hash     *rendezvous.Rendezvous
}

// NewPicker creates a Picker over the given backend addresses.
func NewPicker(backends []string) (*Picker, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	owned := append([]string(nil), backends...)
	return &Picker{
		backends: owned,
		hash:     rendezvous.New(owned, xxhash.Sum64String),
	}, nil
}

// Pick returns the backend address responsible for key, or the empty
// string when every backend has been removed.
func (p *Picker) Pick(key string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hash.Lookup(key)
}

// Add registers an additional backend address. Adding an address that
// is already registered is a no-op.
func (p *Picker) Add(backend string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, b := range p.backends {
		if b == backend {
			return
		}
	}
	p.backends = append(p.backends, backend)
	p.hash = rendezvous.New(p.backends, xxhash.Sum64String)
}

// Remove unregisters a backend address. Removing an unknown address is
// a no-op.
func (p *Picker) Remove(backend string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, b := range p.backends {
		if b == backend {
			p.backends = append(p.backends[:i], p.backends[i+1:]...)
			p.hash = rendezvous.New(p.backends, xxhash.Sum64String)
			return
		}
	}
}
