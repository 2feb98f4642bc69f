// Package geo resolves candidate domains to addresses and maps
// addresses to countries.
package geo

import (
	"context"
	"net"
	"sync"
)

// Resolver performs forward DNS lookups with per-run memoization.
// The cache is scoped to the resolver instance: construct one per scan
// run and discard it afterwards. Concurrent use is safe; last writer
// wins on a racing key, which is fine since DNS answers are treated as
// idempotent within a run.
type Resolver struct {
	mu     sync.RWMutex
	cache  map[string]string
	lookup func(ctx context.Context, host string) ([]string, error)
}

// NewResolver creates a resolver with an empty cache.
func NewResolver() *Resolver {
	r := &Resolver{cache: make(map[string]string)}
	r.lookup = func(ctx context.Context, host string) ([]string, error) {
		return net.DefaultResolver.LookupHost(ctx, host)
	}
	return r
}

// NewResolverFunc creates a resolver backed by a custom lookup, for tests.
func NewResolverFunc(lookup func(ctx context.Context, host string) ([]string, error)) *Resolver {
	return &Resolver{cache: make(map[string]string), lookup: lookup}
}

// Resolve returns the first address for a domain, or false if resolution
// fails. Successful answers are cached for the life of the resolver.
func (r *Resolver) Resolve(ctx context.Context, domain string) (string, bool) {
	r.mu.RLock()
	ip, ok := r.cache[domain]
	r.mu.RUnlock()
	if ok {
		return ip, ip != ""
	}

	addrs, err := r.lookup(ctx, domain)
	if err != nil || len(addrs) == 0 {
		return "", false
	}

	r.mu.Lock()
	r.cache[domain] = addrs[0]
	r.mu.Unlock()

	return addrs[0], true
}

// CacheSize returns the number of memoized domains.
func (r *Resolver) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
