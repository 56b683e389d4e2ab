// Package dnscache provides a thread-safe, TTL-based cache in front of a
// types.Resolver, with singleflight deduplication for concurrent lookups of
// the same name.
package dnscache

import (
	"context"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/KMK-ONLINE/valid-email/types"
)

// Cache is a types.Resolver that remembers successful answers for a TTL.
// Errors and timeouts are never cached.
//
// A cache miss starts a lookup that belongs to no single caller: it opens
// its own session on the underlying resolver and runs under the cache's
// lookup timeout, detached from the cancellation of the caller that
// started it. Every caller waits for it only until its own context ends.
type Cache struct {
	resolver      types.Resolver
	ttl           time.Duration
	lookupTimeout time.Duration
	log           zerolog.Logger
	group    singleflight.Group
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

type entry struct {
	mx      []*net.MX
	ips     []net.IP
	expires time.Time
}

// DefaultLookupTimeout bounds a shared lookup when New gets no timeout.
const DefaultLookupTimeout = 5 * time.Second

// New wraps resolver with a cache holding answers for ttl. Each shared
// lookup is bounded by lookupTimeout.
func New(resolver types.Resolver, ttl, lookupTimeout time.Duration, log zerolog.Logger) *Cache {
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}
	return &Cache{
		resolver:      resolver,
		ttl:           ttl,
		lookupTimeout: lookupTimeout,
		log:           log,
		now:           time.Now,
		entries:       make(map[string]entry),
	}
}

// Open returns a session that serves cached answers. It holds no
// connection of its own.
func (c *Cache) Open(context.Context) (types.Session, error) {
	return &session{cache: c}, nil
}

// Len returns the number of entries in the cache (for diagnostics).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) get(key string) (entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return entry{}, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return entry{}, false
	}
	return e, true
}

func (c *Cache) put(key string, e entry) {
	e.expires = c.now().Add(c.ttl)
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

type session struct {
	cache  *Cache
	closed atomic.Bool
}

func (s *session) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	e, err := s.lookup(ctx, "mx:"+strings.ToLower(domain), func(ctx context.Context, inner types.Session) (entry, error) {
		records, err := inner.LookupMX(ctx, domain)
		return entry{mx: records}, err
	})
	if err != nil {
		return nil, err
	}
	return copyMX(e.mx), nil
}

func (s *session) LookupA(ctx context.Context, domain string) ([]net.IP, error) {
	e, err := s.lookup(ctx, "a:"+strings.ToLower(domain), func(ctx context.Context, inner types.Session) (entry, error) {
		ips, err := inner.LookupA(ctx, domain)
		return entry{ips: ips}, err
	})
	if err != nil {
		return nil, err
	}
	return copyIPs(e.ips), nil
}

// lookup serves key from the cache or joins the shared lookup for key.
func (s *session) lookup(ctx context.Context, key string, fn lookupFunc) (entry, error) {
	if s.closed.Load() {
		return entry{}, net.ErrClosed
	}
	if e, ok := s.cache.get(key); ok {
		s.cache.log.Debug().Str("key", key).Msg("DNS cache hit")
		return e, nil
	}

	ch := s.cache.group.DoChan(key, func() (any, error) {
		return s.cache.fetch(ctx, key, fn)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return entry{}, res.Err
		}
		return res.Val.(entry), nil
	case <-ctx.Done():
		return entry{}, ctx.Err()
	}
}

func (s *session) Close() error {
	s.closed.Store(true)
	return nil
}

type lookupFunc func(ctx context.Context, inner types.Session) (entry, error)

// fetch runs one shared lookup on a session of its own. ctx only supplies
// values; its deadline and cancellation do not apply.
func (c *Cache) fetch(ctx context.Context, key string, fn lookupFunc) (entry, error) {
	// A flight that finished between the caller's miss and DoChan has
	// already stored its answer.
	if e, ok := c.get(key); ok {
		return e, nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.lookupTimeout)
	defer cancel()

	inner, err := c.resolver.Open(ctx)
	if err != nil {
		return entry{}, err
	}
	defer func() {
		if cErr := inner.Close(); cErr != nil {
			c.log.Warn().Err(cErr).Str("key", key).Msg("closing resolver session")
		}
	}()

	e, err := fn(ctx, inner)
	if err != nil {
		return entry{}, err
	}
	c.put(key, e)
	return e, nil
}

// copyMX returns a deep copy of MX records to prevent callers from
// mutating cached data (e.g., via sort.Slice).
func copyMX(records []*net.MX) []*net.MX {
	if records == nil {
		return nil
	}
	out := make([]*net.MX, len(records))
	for i, r := range records {
		cp := *r
		out[i] = &cp
	}
	return out
}

func copyIPs(ips []net.IP) []net.IP {
	if ips == nil {
		return nil
	}
	out := make([]net.IP, len(ips))
	for i, ip := range ips {
		out[i] = append(net.IP(nil), ip...)
	}
	return out
}
