// Package dnsclient provides the DNS resolvers used by the MX level.
//
// Client speaks the DNS wire protocol through github.com/miekg/dns; each
// session owns one connection to a nameserver that is released by Close.
// System adapts the Go standard resolver for hosts where no nameserver
// list is available.
package dnsclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/KMK-ONLINE/valid-email/types"
)

var (
	// ErrNoNameservers is returned when a Client is built without servers.
	ErrNoNameservers = errors.New("dnsclient: no nameservers configured")

	// ErrServerFailure is returned for responses other than NOERROR and
	// NXDOMAIN (SERVFAIL, REFUSED, ...).
	ErrServerFailure = errors.New("dnsclient: server failure")
)

// DefaultResolvConf is the resolver configuration read by FromResolvConf
// when no path is given.
const DefaultResolvConf = "/etc/resolv.conf"

// Config configures a wire Client.
type Config struct {
	// Nameservers are tried in order when opening a session. A missing
	// port defaults to 53. Only "tcp" fails over past an unreachable
	// server: a UDP dial succeeds without contacting the server, so a dead
	// first nameserver surfaces as a lookup timeout.
	Nameservers []string
	// Net is "udp" (default) or "tcp".
	Net string
	// Timeout bounds dialing and each exchange when the context carries
	// no earlier deadline. Default: 5s
	Timeout time.Duration
}

// Client is a types.Resolver backed by github.com/miekg/dns.
type Client struct {
	servers []string
	client  *dns.Client
}

// New creates a Client for the configured nameservers.
func New(cfg Config) (*Client, error) {
	if len(cfg.Nameservers) == 0 {
		return nil, ErrNoNameservers
	}
	if cfg.Net == "" {
		cfg.Net = "udp"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	servers := make([]string, len(cfg.Nameservers))
	for i, s := range cfg.Nameservers {
		if _, _, err := net.SplitHostPort(s); err != nil {
			s = net.JoinHostPort(s, "53")
		}
		servers[i] = s
	}

	return &Client{
		servers: servers,
		client:  &dns.Client{Net: cfg.Net, Timeout: cfg.Timeout},
	}, nil
}

// FromResolvConf creates a Client from a resolv.conf style file.
func FromResolvConf(path string) (*Client, error) {
	if path == "" {
		path = DefaultResolvConf
	}
	cc, err := dns.ClientConfigFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	servers := make([]string, len(cc.Servers))
	for i, s := range cc.Servers {
		servers[i] = net.JoinHostPort(s, cc.Port)
	}
	return New(Config{
		Nameservers: servers,
		Timeout:     time.Duration(cc.Timeout) * time.Second,
	})
}

// Nameservers returns the host:port list the client dials.
func (c *Client) Nameservers() []string {
	return append([]string(nil), c.servers...)
}

// Open dials the first nameserver that accepts a connection. Over UDP that
// is always the first one.
func (c *Client) Open(ctx context.Context) (types.Session, error) {
	var lastErr error
	for _, server := range c.servers {
		conn, err := c.client.DialContext(ctx, server)
		if err == nil {
			return &session{client: c.client, conn: conn}, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("dial nameserver: %w", lastErr)
}

type session struct {
	client *dns.Client
	conn   *dns.Conn
}

func (s *session) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	in, err := s.exchange(ctx, domain, dns.TypeMX)
	if err != nil {
		return nil, err
	}
	var out []*net.MX
	for _, rr := range in.Answer {
		if mx, ok := rr.(*dns.MX); ok {
			out = append(out, &net.MX{Host: mx.Mx, Pref: mx.Preference})
		}
	}
	return out, nil
}

func (s *session) LookupA(ctx context.Context, domain string) ([]net.IP, error) {
	in, err := s.exchange(ctx, domain, dns.TypeA)
	if err != nil {
		return nil, err
	}
	var out []net.IP
	for _, rr := range in.Answer {
		if a, ok := rr.(*dns.A); ok {
			out = append(out, a.A)
		}
	}
	return out, nil
}

func (s *session) Close() error {
	return s.conn.Close()
}

// exchange sends one query. NXDOMAIN yields an empty answer.
func (s *session) exchange(ctx context.Context, domain string, qtype uint16) (*dns.Msg, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), qtype)
	m.RecursionDesired = true

	in, _, err := s.client.ExchangeWithConnContext(ctx, m, s.conn)
	if err != nil {
		return nil, fmt.Errorf("%s query for %s: %w", dns.TypeToString[qtype], domain, err)
	}

	switch in.Rcode {
	case dns.RcodeSuccess:
		return in, nil
	case dns.RcodeNameError:
		return new(dns.Msg), nil
	default:
		return nil, fmt.Errorf("%w: %s for %s %s",
			ErrServerFailure, dns.RcodeToString[in.Rcode], dns.TypeToString[qtype], domain)
	}
}
