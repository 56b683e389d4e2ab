package dnsclient

import (
	"context"
	"errors"
	"net"

	"github.com/KMK-ONLINE/valid-email/types"
)

// System adapts a net.Resolver to types.Resolver. The standard resolver
// manages its own connections, so sessions have nothing to release.
type System struct {
	Resolver *net.Resolver
}

// NewSystem returns a System using net.DefaultResolver.
func NewSystem() *System {
	return &System{Resolver: net.DefaultResolver}
}

func (s *System) Open(context.Context) (types.Session, error) {
	return systemSession{r: s.Resolver}, nil
}

type systemSession struct {
	r *net.Resolver
}

func (s systemSession) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	records, err := s.r.LookupMX(ctx, domain)
	if isNotFound(err) {
		return nil, nil
	}
	return records, err
}

func (s systemSession) LookupA(ctx context.Context, domain string) ([]net.IP, error) {
	ips, err := s.r.LookupIP(ctx, "ip4", domain)
	if isNotFound(err) {
		return nil, nil
	}
	return ips, err
}

func (systemSession) Close() error {
	return nil
}

func isNotFound(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}
