package check_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KMK-ONLINE/valid-email/check"
	"github.com/KMK-ONLINE/valid-email/internal/parse"
	"github.com/KMK-ONLINE/valid-email/types"
)

// mockResolver hands out sessions answering with fixed records.
type mockResolver struct {
	records []*net.MX
	ips     []net.IP
	mxErr   error
	aErr    error
	openErr error
	block   bool // block lookups until the context ends

	opened, closed, aLookups int
}

func (m *mockResolver) Open(context.Context) (types.Session, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.opened++
	return m, nil
}

func (m *mockResolver) LookupMX(ctx context.Context, _ string) ([]*net.MX, error) {
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.records, m.mxErr
}

func (m *mockResolver) LookupA(context.Context, string) ([]net.IP, error) {
	m.aLookups++
	return m.ips, m.aErr
}

func (m *mockResolver) Close() error {
	m.closed++
	return nil
}

func newMXChecker(r types.Resolver, fallback bool) *check.MXChecker {
	return check.NewMXChecker(check.MXConfig{Timeout: 2 * time.Second, FallbackToA: fallback}, r, zerolog.Nop())
}

func TestMXChecker_WithMockResolver(t *testing.T) {
	tests := []struct {
		name     string
		records  []*net.MX
		ips      []net.IP
		fallback bool
		wantOK   bool
		details  string
	}{
		{
			name:    "has MX records",
			records: []*net.MX{{Host: "mx.example.com.", Pref: 10}},
			wantOK:  true,
			details: "1 MX record(s) found",
		},
		{
			name:    "no MX records",
			records: []*net.MX{},
			wantOK:  false,
			details: "no MX records found",
		},
		{
			name:    "null MX",
			records: []*net.MX{{Host: ".", Pref: 0}},
			wantOK:  false,
			details: "domain does not accept mail (null MX)",
		},
		{
			name:    "A records ignored without fallback",
			ips:     []net.IP{net.IPv4(192, 0, 2, 1)},
			wantOK:  false,
			details: "no MX records found",
		},
		{
			name:     "A record fallback",
			ips:      []net.IP{net.IPv4(192, 0, 2, 1)},
			fallback: true,
			wantOK:   true,
			details:  "no MX record, but A record found (fallback)",
		},
		{
			name:     "fallback with nothing",
			fallback: true,
			wantOK:   false,
			details:  "no MX records found",
		},
		{
			name:     "fallback does not rescue null MX",
			records:  []*net.MX{{Host: ".", Pref: 0}},
			ips:      []net.IP{net.IPv4(192, 0, 2, 1)},
			fallback: true,
			wantOK:   false,
			details:  "domain does not accept mail (null MX)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &mockResolver{records: tt.records, ips: tt.ips}
			result, err := newMXChecker(r, tt.fallback).Check(context.Background(), mustParse(t, "test@example.com"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, result.Passed)
			assert.Equal(t, tt.details, result.Details)
			assert.Equal(t, types.LevelMX, result.Level)
			assert.Equal(t, 1, r.closed)
		})
	}
}

func TestMXChecker_MXHostTrimsDot(t *testing.T) {
	r := &mockResolver{records: []*net.MX{{Host: "mx.example.com.", Pref: 10}}}
	result, err := newMXChecker(r, false).Check(context.Background(), mustParse(t, "test@example.com"))
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, "mx.example.com", result.MXHost)
}

func TestMXChecker_SortsByPreference(t *testing.T) {
	r := &mockResolver{records: []*net.MX{
		{Host: "mx2.example.com.", Pref: 20},
		{Host: "mx1.example.com.", Pref: 10},
	}}
	result, err := newMXChecker(r, false).Check(context.Background(), mustParse(t, "test@example.com"))
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, "mx1.example.com", result.MXHost)
	assert.Equal(t, "2 MX record(s) found", result.Details)
}

func TestMXChecker_FallbackQueriesA(t *testing.T) {
	r := &mockResolver{records: []*net.MX{{Host: "mx.example.com.", Pref: 10}}}
	_, err := newMXChecker(r, true).Check(context.Background(), mustParse(t, "test@example.com"))
	require.NoError(t, err)
	assert.Equal(t, 1, r.aLookups)

	r = &mockResolver{records: []*net.MX{{Host: "mx.example.com.", Pref: 10}}}
	_, err = newMXChecker(r, false).Check(context.Background(), mustParse(t, "test@example.com"))
	require.NoError(t, err)
	assert.Zero(t, r.aLookups)
}

func TestMXChecker_NoDomain(t *testing.T) {
	r := &mockResolver{}
	result, err := newMXChecker(r, false).Check(context.Background(), parse.Email{Raw: "test", Local: "test"})
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Zero(t, r.opened)
}

func TestMXChecker_Timeout(t *testing.T) {
	for _, want := range []bool{false, true} {
		r := &mockResolver{block: true}
		c := check.NewMXChecker(check.MXConfig{
			Timeout:            20 * time.Millisecond,
			TimeoutReturnValue: want,
		}, r, zerolog.Nop())

		result, err := c.Check(context.Background(), mustParse(t, "test@example.com"))
		require.NoError(t, err)
		assert.Equal(t, want, result.Passed)
		assert.True(t, result.TimedOut)
		assert.Equal(t, 1, r.closed, "session closed after timeout")
	}
}

func TestMXChecker_Errors(t *testing.T) {
	servfail := errors.New("SERVFAIL")

	tests := []struct {
		name       string
		r          *mockResolver
		fallback   bool
		wantClosed int
	}{
		{"open", &mockResolver{openErr: servfail}, false, 0},
		{"mx", &mockResolver{mxErr: servfail}, false, 1},
		{"a", &mockResolver{aErr: servfail}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newMXChecker(tt.r, tt.fallback).Check(context.Background(), mustParse(t, "test@example.com"))
			assert.ErrorIs(t, err, servfail)
			assert.Equal(t, tt.wantClosed, tt.r.closed)
		})
	}
}

func TestMXChecker_NetTimeoutError(t *testing.T) {
	r := &mockResolver{mxErr: &net.DNSError{Err: "i/o timeout", IsTimeout: true}}
	result, err := newMXChecker(r, false).Check(context.Background(), mustParse(t, "test@example.com"))
	require.NoError(t, err)
	assert.True(t, result.TimedOut)
	assert.False(t, result.Passed)
}
