// Package types contains the shared types for validemail.
// This package does not import anything from other validemail packages
// to avoid circular imports.
package types

import (
	"context"
	"net"
)

// CheckLevel identifies the validation level.
type CheckLevel = string

const (
	LevelSyntax     CheckLevel = "syntax"
	LevelMX         CheckLevel = "mx"
	LevelDomain     CheckLevel = "domain"
	LevelDisposable CheckLevel = "disposable"
)

// CheckResult is the outcome of a single validation level.
type CheckResult struct {
	Level   CheckLevel `json:"level"`
	Passed  bool       `json:"passed"`
	Details string     `json:"details,omitempty"`
	MXHost  string     `json:"mxHost,omitempty"`
	// Matched lists the disposable suffixes that matched the domain.
	Matched []string `json:"matched,omitempty"`
	// TimedOut is set when an MX lookup hit its deadline and Passed
	// carries the configured timeout return value.
	TimedOut bool `json:"timedOut,omitempty"`
}

// Resolver opens DNS sessions. A session must be closed by the caller.
type Resolver interface {
	Open(ctx context.Context) (Session, error)
}

// Session performs lookups over one resolver connection.
//
// Both lookups return an empty slice and a nil error when the name does not
// exist or has no records of the requested type.
type Session interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
	LookupA(ctx context.Context, domain string) ([]net.IP, error)
	Close() error
}
