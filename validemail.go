// Package validemail validates email addresses: local-part grammar, domain
// structure, optional MX lookup, a host name allow-list and a denylist of
// disposable-mailbox domains.
//
// Basic usage:
//
//	ok, err := validemail.New().Valid(ctx, "user@example.com", validemail.Options{})
//
// With MX verification and disposable domains banned:
//
//	result, err := validemail.New().
//	    WithConfig(cfg).
//	    WithLogger(log).
//	    Validate(ctx, "user@example.com", validemail.Options{MX: true, BanDisposable: true})
package validemail

import (
	"github.com/KMK-ONLINE/valid-email/check"
	"github.com/KMK-ONLINE/valid-email/types"
)

// CheckResult is a re-export from the types package so that consumers
// don't need to import the types package directly.
type CheckResult = types.CheckResult

// CheckLevel is a re-export.
type CheckLevel = types.CheckLevel

// Level constants re-exported.
const (
	LevelSyntax     = types.LevelSyntax
	LevelMX         = types.LevelMX
	LevelDomain     = types.LevelDomain
	LevelDisposable = types.LevelDisposable
)

// Resolver and Session are re-exported for callers supplying their own DNS
// implementation through WithResolver.
type (
	Resolver = types.Resolver
	Session  = types.Session
)

// ValidLocal reports whether local is an acceptable local part: at most 64
// characters and made only of valid dot-atoms.
func ValidLocal(local string) bool {
	return check.ValidLocal(local)
}

// ValidDotAtom reports whether a single '.'-separated piece of a local part
// is acceptable.
func ValidDotAtom(atom string) bool {
	return check.ValidDotAtom(atom)
}
