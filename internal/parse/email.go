// Package parse splits a candidate string into the parts of an RFC 5322
// address. It keeps the local part exactly as written (quotes and escapes
// included) so that callers can compare the reassembled address with the
// original input.
package parse

import (
	"fmt"
	"net/mail"
	"strings"
)

// Email is the internal representation of a parsed email address.
// The check/ packages receive this as parameter.
type Email struct {
	Raw    string // the original input
	Name   string // display name, only set for "Name <addr>" input
	Local  string // the part before @, as written
	Domain string // the part after @, as written; empty when absent
}

// HasDomain reports whether the input carried a non-empty domain.
func (e Email) HasDomain() bool {
	return e.Domain != ""
}

// Address reassembles the addr-spec. For bare addresses this is identical
// to Raw; any display name, angle brackets or rewriting makes it differ.
func (e Email) Address() string {
	if e.Domain == "" {
		return e.Local
	}
	return e.Local + "@" + e.Domain
}

// Error is returned for input that is not shaped like an address.
// It is the only error Parse returns.
type Error struct {
	Input  string
	Offset int // byte offset of the offending character, -1 if unknown
	Reason string
	Err    error // underlying net/mail error for name-addr input
}

func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("parse: invalid address %q: %s at offset %d", e.Input, e.Reason, e.Offset)
	}
	return fmt.Sprintf("parse: invalid address %q: %s", e.Input, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Parse splits raw into local part and domain.
//
// A bare addr-spec is scanned directly so that obsolete local parts mixing
// atoms and quoted strings ("a."b c".d") survive untouched. Input written
// as "Name <user@host>" falls back to net/mail; such input never
// reassembles to itself.
//
// Input without an @ parses successfully with an empty Domain, as does
// input ending in a bare @.
func Parse(raw string) (Email, error) {
	e, err := scanAddrSpec(raw)
	if err == nil {
		return e, nil
	}
	if strings.Contains(raw, "<") {
		if named, mErr := parseNameAddr(raw); mErr == nil {
			return named, nil
		}
	}
	return Email{Raw: raw}, err
}

func parseNameAddr(raw string) (Email, error) {
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return Email{}, &Error{Input: raw, Offset: -1, Reason: err.Error(), Err: err}
	}
	// mail.ParseAddress guarantees an "@domain" part is present.
	i := strings.LastIndexByte(addr.Address, '@')
	return Email{
		Raw:    raw,
		Name:   addr.Name,
		Local:  quoteLocal(addr.Address[:i]),
		Domain: addr.Address[i+1:],
	}, nil
}

func scanAddrSpec(raw string) (Email, error) {
	e := Email{Raw: raw}
	if raw == "" {
		return e, &Error{Input: raw, Offset: -1, Reason: "empty input"}
	}

	at, err := scanLocal(raw)
	if err != nil {
		return e, err
	}
	if at == 0 {
		return e, &Error{Input: raw, Offset: 0, Reason: "missing local part"}
	}
	e.Local = raw[:at]
	if at == len(raw) {
		return e, nil
	}

	if err := scanDomain(raw, at+1); err != nil {
		return e, err
	}
	e.Domain = raw[at+1:]
	return e, nil
}

// scanLocal returns the offset of the @ ending the local part, or len(s)
// when there is none.
func scanLocal(s string) (int, error) {
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '@':
			return i, nil
		case c == '"':
			end, err := scanQuoted(s, i)
			if err != nil {
				return 0, err
			}
			i = end
		case c == '.' || isAtext(c):
			i++
		default:
			return 0, &Error{Input: s, Offset: i, Reason: fmt.Sprintf("unexpected %q in local part", c)}
		}
	}
	return len(s), nil
}

// scanQuoted returns the offset just past the quoted string opening at
// start.
func scanQuoted(s string, start int) (int, error) {
	for i := start + 1; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\':
			if i+1 >= len(s) {
				return 0, &Error{Input: s, Offset: i, Reason: "dangling escape"}
			}
			i++
		case c == '"':
			return i + 1, nil
		case c < 0x20 && c != '\t', c == 0x7f:
			return 0, &Error{Input: s, Offset: i, Reason: "control character in quoted string"}
		}
	}
	return 0, &Error{Input: s, Offset: start, Reason: "unterminated quoted string"}
}

func scanDomain(s string, start int) error {
	if start < len(s) && s[start] == '[' {
		return scanDomainLiteral(s, start)
	}
	for i := start; i < len(s); i++ {
		if c := s[i]; c != '.' && !isAtext(c) {
			return &Error{Input: s, Offset: i, Reason: fmt.Sprintf("unexpected %q in domain", c)}
		}
	}
	return nil
}

func scanDomainLiteral(s string, start int) error {
	last := len(s) - 1
	if last == start || s[last] != ']' {
		return &Error{Input: s, Offset: start, Reason: "unterminated domain literal"}
	}
	for i := start + 1; i < last; i++ {
		c := s[i]
		if c < 33 || c > 126 || c == '[' || c == ']' || c == '\\' {
			return &Error{Input: s, Offset: i, Reason: fmt.Sprintf("unexpected %q in domain literal", c)}
		}
	}
	return nil
}

// isAtext reports whether c may appear in an atom. Bytes of multi-byte
// UTF-8 sequences are accepted (RFC 6532).
func isAtext(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c >= 0x80:
		return true
	}
	return strings.IndexByte("!#$%&'*+-/=?^_`{|}~", c) >= 0
}

// quoteLocal restores quoting for a local part that net/mail returned
// unquoted.
func quoteLocal(local string) string {
	needsQuote := local == "" || strings.HasPrefix(local, ".") ||
		strings.HasSuffix(local, ".") || strings.Contains(local, "..")
	for i := 0; i < len(local) && !needsQuote; i++ {
		if c := local[i]; c != '.' && !isAtext(c) {
			needsQuote = true
		}
	}
	if !needsQuote {
		return local
	}

	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(local); i++ {
		if c := local[i]; c == '"' || c == '\\' || c == ' ' {
			b.WriteByte('\\')
		}
		b.WriteByte(local[i])
	}
	b.WriteByte('"')
	return b.String()
}
