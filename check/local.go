package check

import (
	"strings"
	"unicode/utf8"
)

// LocalMaxLen is the maximum length of a local part in characters.
const LocalMaxLen = 64

const (
	// specialChars are never allowed in an unquoted dot-atom.
	specialChars = "(),:;<>@[]"
	// specialEscapedChars must be escaped with a backslash inside a quoted
	// dot-atom and are never allowed in an unquoted one.
	specialEscapedChars = " \\\""
)

// ValidLocal reports whether local is an acceptable email local part.
//
// The local part is split on every '.' into dot-atoms (RFC 5322 section
// 3.2.3); leading, trailing and doubled dots produce empty atoms and make
// the local part invalid.
func ValidLocal(local string) bool {
	if utf8.RuneCountInString(local) > LocalMaxLen {
		return false
	}
	for _, atom := range strings.Split(local, ".") {
		if !ValidDotAtom(atom) {
			return false
		}
	}
	return true
}

// ValidDotAtom reports whether a single dot-atom is acceptable.
//
// A quoted atom is bounded by '"' on both ends. Inside the quotes any
// character is allowed, except that space, backslash and '"' must be
// escaped by a preceding backslash, and a backslash may only escape one of
// those three. An unquoted atom must not contain any special character.
// A lone '"' is rejected: the opening and closing quote must be two
// distinct characters.
func ValidDotAtom(atom string) bool {
	if atom == "" {
		return false
	}

	first, last := atom[0] == '"', atom[len(atom)-1] == '"'
	if !first && !last {
		return !strings.ContainsAny(atom, specialChars+specialEscapedChars)
	}
	if !first || !last || len(atom) < 2 {
		return false
	}

	escaped := false
	for _, r := range atom[1 : len(atom)-1] {
		special := strings.ContainsRune(specialEscapedChars, r)
		switch {
		case escaped:
			if !special {
				return false
			}
			escaped = false
		case r == '\\':
			escaped = true
		case special:
			return false
		}
	}
	return !escaped
}
