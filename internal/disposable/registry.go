// Package disposable matches email domains against a list of known
// disposable-mailbox domain suffixes.
package disposable

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/idna"
)

// Registry is an ordered, read-only set of domain suffixes. A Registry is
// safe for concurrent use.
type Registry struct {
	suffixes []string
}

// New builds a registry from suffixes, dropping blanks and duplicates while
// keeping the first occurrence order.
func New(suffixes []string) *Registry {
	seen := make(map[string]struct{}, len(suffixes))
	r := &Registry{suffixes: make([]string, 0, len(suffixes))}
	for _, s := range suffixes {
		s = Normalize(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		r.suffixes = append(r.suffixes, s)
	}
	return r
}

// Load reads one suffix per line. Blank lines and lines starting with '#'
// are ignored.
func Load(rd io.Reader) (*Registry, error) {
	var suffixes []string
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		suffixes = append(suffixes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read disposable domains: %w", err)
	}
	return New(suffixes), nil
}

// LoadFile reads a registry from a file in the format accepted by Load.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open disposable domains: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Match returns every suffix that equals domain or is a dot-separated
// suffix of it, in registry order. "another.mailinator.com" matches
// "mailinator.com"; "playground-tk.com" does not match "tk".
func (r *Registry) Match(domain string) []string {
	d := Normalize(domain)
	if d == "" {
		return nil
	}
	var matched []string
	for _, s := range r.suffixes {
		if d == s || strings.HasSuffix(d, "."+s) {
			matched = append(matched, s)
		}
	}
	return matched
}

// Len returns the number of suffixes in the registry.
func (r *Registry) Len() int {
	return len(r.suffixes)
}

// Normalize lowercases a domain and converts internationalized labels to
// their ASCII (Punycode) form, which is how list entries are written.
// Domains that fail IDNA conversion are only lowercased.
func Normalize(domain string) string {
	domain = strings.ToLower(strings.TrimSuffix(domain, "."))
	for i := 0; i < len(domain); i++ {
		if domain[i] >= 0x80 {
			if ascii, err := idna.Lookup.ToASCII(domain); err == nil {
				return ascii
			}
			break
		}
	}
	return domain
}
