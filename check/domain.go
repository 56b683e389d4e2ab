package check

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"

	"github.com/KMK-ONLINE/valid-email/internal/parse"
	"github.com/KMK-ONLINE/valid-email/types"
)

// domainRegexp accepts ASCII host names of two or more labels. A label is
// at most 63 characters, starts and ends with a letter or digit and may
// contain hyphens in between. Only the first label may be a single letter.
var domainRegexp = regexp.MustCompile(
	`^([a-zA-Z]|[a-zA-Z0-9][a-zA-Z0-9-]{0,61}[a-zA-Z0-9])(\.[a-zA-Z0-9][a-zA-Z0-9-]{0,61}[a-zA-Z0-9])+$`,
)

// ValidDomainComponents is the lenient domain gate applied by the syntax
// level: no whitespace, and at least two non-empty dot-separated
// components.
func ValidDomainComponents(domain string) bool {
	if strings.IndexFunc(domain, unicode.IsSpace) >= 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

// ValidDomainName reports whether domain is a well-formed internet host
// name. Unlike ValidDomainComponents it rejects underscores, non-ASCII
// letters, hyphens at label edges and labels over 63 characters.
func ValidDomainName(domain string) bool {
	return domainRegexp.MatchString(domain)
}

// DomainChecker applies the strict host name rules to the email domain.
// It never touches the network.
type DomainChecker struct{}

func NewDomainChecker() *DomainChecker {
	return &DomainChecker{}
}

func (c *DomainChecker) Check(_ context.Context, email parse.Email) (types.CheckResult, error) {
	level := types.LevelDomain

	if !email.HasDomain() {
		return types.CheckResult{Level: level, Passed: false, Details: "skipped: no domain"}, nil
	}

	if !ValidDomainName(email.Domain) {
		return types.CheckResult{Level: level, Passed: false, Details: "malformed domain name"}, nil
	}

	suffix, icann := publicsuffix.PublicSuffix(strings.ToLower(email.Domain))
	details := fmt.Sprintf("domain ok (public suffix %s)", suffix)
	if !icann {
		details = fmt.Sprintf("domain ok (suffix %s is not ICANN-managed)", suffix)
	}
	return types.CheckResult{Level: level, Passed: true, Details: details}, nil
}
