package check

import (
	"context"
	"strings"

	"github.com/KMK-ONLINE/valid-email/internal/disposable"
	"github.com/KMK-ONLINE/valid-email/internal/parse"
	"github.com/KMK-ONLINE/valid-email/types"
)

// DisposableChecker fails addresses whose domain falls under a known
// disposable-mailbox suffix.
type DisposableChecker struct {
	registry *disposable.Registry
}

func NewDisposableChecker(registry *disposable.Registry) *DisposableChecker {
	return &DisposableChecker{registry: registry}
}

func (c *DisposableChecker) Check(_ context.Context, email parse.Email) (types.CheckResult, error) {
	level := types.LevelDisposable

	if !email.HasDomain() {
		return types.CheckResult{Level: level, Passed: false, Details: "skipped: no domain"}, nil
	}

	if matched := c.registry.Match(email.Domain); len(matched) > 0 {
		return types.CheckResult{
			Level:   level,
			Passed:  false,
			Details: "disposable email domain detected: " + strings.Join(matched, ", "),
			Matched: matched,
		}, nil
	}
	return types.CheckResult{Level: level, Passed: true, Details: "domain ok"}, nil
}
