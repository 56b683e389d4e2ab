package check

import (
	"context"

	"github.com/KMK-ONLINE/valid-email/internal/parse"
	"github.com/KMK-ONLINE/valid-email/types"
)

// SyntaxChecker validates the structure of an already parsed address:
// RFC 5322 dot-atom/quoted-string rules for the local part and the
// lenient component rules for the domain.
type SyntaxChecker struct{}

func NewSyntaxChecker() *SyntaxChecker {
	return &SyntaxChecker{}
}

func (c *SyntaxChecker) Check(_ context.Context, email parse.Email) (types.CheckResult, error) {
	level := types.LevelSyntax

	if !email.HasDomain() {
		return types.CheckResult{Level: level, Passed: false, Details: "missing domain"}, nil
	}

	// The parser accepts display names and angle brackets; only a bare
	// address that reassembles to the exact input is acceptable here.
	if email.Address() != email.Raw {
		return types.CheckResult{Level: level, Passed: false, Details: "input is not a bare address"}, nil
	}

	if !ValidDomainComponents(email.Domain) {
		return types.CheckResult{Level: level, Passed: false, Details: "domain must have at least two non-empty labels"}, nil
	}

	if !ValidLocal(email.Local) {
		return types.CheckResult{Level: level, Passed: false, Details: "invalid local part"}, nil
	}

	return types.CheckResult{Level: level, Passed: true, Details: "syntax ok"}, nil
}
