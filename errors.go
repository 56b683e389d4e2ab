package validemail

import "errors"

var (
	// ErrInvalidConfig is returned by Validate and friends when the
	// Validator was built with an unusable Config or resolver.
	ErrInvalidConfig = errors.New("validemail: invalid configuration")
)
