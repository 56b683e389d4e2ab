package validemail

import (
	"context"
	"sync"
)

// Address is an email address string with validation helpers, for call
// sites that prefer
//
//	ok, err := validemail.Address(input).Valid(ctx)
//
// over building a Validator. It uses a shared Validator with
// DefaultConfig.
type Address string

var defaultValidator = sync.OnceValue(New)

// Valid validates a against opts, or syntax only when opts is omitted.
// The empty Address is never valid.
func (a Address) Valid(ctx context.Context, opts ...Options) (bool, error) {
	if a == "" {
		return false, nil
	}
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	return defaultValidator().Valid(ctx, string(a), o)
}
