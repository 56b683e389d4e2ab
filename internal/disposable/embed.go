package disposable

import (
	_ "embed"
	"strings"
	"sync"
)

//go:embed list.txt
var rawList string

// Default returns the registry built from the embedded domain list.
// It is parsed on first use and shared afterwards.
var Default = sync.OnceValue(func() *Registry {
	r, err := Load(strings.NewReader(rawList))
	if err != nil {
		// strings.Reader never fails.
		panic(err)
	}
	return r
})
