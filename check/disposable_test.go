package check_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KMK-ONLINE/valid-email/check"
	"github.com/KMK-ONLINE/valid-email/internal/disposable"
)

func TestDisposableChecker(t *testing.T) {
	c := check.NewDisposableChecker(disposable.New([]string{"mailinator.com", "tk"}))
	ctx := context.Background()

	tests := []struct {
		email   string
		wantOK  bool
		matched []string
	}{
		{"name@mailinator.com", false, []string{"mailinator.com"}},
		{"name@another.mailinator.com", false, []string{"mailinator.com"}},
		{"name@spammer.tk", false, []string{"tk"}},
		{"name@playground-tk-sd-smp-sma-kuliah.com", true, nil},
		{"name@gmail.com", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			res, err := c.Check(ctx, mustParse(t, tt.email))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, res.Passed, res.Details)
			assert.Equal(t, tt.matched, res.Matched)
		})
	}
}

func TestDisposableChecker_NoDomain(t *testing.T) {
	c := check.NewDisposableChecker(disposable.Default())
	res, err := c.Check(context.Background(), mustParse(t, "name@"))
	require.NoError(t, err)
	assert.False(t, res.Passed)
}
