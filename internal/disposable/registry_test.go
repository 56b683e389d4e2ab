package disposable_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KMK-ONLINE/valid-email/internal/disposable"
)

func TestDefault_Match(t *testing.T) {
	r := disposable.Default()

	tests := []struct {
		domain string
		want   []string
	}{
		{"mailinator.com", []string{"mailinator.com"}},
		{"another.mailinator.com", []string{"mailinator.com"}},
		{"MAILINATOR.COM", []string{"mailinator.com"}},
		{"effing-spammer-that-is-not-in-the-dictionary.tk", []string{"tk"}},
		{"playground-tk-sd-smp-sma-kuliah.com", nil},
		{"domain-does-not-exists-in-dictionary.com", nil},
		{"notmailinator.com", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Match(tt.domain))
		})
	}
}

func TestDefault_Loaded(t *testing.T) {
	assert.Greater(t, disposable.Default().Len(), 50)
	assert.Same(t, disposable.Default(), disposable.Default())
}

func TestRegistry_MatchKeepsOrder(t *testing.T) {
	r := disposable.New([]string{"example.tk", "tk", "mail.example.tk"})
	assert.Equal(t, []string{"example.tk", "tk", "mail.example.tk"}, r.Match("a.mail.example.tk"))
}

func TestNew_DropsBlanksAndDuplicates(t *testing.T) {
	r := disposable.New([]string{"tk", " ", "TK", "spam.org", "tk"})
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"spam.org"}, r.Match("x.spam.org"))
}

func TestLoad_SkipsComments(t *testing.T) {
	r, err := disposable.Load(strings.NewReader("# header\n\nspam.org\n  trash.net  \n#tk\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.Empty(t, r.Match("foo.tk"))
	assert.Equal(t, []string{"trash.net"}, r.Match("trash.net"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.txt")
	require.NoError(t, os.WriteFile(path, []byte("throwaway.io\n"), 0o600))

	r, err := disposable.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"throwaway.io"}, r.Match("box.throwaway.io"))

	_, err = disposable.LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "open disposable domains")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "example.com", disposable.Normalize("Example.COM."))
	assert.Equal(t, "xn--mnchen-3ya.de", disposable.Normalize("münchen.de"))
	assert.Equal(t, "xn--mnchen-3ya.de", disposable.Normalize("MÜNCHEN.de"))
}
