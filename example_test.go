package validemail_test

import (
	"context"
	"fmt"
	"net"
	"time"

	validemail "github.com/KMK-ONLINE/valid-email"
)

// staticResolver serves MX records from a map. Real callers rely on the
// default resolver or pass their own through WithResolver.
type staticResolver map[string][]*net.MX

func (r staticResolver) Open(context.Context) (validemail.Session, error) { return r, nil }

func (r staticResolver) LookupMX(_ context.Context, domain string) ([]*net.MX, error) {
	return r[domain], nil
}

func (r staticResolver) LookupA(context.Context, string) ([]net.IP, error) { return nil, nil }

func (r staticResolver) Close() error { return nil }

func ExampleNew() {
	v := validemail.New()
	ok, _ := v.Valid(context.Background(), "user@example.com", validemail.Options{})
	fmt.Println(ok)
	// Output: true
}

func ExampleValidator_Validate() {
	v := validemail.New()

	result, _ := v.Validate(context.Background(), "user@example.com", validemail.Options{})
	fmt.Println(result.Valid, result.Checks[0].Details)

	result, _ = v.Validate(context.Background(), "user.@example.com", validemail.Options{})
	fmt.Println(result.Valid, result.Checks[0].Details)
	// Output:
	// true syntax ok
	// false invalid local part
}

func ExampleValidator_Validate_quoted() {
	v := validemail.New()
	ctx := context.Background()

	for _, email := range []string{`"te@st"@example.com`, `"te st"@example.com`, `"te\ st"@example.com`} {
		ok, _ := v.Valid(ctx, email, validemail.Options{})
		fmt.Println(email, ok)
	}
	// Output:
	// "te@st"@example.com true
	// "te st"@example.com false
	// "te\ st"@example.com true
}

func ExampleValidator_Validate_mx() {
	v := validemail.New().WithResolver(staticResolver{
		"example.com": {{Host: "mail.example.com.", Pref: 10}},
	})

	result, _ := v.Validate(context.Background(), "user@example.com", validemail.Options{MX: true})
	mx, _ := result.CheckFor(validemail.LevelMX)
	fmt.Println(result.Valid, mx.MXHost)

	result, _ = v.Validate(context.Background(), "user@example.org", validemail.Options{MX: true})
	for _, c := range result.FailedChecks() {
		fmt.Printf("[%s] %s\n", c.Level, c.Details)
	}
	// Output:
	// true mail.example.com
	// [mx] no MX records found
}

func ExampleValidator_DomainValid() {
	v := validemail.New()
	fmt.Println(v.DomainValid("john@example.org"))
	fmt.Println(v.DomainValid("john@-eouae.test"))
	fmt.Println(v.DomainValid("john@test..com"))
	// Output:
	// true
	// false
	// false
}

func ExampleValidator_MatchedDisposableDomain() {
	v := validemail.New()
	fmt.Println(v.MatchedDisposableDomain("another.mailinator.com"))
	fmt.Println(v.BanDisposableEmail("name@mailinator.com"))
	fmt.Println(v.BanDisposableEmail("name@"))
	// Output:
	// [mailinator.com]
	// false
	// false
}

func ExampleValidator_ValidateMany() {
	v := validemail.New()
	emails := []string{"alice@example.com", "invalid", "bob@example.com"}

	results, _ := v.ValidateMany(context.Background(), emails, validemail.Options{}, validemail.ConcurrencyOptions{
		Workers: 2,
	})

	for _, r := range results {
		fmt.Printf("%-20s valid=%v\n", r.Email, r.Valid)
	}
	// Output:
	// alice@example.com    valid=true
	// invalid              valid=false
	// bob@example.com      valid=true
}

func ExampleResult_FailedChecks() {
	v := validemail.New()
	result, _ := v.Validate(context.Background(), "missing-at-sign", validemail.Options{})

	for _, c := range result.FailedChecks() {
		fmt.Printf("[%s] %s\n", c.Level, c.Details)
	}
	// Output:
	// [syntax] missing domain
}

func ExampleConfig() {
	cfg := validemail.DefaultConfig()
	cfg.DNSTimeout = 500 * time.Millisecond
	cfg.DNSTimeoutReturnValue = true

	v := validemail.New().WithConfig(cfg)
	ok, err := v.Valid(context.Background(), "user@example.com", validemail.Options{Domain: true})
	fmt.Println(ok, err)
	// Output: true <nil>
}

func ExampleAddress_Valid() {
	ok, _ := validemail.Address("valid.user@gmail.com").Valid(context.Background())
	fmt.Println(ok)
	// Output: true
}
