package identity

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"JaneDoe42":               "JANEDOE42",
		"  jane.doe@example.com ": "JANE.DOE@EXAMPLE.COM",
		"":                        "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewStampIs36Chars(t *testing.T) {
	a, b := NewStamp(), NewStamp()
	if len(a) != 36 || len(b) != 36 {
		t.Fatalf("stamp lengths = %d/%d, want 36", len(a), len(b))
	}
	if a == b {
		t.Fatal("stamps must be unique")
	}
}

func TestIsLockedOut(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	cases := []struct {
		name string
		u    User
		want bool
	}{
		{"disabled", User{LockoutEnabled: false, LockoutEnd: &future}, false},
		{"no end", User{LockoutEnabled: true}, false},
		{"active lockout", User{LockoutEnabled: true, LockoutEnd: &future}, true},
		{"expired lockout", User{LockoutEnabled: true, LockoutEnd: &past}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.u.IsLockedOut(now); got != tc.want {
				t.Fatalf("IsLockedOut = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFindFirstAndHasClaim(t *testing.T) {
	claims := []Claim{
		{Type: ClaimTypeGivenName, Value: "Jane"},
		{Type: ClaimTypeEmail, Value: "first@example.com"},
		{Type: ClaimTypeEmail, Value: "second@example.com"},
	}
	if got := FindFirst(claims, ClaimTypeEmail); got != "first@example.com" {
		t.Fatalf("FindFirst = %q", got)
	}
	if got := FindFirst(claims, ClaimTypeSurname); got != "" {
		t.Fatalf("FindFirst(absent) = %q, want empty", got)
	}
	if !HasClaim(claims, ClaimTypeGivenName) || HasClaim(claims, ClaimTypeRole) {
		t.Fatal("HasClaim misbehaves")
	}
}

func TestAuthenticatorKeySharesSecurityStamp(t *testing.T) {
	u := User{SecurityStamp: NewStamp()}
	u.SetAuthenticatorKey("JBSWY3DPEHPK3PXP")
	if u.AuthenticatorKey() != "JBSWY3DPEHPK3PXP" {
		t.Fatalf("AuthenticatorKey = %q", u.AuthenticatorKey())
	}
	if u.SecurityStamp != "JBSWY3DPEHPK3PXP" {
		t.Fatal("authenticator key must live in the security stamp field")
	}
}

func TestClaimMatchesIgnoresIssuer(t *testing.T) {
	a := Claim{Type: "t", Value: "v", Issuer: "one"}
	b := Claim{Type: "t", Value: "v", Issuer: "two"}
	if !a.Matches(b) {
		t.Fatal("identity of a claim is (type, value)")
	}
}
