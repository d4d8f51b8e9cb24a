package pg

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"testing"
	"time"

	"github.com/dropDatabas3/hellojane/internal/domain/identity"
)

// Los tests de integración corren solo con una DB migrada a mano:
//
//	HELLOJANE_TEST_DSN=postgres://... go test ./internal/store/pg/
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("HELLOJANE_TEST_DSN")
	if dsn == "" {
		t.Skip("HELLOJANE_TEST_DSN not set; skipping integration tests")
	}
	s, err := New(context.Background(), dsn, Config{MaxConns: 4})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func seedUser(t *testing.T, s *Store) *identity.User {
	t.Helper()
	name := fmt.Sprintf("u%d%d", time.Now().UnixMilli()%1_000_000_000, rand.Intn(1000))
	u := &identity.User{
		UserName:           name,
		NormalizedUserName: identity.Normalize(name),
		Email:              name + "@test.local",
		NormalizedEmail:    identity.Normalize(name + "@test.local"),
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		if cur, err := s.GetUserByID(context.Background(), u.ID); err == nil {
			_ = s.DeleteUser(context.Background(), cur)
		}
	})
	return u
}

func TestCreateUserAssignsIDAndStamps(t *testing.T) {
	s := testStore(t)
	u := seedUser(t, s)

	if u.ID == 0 {
		t.Fatal("expected assigned ID")
	}
	if len(u.ConcurrencyStamp) != 36 || len(u.SecurityStamp) != 36 {
		t.Fatalf("stamps must be 36 chars, got %d/%d", len(u.ConcurrencyStamp), len(u.SecurityStamp))
	}
	if u.RegisterDate.IsZero() {
		t.Fatal("expected register date from the DB")
	}
}

func TestUpdateUserAlwaysRegeneratesStamp(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	before := u.ConcurrencyStamp
	// no field change at all: the stamp still rotates
	if err := s.UpdateUser(ctx, u); err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.ConcurrencyStamp == before {
		t.Fatal("stamp must be replaced on every update")
	}

	stored, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ConcurrencyStamp != u.ConcurrencyStamp {
		t.Fatal("persisted stamp must match the one reported to the caller")
	}
}

func TestUpdateUserStaleStampConflicts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	stale := *u
	if err := s.UpdateUser(ctx, u); err != nil {
		t.Fatalf("first update: %v", err)
	}

	err := s.UpdateUser(ctx, &stale)
	if !errors.Is(err, identity.ErrConcurrency) {
		t.Fatalf("err = %v, want ErrConcurrency", err)
	}
}

func TestDeleteMissingUserIsNotFound(t *testing.T) {
	s := testStore(t)
	u := &identity.User{ID: -1, ConcurrencyStamp: identity.NewStamp()}
	if err := s.DeleteUser(context.Background(), u); !errors.Is(err, identity.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAddLoginDuplicatePair(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := seedUser(t, s)
	other := seedUser(t, s)

	login := identity.UserLogin{
		LoginProvider: "Google",
		ProviderKey:   fmt.Sprintf("it-%d", owner.ID),
	}
	if err := s.AddLogin(ctx, owner.ID, login); err != nil {
		t.Fatalf("first bind: %v", err)
	}
	// same pair, same user: no-op
	if err := s.AddLogin(ctx, owner.ID, login); err != nil {
		t.Fatalf("rebind same user: %v", err)
	}
	// same pair, different user: rejected, binding untouched
	if err := s.AddLogin(ctx, other.ID, login); !errors.Is(err, identity.ErrDuplicateLogin) {
		t.Fatalf("err = %v, want ErrDuplicateLogin", err)
	}
	bound, err := s.GetUserByLogin(ctx, login.LoginProvider, login.ProviderKey)
	if err != nil {
		t.Fatalf("get by login: %v", err)
	}
	if bound.ID != owner.ID {
		t.Fatalf("binding moved to user %d, want %d", bound.ID, owner.ID)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	if err := s.SetToken(ctx, u.ID, "Google", "refresh", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetToken(ctx, u.ID, "Google", "refresh", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := s.GetToken(ctx, u.ID, "Google", "refresh")
	if err != nil || !ok || v != "v2" {
		t.Fatalf("get = (%q,%v,%v), want (v2,true,nil)", v, ok, err)
	}
	if err := s.RemoveToken(ctx, u.ID, "Google", "refresh"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.GetToken(ctx, u.ID, "Google", "refresh"); ok {
		t.Fatal("token should be absent after removal")
	}
	// removing again is a no-op
	if err := s.RemoveToken(ctx, u.ID, "Google", "refresh"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestRecoveryCodeLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	codes := []string{"c1", "c2", "c3", "c4", "c5"}
	if err := s.ReplaceRecoveryCodes(ctx, u.ID, codes); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if n, _ := s.CountRecoveryCodes(ctx, u.ID); n != 5 {
		t.Fatalf("count = %d, want 5", n)
	}

	ok, err := s.RedeemRecoveryCode(ctx, u.ID, "c3")
	if err != nil || !ok {
		t.Fatalf("redeem = (%v,%v), want (true,nil)", ok, err)
	}
	if ok, _ := s.RedeemRecoveryCode(ctx, u.ID, "c3"); ok {
		t.Fatal("a code is single-use")
	}
	if n, _ := s.CountRecoveryCodes(ctx, u.ID); n != 4 {
		t.Fatalf("count after redemption = %d, want 4", n)
	}

	// replacing invalidates everything that was left
	if err := s.ReplaceRecoveryCodes(ctx, u.ID, []string{"n1"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if ok, _ := s.RedeemRecoveryCode(ctx, u.ID, "c1"); ok {
		t.Fatal("old codes must be invalidated by replace")
	}
	if n, _ := s.CountRecoveryCodes(ctx, u.ID); n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestClaimsPermitDuplicates(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	c := identity.NewClaim("urn:test:color", "green")
	if err := s.AddClaims(ctx, u.ID, []identity.Claim{c, c}); err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := s.GetClaims(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("claims = %d, want 2 (no dedup)", len(got))
	}

	// RemoveClaims borra TODAS las ocurrencias del (type, value)
	if err := s.RemoveClaims(ctx, u.ID, []identity.Claim{c}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got, _ := s.GetClaims(ctx, u.ID); len(got) != 0 {
		t.Fatalf("claims = %d, want 0", len(got))
	}
}

func TestRoleMembership(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	name := fmt.Sprintf("r%d", u.ID)
	role := &identity.Role{Name: name, NormalizedName: identity.Normalize(name)}
	if err := s.CreateRole(ctx, role); err != nil {
		t.Fatalf("create role: %v", err)
	}
	t.Cleanup(func() {
		if cur, err := s.GetRoleByID(ctx, role.ID); err == nil {
			_ = s.DeleteRole(ctx, cur)
		}
	})

	if err := s.AddToRole(ctx, u.ID, role.NormalizedName); err != nil {
		t.Fatalf("add to role: %v", err)
	}
	if in, _ := s.IsInRole(ctx, u.ID, role.NormalizedName); !in {
		t.Fatal("user should be in role")
	}
	names, err := s.GetRoleNames(ctx, u.ID)
	if err != nil || len(names) != 1 || names[0] != name {
		t.Fatalf("role names = %v (%v)", names, err)
	}

	if err := s.AddToRole(ctx, u.ID, "NO-SUCH-ROLE"); !errors.Is(err, identity.ErrRoleNotFound) {
		t.Fatalf("err = %v, want ErrRoleNotFound", err)
	}

	if err := s.RemoveFromRole(ctx, u.ID, role.NormalizedName); err != nil {
		t.Fatalf("remove from role: %v", err)
	}
	if in, _ := s.IsInRole(ctx, u.ID, role.NormalizedName); in {
		t.Fatal("user should be out of the role")
	}
}
