// Package signin implementa la reconciliación de logins externos.
//
// El flujo arranca cuando el proveedor federado redirige de vuelta con un
// principal externo. Según el estado local del par (provider, key) la
// reconciliación termina en SignedIn, LockedOut, NeedsLocalAccount o Failed.
//
// El aprovisionamiento (crear usuario → vincular login → copiar claims) es
// secuencial y cada paso commitea por separado: un fallo intermedio deja un
// usuario parcialmente aprovisionado y el flujo NO lo revierte. Ver los
// tests de provisioning para el outcome observable.
package signin

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/dropDatabas3/hellojane/internal/domain/identity"
	"github.com/dropDatabas3/hellojane/internal/observability/logger"
	"github.com/dropDatabas3/hellojane/internal/store"
)

// Outcome es el estado terminal de una reconciliación.
type Outcome int

const (
	// OutcomeSignedIn: el par externo resolvió a un usuario local utilizable.
	OutcomeSignedIn Outcome = iota
	// OutcomeLockedOut: hay binding pero la cuenta está bloqueada.
	OutcomeLockedOut
	// OutcomeNeedsLocalAccount: no hay binding y no se pudo aprovisionar
	// automáticamente (falta el claim de email); el caller debe pedir email.
	OutcomeNeedsLocalAccount
	// OutcomeFailed: el aprovisionamiento falló; ver Result.FieldErrors.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSignedIn:
		return "signed_in"
	case OutcomeLockedOut:
		return "locked_out"
	case OutcomeNeedsLocalAccount:
		return "needs_local_account"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ExternalInfo es el principal que entrega el proveedor federado.
type ExternalInfo struct {
	Provider    string
	ProviderKey string
	DisplayName string
	Claims      []identity.Claim
}

// Result reporta el desenlace de la reconciliación.
type Result struct {
	Outcome     Outcome
	User        *identity.User
	FieldErrors []identity.FieldError
}

// SessionStarter emite la sesión autenticada. Lo provee el front end;
// queda fuera de este paquete qué significa "sesión".
type SessionStarter interface {
	SignIn(ctx context.Context, u *identity.User) error
}

// Flow orquesta la reconciliación contra el store.
type Flow struct {
	store    store.Store
	sessions SessionStarter
	randInt  func(n int) int
	now      func() time.Time
}

// Option configura un Flow.
type Option func(*Flow)

// WithRand inyecta la fuente de sufijos aleatorios (tests deterministas).
func WithRand(randInt func(n int) int) Option {
	return func(f *Flow) { f.randInt = randInt }
}

// WithClock inyecta el reloj usado para evaluar lockouts.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

// WithSessions inyecta el emisor de sesiones. Sin él, SignedIn solo
// reporta el principal y el caller emite la sesión por su cuenta.
func WithSessions(s SessionStarter) Option {
	return func(f *Flow) { f.sessions = s }
}

func NewFlow(st store.Store, opts ...Option) *Flow {
	f := &Flow{
		store:   st,
		randInt: rand.Intn,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Callback procesa el retorno del proveedor externo.
//
// Binding existente y cuenta sana → SignedIn. Cuenta bloqueada → LockedOut.
// Sin binding: si el principal trae claim de email se aprovisiona una cuenta
// local automáticamente; si no, NeedsLocalAccount y el caller sigue con
// Confirm una vez que el usuario suministre su email.
func (f *Flow) Callback(ctx context.Context, info ExternalInfo) (Result, error) {
	log := logger.From(ctx).With(logger.Component("signin"), logger.Provider(info.Provider))

	u, err := f.store.GetUserByLogin(ctx, info.Provider, info.ProviderKey)
	switch {
	case err == nil:
		if u.IsLockedOut(f.now()) {
			log.Warn("external sign-in for locked-out account", logger.UserID(u.ID))
			return Result{Outcome: OutcomeLockedOut, User: u}, nil
		}
		if err := f.startSession(ctx, u); err != nil {
			return Result{Outcome: OutcomeFailed}, err
		}
		log.Info("external sign-in", logger.UserID(u.ID), logger.UserName(u.UserName))
		return Result{Outcome: OutcomeSignedIn, User: u}, nil
	case errors.Is(err, identity.ErrNotFound):
		// sin binding, seguimos al aprovisionamiento
	default:
		return Result{Outcome: OutcomeFailed}, err
	}

	email := identity.FindFirst(info.Claims, identity.ClaimTypeEmail)
	if email == "" {
		log.Info("external principal without email claim")
		return Result{Outcome: OutcomeNeedsLocalAccount}, nil
	}

	u = &identity.User{
		Email:          email,
		EmailConfirmed: true, // la identidad federada ya respondió por el email
	}
	if v := identity.FindFirst(info.Claims, identity.ClaimTypeGivenName); v != "" {
		u.GivenName = &v
	}
	if v := identity.FindFirst(info.Claims, identity.ClaimTypeSurname); v != "" {
		u.FamilyName = &v
	}
	u.UserName = f.synthesizeUserName(u, email)

	return f.provision(ctx, u, info)
}

// Confirm crea la cuenta local con el email que tipeó el usuario.
// Mismo aprovisionamiento secuencial que Callback, misma falta de rollback.
func (f *Flow) Confirm(ctx context.Context, email string, info ExternalInfo) (Result, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return Result{
			Outcome:     OutcomeFailed,
			FieldErrors: []identity.FieldError{{Field: "Email", Description: "a valid email address is required"}},
		}, nil
	}
	u := &identity.User{UserName: email, Email: email}
	return f.provision(ctx, u, info)
}

// provision crea el usuario, vincula el login y copia los claims externos.
// Cada paso es su propia unit of work; un fallo corta sin deshacer lo previo.
func (f *Flow) provision(ctx context.Context, u *identity.User, info ExternalInfo) (Result, error) {
	log := logger.From(ctx).With(logger.Component("signin"), logger.Provider(info.Provider))

	u.NormalizedUserName = identity.Normalize(u.UserName)
	u.NormalizedEmail = identity.Normalize(u.Email)

	if err := f.store.CreateUser(ctx, u); err != nil {
		log.Warn("provisioning: create user failed", logger.EmailMasked(u.Email), logger.Err(err))
		return Result{Outcome: OutcomeFailed, FieldErrors: fieldErrors(err)}, nil
	}
	if err := f.store.AddLogin(ctx, u.ID, identity.UserLogin{
		LoginProvider:       info.Provider,
		ProviderKey:         info.ProviderKey,
		ProviderDisplayName: info.DisplayName,
		UserID:              u.ID,
	}); err != nil {
		log.Warn("provisioning: add login failed", logger.UserID(u.ID), logger.Err(err))
		return Result{Outcome: OutcomeFailed, User: u, FieldErrors: fieldErrors(err)}, nil
	}
	if len(info.Claims) > 0 {
		if err := f.store.AddClaims(ctx, u.ID, info.Claims); err != nil {
			log.Warn("provisioning: copy claims failed", logger.UserID(u.ID), logger.Err(err))
			return Result{Outcome: OutcomeFailed, User: u, FieldErrors: fieldErrors(err)}, nil
		}
	}
	if err := f.startSession(ctx, u); err != nil {
		return Result{Outcome: OutcomeFailed, User: u}, err
	}
	log.Info("account provisioned from external login",
		logger.UserID(u.ID), logger.UserName(u.UserName))
	return Result{Outcome: OutcomeSignedIn, User: u}, nil
}

func (f *Flow) startSession(ctx context.Context, u *identity.User) error {
	if f.sessions == nil {
		return nil
	}
	return f.sessions.SignIn(ctx, u)
}

// fieldErrors traduce un fallo de persistencia a errores presentables.
func fieldErrors(err error) []identity.FieldError {
	var fe identity.FieldError
	if errors.As(err, &fe) {
		return []identity.FieldError{fe}
	}
	switch {
	case errors.Is(err, identity.ErrDuplicateLogin):
		return []identity.FieldError{{Field: "Login", Description: "this external login is already linked to another account"}}
	default:
		return []identity.FieldError{{Field: "", Description: err.Error()}}
	}
}
