package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User representa un principal de identidad.
// El ID es un surrogate asignado por el store al crear (bigserial).
type User struct {
	ID                 int64
	UserName           string
	NormalizedUserName string
	Email              string
	NormalizedEmail    string

	// Perfil (todo opcional)
	GivenName   *string
	FamilyName  *string
	Address1    *string
	Address2    *string
	City        *string
	RegionCode  *string
	CountryCode *string
	PostalCode  *string
	DialingCode *string
	PhoneNumber *string
	Gender      *string
	BirthDate   *time.Time
	Newsletter  bool

	RegisterDate time.Time

	EmailConfirmed       bool
	PhoneNumberConfirmed bool
	TwoFactorEnabled     bool

	AccessFailedCount int
	LockoutEnabled    bool
	LockoutEnd        *time.Time

	// ConcurrencyStamp es un token opaco de 36 chars regenerado en cada update.
	// Se usa para detección de conflictos con concurrencia optimista.
	ConcurrencyStamp string

	// SecurityStamp guarda además la authenticator key (quirk heredado del esquema).
	SecurityStamp string

	// PasswordHash es nil para cuentas solo-externas (passwordless).
	PasswordHash *string
}

// IsLockedOut indica si el usuario está bloqueado en el instante dado.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockoutEnabled && u.LockoutEnd != nil && u.LockoutEnd.After(now)
}

// HasPassword indica si el usuario tiene password local.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// SetAuthenticatorKey guarda la clave TOTP del usuario. El campo de
// persistencia es SecurityStamp; ver el comentario en la declaración.
func (u *User) SetAuthenticatorKey(key string) { u.SecurityStamp = key }

// AuthenticatorKey retorna la clave TOTP del usuario.
func (u *User) AuthenticatorKey() string { return u.SecurityStamp }

// Role representa un grupo de permisos con nombre.
type Role struct {
	ID               int64
	Name             string
	NormalizedName   string
	ConcurrencyStamp string
}

// UserRole vincula un usuario con un rol (clave compuesta, sin identidad propia).
type UserRole struct {
	UserID int64
	RoleID int64
}

// Normalize canonicaliza un nombre o email para búsquedas y unicidad.
// El store NO re-normaliza: los callers deben normalizar antes de buscar.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NewStamp genera un stamp opaco de 36 caracteres (UUID v4).
func NewStamp() string {
	return uuid.NewString()
}
