// Package store define el contrato de persistencia de identidad.
//
// Una implementación conforme soporta la unión de los grupos de capacidades
// {CRUD básico, claims, login-binding, membresía de roles, enumeración,
// auth-tokens, two-factor, recovery codes}. El hashing de passwords y las
// cookies de sign-in viven en una capa de orquestación externa; el store solo
// lee y escribe estado.
//
// Política de fallos: cada operación mutadora abre su propia unidad de trabajo
// y commitea antes de retornar. NO hay atomicidad entre llamadas: "crear
// usuario Y agregar login Y copiar claims" es una secuencia, no una
// transacción (ver internal/signin para el manejo de completitud parcial).
// Toda operación acepta un context verificado a la entrada; un commit en vuelo
// no se revierte por cancelación.
package store

import (
	"context"

	"github.com/dropDatabas3/hellojane/internal/domain/identity"
)

// Store define operaciones de persistencia sobre usuarios y sus agregados
// (claims, logins, tokens, membresías, recovery codes).
//
// Lookups por nombre/email esperan entrada YA normalizada (identity.Normalize);
// el store no re-normaliza. Los errores expuestos pertenecen a la taxonomía de
// internal/domain/identity; nunca se filtran errores crudos del driver.
type Store interface {
	// ===== CRUD básico =====

	// CreateUser inserta un usuario nuevo; asigna ID y RegisterDate.
	// Violación de unicidad (normalized username) → error envuelto en
	// ErrPersistence con descripción apta para el caller, sin panic.
	CreateUser(ctx context.Context, u *identity.User) error

	// UpdateUser persiste el usuario. Regenera SIEMPRE el concurrency stamp
	// (aunque el caller ya lo haya cambiado) y compara el stamp leído
	// previamente al escribir. Mismatch → ErrConcurrency.
	UpdateUser(ctx context.Context, u *identity.User) error

	// DeleteUser elimina el usuario y sus filas hijas (cascade).
	// Mismo manejo de conflicto de concurrencia que UpdateUser.
	DeleteUser(ctx context.Context, u *identity.User) error

	// GetUserByID busca por ID. Retorna ErrNotFound si no existe.
	GetUserByID(ctx context.Context, id int64) (*identity.User, error)

	// GetUserByName busca por normalized username (match exacto).
	GetUserByName(ctx context.Context, normalizedUserName string) (*identity.User, error)

	// GetUserByEmail busca por normalized email (match exacto). El índice no
	// es único: si hay varias cuentas con el mismo email retorna la primera
	// por ID.
	GetUserByEmail(ctx context.Context, normalizedEmail string) (*identity.User, error)

	// ListUsers enumera todos los usuarios (superficie queryable).
	ListUsers(ctx context.Context) ([]identity.User, error)

	// ===== Claims =====

	// GetClaims retorna los claims del usuario.
	GetClaims(ctx context.Context, userID int64) ([]identity.Claim, error)

	// AddClaims agrega claims al usuario. NO deduplica: claims repetidos
	// (mismo type+value) se permiten por contrato.
	AddClaims(ctx context.Context, userID int64, claims []identity.Claim) error

	// ReplaceClaim reescribe todos los claims que matchean (type, value) de
	// oldClaim con el (type, value) de newClaim.
	ReplaceClaim(ctx context.Context, userID int64, oldClaim, newClaim identity.Claim) error

	// RemoveClaims elimina todos los claims que matchean (type, value).
	RemoveClaims(ctx context.Context, userID int64, claims []identity.Claim) error

	// GetUsersForClaim enumera los usuarios que poseen el claim dado.
	GetUsersForClaim(ctx context.Context, claim identity.Claim) ([]identity.User, error)

	// ===== Logins externos =====

	// AddLogin vincula un login externo al usuario. Si el par (provider, key)
	// ya está vinculado a OTRO usuario retorna ErrDuplicateLogin sin mutar.
	AddLogin(ctx context.Context, userID int64, login identity.UserLogin) error

	// RemoveLogin elimina el login solo si pertenece al usuario dado.
	RemoveLogin(ctx context.Context, userID int64, provider, providerKey string) error

	// GetLogins enumera los logins del usuario.
	GetLogins(ctx context.Context, userID int64) ([]identity.UserLogin, error)

	// GetUserByLogin busca el usuario dueño del par (provider, key).
	// Miss → ErrNotFound (soft, no es un fallo).
	GetUserByLogin(ctx context.Context, provider, providerKey string) (*identity.User, error)

	// ===== Membresía de roles =====

	// AddToRole agrega el usuario al rol identificado por normalized name.
	// El rol debe existir: referencia inexistente → ErrRoleNotFound.
	AddToRole(ctx context.Context, userID int64, normalizedRoleName string) error

	// RemoveFromRole quita al usuario del rol. No-op si no era miembro.
	RemoveFromRole(ctx context.Context, userID int64, normalizedRoleName string) error

	// GetRoleNames retorna los nombres de rol del usuario.
	GetRoleNames(ctx context.Context, userID int64) ([]string, error)

	// IsInRole indica si el usuario pertenece al rol.
	IsInRole(ctx context.Context, userID int64, normalizedRoleName string) (bool, error)

	// GetUsersInRole enumera los miembros del rol.
	GetUsersInRole(ctx context.Context, normalizedRoleName string) ([]identity.User, error)

	// ===== Auth tokens =====

	// SetToken tiene semántica upsert: crea si no existe, sobreescribe si sí.
	SetToken(ctx context.Context, userID int64, provider, name, value string) error

	// GetToken retorna (valor, true) o ("", false) si está ausente.
	// Ausencia NO es un error.
	GetToken(ctx context.Context, userID int64, provider, name string) (string, bool, error)

	// RemoveToken elimina el token; no-op si no existe.
	RemoveToken(ctx context.Context, userID int64, provider, name string) error

	// ===== Recovery codes (2FA) =====
	// Los códigos se guardan como UN token: la lista restante unida por ";"
	// bajo (InternalLoginProvider, RecoveryCodesTokenName).

	// ReplaceRecoveryCodes sobreescribe el set completo, invalidando todos
	// los códigos anteriores.
	ReplaceRecoveryCodes(ctx context.Context, userID int64, codes []string) error

	// RedeemRecoveryCode verifica membresía y, si el código está, reescribe
	// atómicamente el resto excluyéndolo y retorna true. Si no está, retorna
	// false sin mutación. Los códigos son de un solo uso.
	RedeemRecoveryCode(ctx context.Context, userID int64, code string) (bool, error)

	// CountRecoveryCodes es la cardinalidad del set guardado (0 si no hay token).
	CountRecoveryCodes(ctx context.Context, userID int64) (int, error)
}

// RoleStore define operaciones de persistencia sobre roles y sus claims.
type RoleStore interface {
	// CreateRole inserta un rol nuevo; asigna ID.
	// Violación de unicidad (normalized name) → ErrPersistence.
	CreateRole(ctx context.Context, r *identity.Role) error

	// UpdateRole persiste el rol con el mismo esquema de concurrencia
	// optimista que Store.UpdateUser.
	UpdateRole(ctx context.Context, r *identity.Role) error

	// DeleteRole elimina el rol y sus filas hijas (role_claims, user_roles).
	DeleteRole(ctx context.Context, r *identity.Role) error

	// GetRoleByID busca por ID. Retorna ErrNotFound si no existe.
	GetRoleByID(ctx context.Context, id int64) (*identity.Role, error)

	// GetRoleByName busca por normalized name (match exacto).
	GetRoleByName(ctx context.Context, normalizedName string) (*identity.Role, error)

	// ListRoles enumera todos los roles.
	ListRoles(ctx context.Context) ([]identity.Role, error)

	// GetRoleClaims retorna los claims del rol.
	GetRoleClaims(ctx context.Context, roleID int64) ([]identity.Claim, error)

	// AddRoleClaim agrega un claim al rol (sin dedup).
	AddRoleClaim(ctx context.Context, roleID int64, claim identity.Claim) error

	// RemoveRoleClaim elimina todos los claims del rol que matchean (type, value).
	RemoveRoleClaim(ctx context.Context, roleID int64, claim identity.Claim) error
}
