package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/hellojane/internal/domain/identity"
	"github.com/dropDatabas3/hellojane/internal/metrics"
	"github.com/dropDatabas3/hellojane/internal/observability/logger"
)

const roleColumns = `id, name, normalized_name, concurrency_stamp`

func scanRole(row rowScanner) (*identity.Role, error) {
	var r identity.Role
	if err := row.Scan(&r.ID, &r.Name, &r.NormalizedName, &r.ConcurrencyStamp); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) CreateRole(ctx context.Context, r *identity.Role) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOp("create_role", start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}
	if r.ConcurrencyStamp == "" {
		r.ConcurrencyStamp = identity.NewStamp()
	}
	const q = `
INSERT INTO id.roles (name, normalized_name, concurrency_stamp)
VALUES ($1,$2,$3)
RETURNING id`
	err = s.pool.QueryRow(ctx, q, r.Name, r.NormalizedName, r.ConcurrencyStamp).Scan(&r.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return wrapPersistence("create role: name already taken", err)
		}
		return wrapPersistence("create role", err)
	}
	return nil
}

// UpdateRole aplica concurrencia optimista igual que UpdateUser: el stamp
// entrante debe coincidir con el persistido y se regenera en cada escritura.
func (s *Store) UpdateRole(ctx context.Context, r *identity.Role) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOp("update_role", start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}
	newStamp := identity.NewStamp()
	const q = `
UPDATE id.roles
SET name=$3, normalized_name=$4, concurrency_stamp=$5
WHERE id=$1 AND concurrency_stamp=$2`
	tag, err := s.pool.Exec(ctx, q, r.ID, r.ConcurrencyStamp, r.Name, r.NormalizedName, newStamp)
	if err != nil {
		return wrapPersistence("update role", err)
	}
	if tag.RowsAffected() == 0 {
		return s.classifyRoleWriteMiss(ctx, r.ID)
	}
	r.ConcurrencyStamp = newStamp
	return nil
}

func (s *Store) DeleteRole(ctx context.Context, r *identity.Role) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOp("delete_role", start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}
	const q = `DELETE FROM id.roles WHERE id=$1 AND concurrency_stamp=$2`
	tag, err := s.pool.Exec(ctx, q, r.ID, r.ConcurrencyStamp)
	if err != nil {
		return wrapPersistence("delete role", err)
	}
	if tag.RowsAffected() == 0 {
		return s.classifyRoleWriteMiss(ctx, r.ID)
	}
	return nil
}

func (s *Store) classifyRoleWriteMiss(ctx context.Context, id int64) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM id.roles WHERE id=$1)`, id).Scan(&exists); err != nil {
		return wrapPersistence("classify role write miss", err)
	}
	if exists {
		logger.From(ctx).Warn("role concurrency conflict", logger.Component("store.pg"),
			logger.Int("role_id", int(id)))
		return identity.ErrConcurrency
	}
	return identity.ErrNotFound
}

func (s *Store) GetRoleByID(ctx context.Context, id int64) (*identity.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `SELECT ` + roleColumns + ` FROM id.roles WHERE id=$1`
	r, err := scanRole(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrNotFound
		}
		return nil, wrapPersistence("get role by id", err)
	}
	return r, nil
}

// GetRoleByName busca por nombre normalizado.
func (s *Store) GetRoleByName(ctx context.Context, normalizedName string) (*identity.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `SELECT ` + roleColumns + ` FROM id.roles WHERE normalized_name=$1`
	r, err := scanRole(s.pool.QueryRow(ctx, q, normalizedName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrNotFound
		}
		return nil, wrapPersistence("get role by name", err)
	}
	return r, nil
}

func (s *Store) ListRoles(ctx context.Context) ([]identity.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `SELECT ` + roleColumns + ` FROM id.roles ORDER BY normalized_name`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, wrapPersistence("list roles", err)
	}
	defer rows.Close()

	var roles []identity.Role
	for rows.Next() {
		var r identity.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.NormalizedName, &r.ConcurrencyStamp); err != nil {
			return nil, wrapPersistence("scan role", err)
		}
		roles = append(roles, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPersistence("iterate roles", err)
	}
	return roles, nil
}

func (s *Store) GetRoleClaims(ctx context.Context, roleID int64) ([]identity.Claim, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `
SELECT claim_type, claim_value, claim_value_type, issuer, original_issuer
FROM id.role_claims WHERE role_id=$1 ORDER BY id`
	rows, err := s.pool.Query(ctx, q, roleID)
	if err != nil {
		return nil, wrapPersistence("get role claims", err)
	}
	defer rows.Close()
	return collectClaims(rows)
}

func (s *Store) AddRoleClaim(ctx context.Context, roleID int64, c identity.Claim) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	const q = `
INSERT INTO id.role_claims (role_id, claim_type, claim_value, claim_value_type, issuer, original_issuer)
VALUES ($1,$2,$3,$4,$5,$6)`
	if _, err := s.pool.Exec(ctx, q, roleID, c.Type, c.Value, c.ValueType, c.Issuer, c.OriginalIssuer); err != nil {
		return wrapPersistence("add role claim", err)
	}
	return nil
}

func (s *Store) RemoveRoleClaim(ctx context.Context, roleID int64, c identity.Claim) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	const q = `
DELETE FROM id.role_claims
WHERE role_id=$1 AND claim_type=$2 AND claim_value=$3`
	if _, err := s.pool.Exec(ctx, q, roleID, c.Type, c.Value); err != nil {
		return wrapPersistence("remove role claim", err)
	}
	return nil
}

// --- membresía usuario↔rol -------------------------------------------------

// AddToRole agrega al usuario al rol identificado por nombre normalizado.
// Rol inexistente → ErrRoleNotFound. Membresía repetida es un no-op.
func (s *Store) AddToRole(ctx context.Context, userID int64, normalizedRole string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOp("add_to_role", start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}
	role, err := s.GetRoleByName(ctx, normalizedRole)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return identity.ErrRoleNotFound
		}
		return err
	}
	const q = `
INSERT INTO id.user_roles (user_id, role_id)
VALUES ($1,$2)
ON CONFLICT (user_id, role_id) DO NOTHING`
	if _, err = s.pool.Exec(ctx, q, userID, role.ID); err != nil {
		return wrapPersistence("add to role", err)
	}
	return nil
}

// RemoveFromRole quita la membresía. Rol inexistente → ErrRoleNotFound;
// membresía inexistente es un no-op.
func (s *Store) RemoveFromRole(ctx context.Context, userID int64, normalizedRole string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	role, err := s.GetRoleByName(ctx, normalizedRole)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return identity.ErrRoleNotFound
		}
		return err
	}
	const q = `DELETE FROM id.user_roles WHERE user_id=$1 AND role_id=$2`
	if _, err := s.pool.Exec(ctx, q, userID, role.ID); err != nil {
		return wrapPersistence("remove from role", err)
	}
	return nil
}

func (s *Store) GetRoleNames(ctx context.Context, userID int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `
SELECT r.name
FROM id.roles r
JOIN id.user_roles ur ON ur.role_id = r.id
WHERE ur.user_id=$1
ORDER BY r.normalized_name`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, wrapPersistence("get role names", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, wrapPersistence("scan role name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPersistence("iterate role names", err)
	}
	return names, nil
}

// IsInRole retorna false (sin error) si el rol no existe.
func (s *Store) IsInRole(ctx context.Context, userID int64, normalizedRole string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	const q = `
SELECT EXISTS (
  SELECT 1
  FROM id.user_roles ur
  JOIN id.roles r ON r.id = ur.role_id
  WHERE ur.user_id=$1 AND r.normalized_name=$2
)`
	var in bool
	if err := s.pool.QueryRow(ctx, q, userID, normalizedRole).Scan(&in); err != nil {
		return false, wrapPersistence("is in role", err)
	}
	return in, nil
}

// GetUsersInRole retorna los miembros del rol. Rol inexistente → lista vacía.
func (s *Store) GetUsersInRole(ctx context.Context, normalizedRole string) ([]identity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := `
SELECT ` + userColumnsQ + `
FROM id.users u
JOIN id.user_roles ur ON ur.user_id = u.id
JOIN id.roles r ON r.id = ur.role_id
WHERE r.normalized_name=$1
ORDER BY u.id`
	rows, err := s.pool.Query(ctx, q, normalizedRole)
	if err != nil {
		return nil, wrapPersistence("get users in role", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}
