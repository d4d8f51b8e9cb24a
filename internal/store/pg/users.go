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

const userColumns = `
	id, user_name, normalized_user_name, email, normalized_email,
	given_name, family_name, address1, address2, city,
	region_code, country_code, postal_code, dialing_code, phone_number,
	gender, birth_date, newsletter, register_date,
	email_confirmed, phone_number_confirmed, two_factor_enabled,
	access_failed_count, lockout_enabled, lockout_end,
	concurrency_stamp, security_stamp, password_hash`

// userColumnsQ es la misma lista calificada con el alias "u" para joins.
const userColumnsQ = `
	u.id, u.user_name, u.normalized_user_name, u.email, u.normalized_email,
	u.given_name, u.family_name, u.address1, u.address2, u.city,
	u.region_code, u.country_code, u.postal_code, u.dialing_code, u.phone_number,
	u.gender, u.birth_date, u.newsletter, u.register_date,
	u.email_confirmed, u.phone_number_confirmed, u.two_factor_enabled,
	u.access_failed_count, u.lockout_enabled, u.lockout_end,
	u.concurrency_stamp, u.security_stamp, u.password_hash`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*identity.User, error) {
	var u identity.User
	err := row.Scan(
		&u.ID, &u.UserName, &u.NormalizedUserName, &u.Email, &u.NormalizedEmail,
		&u.GivenName, &u.FamilyName, &u.Address1, &u.Address2, &u.City,
		&u.RegionCode, &u.CountryCode, &u.PostalCode, &u.DialingCode, &u.PhoneNumber,
		&u.Gender, &u.BirthDate, &u.Newsletter, &u.RegisterDate,
		&u.EmailConfirmed, &u.PhoneNumberConfirmed, &u.TwoFactorEnabled,
		&u.AccessFailedCount, &u.LockoutEnabled, &u.LockoutEnd,
		&u.ConcurrencyStamp, &u.SecurityStamp, &u.PasswordHash,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func collectUsers(rows pgx.Rows) ([]identity.User, error) {
	defer rows.Close()
	var users []identity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// CreateUser inserta el usuario y rellena ID, RegisterDate y stamps.
func (s *Store) CreateUser(ctx context.Context, u *identity.User) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOp("create_user", start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}

	if u.ConcurrencyStamp == "" {
		u.ConcurrencyStamp = identity.NewStamp()
	}
	if u.SecurityStamp == "" {
		u.SecurityStamp = identity.NewStamp()
	}

	const q = `
INSERT INTO id.users
	(user_name, normalized_user_name, email, normalized_email,
	 given_name, family_name, address1, address2, city,
	 region_code, country_code, postal_code, dialing_code, phone_number,
	 gender, birth_date, newsletter,
	 email_confirmed, phone_number_confirmed, two_factor_enabled,
	 access_failed_count, lockout_enabled, lockout_end,
	 concurrency_stamp, security_stamp, password_hash)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
RETURNING id, register_date`

	err = s.pool.QueryRow(ctx, q,
		u.UserName, u.NormalizedUserName, u.Email, u.NormalizedEmail,
		u.GivenName, u.FamilyName, u.Address1, u.Address2, u.City,
		u.RegionCode, u.CountryCode, u.PostalCode, u.DialingCode, u.PhoneNumber,
		u.Gender, u.BirthDate, u.Newsletter,
		u.EmailConfirmed, u.PhoneNumberConfirmed, u.TwoFactorEnabled,
		u.AccessFailedCount, u.LockoutEnabled, u.LockoutEnd,
		u.ConcurrencyStamp, u.SecurityStamp, u.PasswordHash,
	).Scan(&u.ID, &u.RegisterDate)
	if err != nil {
		if isUniqueViolation(err) {
			logger.From(ctx).Warn("create user: duplicate username",
				logger.Component("store.pg"), logger.UserName(u.UserName))
			return wrapPersistence("create user: username already taken", err)
		}
		logger.From(ctx).Error("create user failed", logger.Component("store.pg"), logger.Err(err))
		return wrapPersistence("create user", err)
	}
	return nil
}

// UpdateUser regenera SIEMPRE el concurrency stamp y compara el stamp leído
// por el caller al escribir. 0 filas afectadas + fila existente → ErrConcurrency.
func (s *Store) UpdateUser(ctx context.Context, u *identity.User) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOp("update_user", start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}

	newStamp := identity.NewStamp()

	const q = `
UPDATE id.users SET
	user_name=$3, normalized_user_name=$4, email=$5, normalized_email=$6,
	given_name=$7, family_name=$8, address1=$9, address2=$10, city=$11,
	region_code=$12, country_code=$13, postal_code=$14, dialing_code=$15, phone_number=$16,
	gender=$17, birth_date=$18, newsletter=$19,
	email_confirmed=$20, phone_number_confirmed=$21, two_factor_enabled=$22,
	access_failed_count=$23, lockout_enabled=$24, lockout_end=$25,
	security_stamp=$26, password_hash=$27,
	concurrency_stamp=$28
WHERE id=$1 AND concurrency_stamp=$2`

	tag, err := s.pool.Exec(ctx, q,
		u.ID, u.ConcurrencyStamp,
		u.UserName, u.NormalizedUserName, u.Email, u.NormalizedEmail,
		u.GivenName, u.FamilyName, u.Address1, u.Address2, u.City,
		u.RegionCode, u.CountryCode, u.PostalCode, u.DialingCode, u.PhoneNumber,
		u.Gender, u.BirthDate, u.Newsletter,
		u.EmailConfirmed, u.PhoneNumberConfirmed, u.TwoFactorEnabled,
		u.AccessFailedCount, u.LockoutEnabled, u.LockoutEnd,
		u.SecurityStamp, u.PasswordHash,
		newStamp,
	)
	if err != nil {
		logger.From(ctx).Error("update user failed", logger.Component("store.pg"),
			logger.UserID(u.ID), logger.Err(err))
		return wrapPersistence("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return s.classifyWriteMiss(ctx, u.ID)
	}
	u.ConcurrencyStamp = newStamp
	return nil
}

// DeleteUser elimina el usuario (las filas hijas caen por cascade).
// Mismo manejo de concurrencia optimista que UpdateUser.
func (s *Store) DeleteUser(ctx context.Context, u *identity.User) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOp("delete_user", start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM id.users WHERE id=$1 AND concurrency_stamp=$2`,
		u.ID, u.ConcurrencyStamp)
	if err != nil {
		return wrapPersistence("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return s.classifyWriteMiss(ctx, u.ID)
	}
	return nil
}

// classifyWriteMiss distingue stamp mismatch de fila inexistente.
func (s *Store) classifyWriteMiss(ctx context.Context, userID int64) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM id.users WHERE id=$1)`, userID).Scan(&exists); err != nil {
		return wrapPersistence("check user exists", err)
	}
	if exists {
		return identity.ErrConcurrency
	}
	return identity.ErrNotFound
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*identity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM id.users WHERE id=$1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrNotFound
		}
		return nil, wrapPersistence("get user by id", err)
	}
	return u, nil
}

// GetUserByName busca por normalized username. El caller normaliza; acá el
// match es exacto.
func (s *Store) GetUserByName(ctx context.Context, normalizedUserName string) (*identity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM id.users WHERE normalized_user_name=$1 LIMIT 1`,
		normalizedUserName)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrNotFound
		}
		return nil, wrapPersistence("get user by name", err)
	}
	return u, nil
}

// GetUserByEmail busca por normalized email. El índice no es único (varias
// cuentas pueden compartir email antes de confirmar): gana la de menor ID.
func (s *Store) GetUserByEmail(ctx context.Context, normalizedEmail string) (*identity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM id.users WHERE normalized_email=$1 ORDER BY id LIMIT 1`,
		normalizedEmail)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrNotFound
		}
		return nil, wrapPersistence("get user by email", err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]identity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM id.users ORDER BY id`)
	if err != nil {
		return nil, wrapPersistence("list users", err)
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, wrapPersistence("list users", err)
	}
	return users, nil
}
