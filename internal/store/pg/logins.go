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

// AddLogin vincula el login externo al usuario. Un par (provider, key) ya
// vinculado a OTRO usuario produce ErrDuplicateLogin sin mutar estado; el
// mismo par ya vinculado al MISMO usuario es un no-op.
func (s *Store) AddLogin(ctx context.Context, userID int64, login identity.UserLogin) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOp("add_login", start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}

	var ownerID int64
	err = s.pool.QueryRow(ctx,
		`SELECT user_id FROM id.user_logins WHERE login_provider=$1 AND provider_key=$2`,
		login.LoginProvider, login.ProviderKey).Scan(&ownerID)
	switch {
	case err == nil:
		if ownerID == userID {
			return nil
		}
		logger.From(ctx).Warn("login already bound", logger.Component("store.pg"),
			logger.Provider(login.LoginProvider), logger.UserID(userID))
		return identity.ErrDuplicateLogin
	case errors.Is(err, pgx.ErrNoRows):
		// libre, seguimos
	default:
		return wrapPersistence("check login", err)
	}

	loginTime := login.LoginTime
	if loginTime.IsZero() {
		loginTime = time.Now().UTC()
	}

	const q = `
INSERT INTO id.user_logins (login_provider, provider_key, provider_display_name, user_id, login_time)
VALUES ($1,$2,$3,$4,$5)`
	_, err = s.pool.Exec(ctx, q,
		login.LoginProvider, login.ProviderKey, login.ProviderDisplayName, userID, loginTime)
	if err != nil {
		// Carrera contra otro AddLogin del mismo par: la PK compuesta decide.
		if isUniqueViolation(err) {
			return identity.ErrDuplicateLogin
		}
		return wrapPersistence("add login", err)
	}
	return nil
}

// RemoveLogin elimina el login solo si pertenece al usuario dado.
// Un par ajeno o inexistente es un no-op.
func (s *Store) RemoveLogin(ctx context.Context, userID int64, provider, providerKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	const q = `
DELETE FROM id.user_logins
WHERE login_provider=$1 AND provider_key=$2 AND user_id=$3`
	if _, err := s.pool.Exec(ctx, q, provider, providerKey, userID); err != nil {
		return wrapPersistence("remove login", err)
	}
	return nil
}

func (s *Store) GetLogins(ctx context.Context, userID int64) ([]identity.UserLogin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `
SELECT login_provider, provider_key, provider_display_name, user_id, login_time
FROM id.user_logins WHERE user_id=$1 ORDER BY login_time`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, wrapPersistence("get logins", err)
	}
	defer rows.Close()

	var logins []identity.UserLogin
	for rows.Next() {
		var l identity.UserLogin
		if err := rows.Scan(&l.LoginProvider, &l.ProviderKey, &l.ProviderDisplayName, &l.UserID, &l.LoginTime); err != nil {
			return nil, wrapPersistence("scan login", err)
		}
		logins = append(logins, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPersistence("iterate logins", err)
	}
	return logins, nil
}

// GetUserByLogin busca el usuario dueño del par (provider, key).
// Miss → ErrNotFound: es la señal "no hay cuenta vinculada", no un fallo.
func (s *Store) GetUserByLogin(ctx context.Context, provider, providerKey string) (*identity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := `
SELECT ` + userColumnsQ + `
FROM id.users u
JOIN id.user_logins ul ON ul.user_id = u.id
WHERE ul.login_provider=$1 AND ul.provider_key=$2`
	row := s.pool.QueryRow(ctx, q, provider, providerKey)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrNotFound
		}
		return nil, wrapPersistence("get user by login", err)
	}
	return u, nil
}
