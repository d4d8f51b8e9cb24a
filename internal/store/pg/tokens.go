package pg

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/hellojane/internal/domain/identity"
	"github.com/dropDatabas3/hellojane/internal/metrics"
)

// SetToken inserta o reemplaza el valor del token (user, provider, name).
func (s *Store) SetToken(ctx context.Context, userID int64, provider, name, value string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOp("set_token", start, err) }()
	if err = ctx.Err(); err != nil {
		return err
	}
	const q = `
INSERT INTO id.user_tokens (user_id, login_provider, name, value)
VALUES ($1,$2,$3,$4)
ON CONFLICT (user_id, login_provider, name) DO UPDATE SET value = EXCLUDED.value`
	if _, err = s.pool.Exec(ctx, q, userID, provider, name, value); err != nil {
		return wrapPersistence("set token", err)
	}
	return nil
}

// GetToken retorna el valor y un flag de presencia. La ausencia del token
// no es un error: el caller decide qué significa.
func (s *Store) GetToken(ctx context.Context, userID int64, provider, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	const q = `
SELECT value FROM id.user_tokens
WHERE user_id=$1 AND login_provider=$2 AND name=$3`
	var value string
	err := s.pool.QueryRow(ctx, q, userID, provider, name).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, wrapPersistence("get token", err)
	}
	return value, true, nil
}

// RemoveToken elimina el token. Miss es un no-op.
func (s *Store) RemoveToken(ctx context.Context, userID int64, provider, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	const q = `
DELETE FROM id.user_tokens
WHERE user_id=$1 AND login_provider=$2 AND name=$3`
	if _, err := s.pool.Exec(ctx, q, userID, provider, name); err != nil {
		return wrapPersistence("remove token", err)
	}
	return nil
}

// --- recovery codes ---------------------------------------------------------
//
// Los recovery codes viven como UN solo token interno cuyo valor es la lista
// de códigos unida por ";". Consumir un código reescribe el valor completo.

func joinCodes(codes []string) string {
	return strings.Join(codes, identity.RecoveryCodeSeparator)
}

func splitCodes(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, identity.RecoveryCodeSeparator)
}

// removeCode quita la primera ocurrencia de code. Retorna la lista resultante
// y si hubo match.
func removeCode(codes []string, code string) ([]string, bool) {
	for i, c := range codes {
		if c == code {
			return append(codes[:i:i], codes[i+1:]...), true
		}
	}
	return codes, false
}

// ReplaceRecoveryCodes descarta los códigos previos y persiste el set nuevo.
func (s *Store) ReplaceRecoveryCodes(ctx context.Context, userID int64, codes []string) error {
	return s.SetToken(ctx, userID,
		identity.InternalLoginProvider, identity.RecoveryCodesTokenName, joinCodes(codes))
}

// RedeemRecoveryCode consume el código si existe. Lee con FOR UPDATE dentro
// de una transacción para que dos redenciones concurrentes del mismo código
// no puedan tener éxito ambas.
func (s *Store) RedeemRecoveryCode(ctx context.Context, userID int64, code string) (redeemed bool, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOp("redeem_recovery_code", start, err) }()
	if err = ctx.Err(); err != nil {
		return false, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, wrapPersistence("begin redeem", err)
	}
	defer tx.Rollback(ctx)

	const sel = `
SELECT value FROM id.user_tokens
WHERE user_id=$1 AND login_provider=$2 AND name=$3
FOR UPDATE`
	var value string
	err = tx.QueryRow(ctx, sel, userID,
		identity.InternalLoginProvider, identity.RecoveryCodesTokenName).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, wrapPersistence("read recovery codes", err)
	}

	remaining, ok := removeCode(splitCodes(value), code)
	if !ok {
		return false, nil
	}

	const upd = `
UPDATE id.user_tokens SET value=$4
WHERE user_id=$1 AND login_provider=$2 AND name=$3`
	if _, err = tx.Exec(ctx, upd, userID,
		identity.InternalLoginProvider, identity.RecoveryCodesTokenName, joinCodes(remaining)); err != nil {
		return false, wrapPersistence("rewrite recovery codes", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return false, wrapPersistence("commit redeem", err)
	}
	return true, nil
}

// CountRecoveryCodes retorna cuántos códigos quedan sin consumir.
func (s *Store) CountRecoveryCodes(ctx context.Context, userID int64) (int, error) {
	value, ok, err := s.GetToken(ctx, userID,
		identity.InternalLoginProvider, identity.RecoveryCodesTokenName)
	if err != nil || !ok {
		return 0, err
	}
	return len(splitCodes(value)), nil
}
