package pg

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/hellojane/internal/domain/identity"
	"github.com/dropDatabas3/hellojane/internal/observability/logger"
)

func (s *Store) GetClaims(ctx context.Context, userID int64) ([]identity.Claim, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `
SELECT claim_type, claim_value, claim_value_type, issuer, original_issuer
FROM id.user_claims WHERE user_id=$1 ORDER BY id`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, wrapPersistence("get claims", err)
	}
	return collectClaims(rows)
}

func collectClaims(rows pgx.Rows) ([]identity.Claim, error) {
	defer rows.Close()
	var claims []identity.Claim
	for rows.Next() {
		var c identity.Claim
		if err := rows.Scan(&c.Type, &c.Value, &c.ValueType, &c.Issuer, &c.OriginalIssuer); err != nil {
			return nil, wrapPersistence("scan claim", err)
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPersistence("iterate claims", err)
	}
	return claims, nil
}

// AddClaims agrega claims en batch. Sin dedup: claims repetidos se permiten
// por contrato.
func (s *Store) AddClaims(ctx context.Context, userID int64, claims []identity.Claim) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(claims) == 0 {
		return nil
	}
	var b pgx.Batch
	for _, c := range claims {
		b.Queue(`
INSERT INTO id.user_claims (user_id, claim_type, claim_value, claim_value_type, issuer, original_issuer)
VALUES ($1,$2,$3,$4,$5,$6)`,
			userID, c.Type, c.Value, c.ValueType, c.Issuer, c.OriginalIssuer)
	}
	br := s.pool.SendBatch(ctx, &b)
	for range claims {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return wrapPersistence("add claims", err)
		}
	}
	if err := br.Close(); err != nil {
		return wrapPersistence("add claims", err)
	}
	logger.From(ctx).Debug("claims added", logger.Component("store.pg"),
		logger.UserID(userID), logger.Count(len(claims)))
	return nil
}

// ReplaceClaim reescribe todos los matches de (type, value) con el nuevo par.
func (s *Store) ReplaceClaim(ctx context.Context, userID int64, oldClaim, newClaim identity.Claim) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	const q = `
UPDATE id.user_claims SET claim_type=$4, claim_value=$5
WHERE user_id=$1 AND claim_type=$2 AND claim_value=$3`
	if _, err := s.pool.Exec(ctx, q, userID, oldClaim.Type, oldClaim.Value, newClaim.Type, newClaim.Value); err != nil {
		return wrapPersistence("replace claim", err)
	}
	return nil
}

// RemoveClaims elimina todos los matches de (type, value) de cada claim dado.
func (s *Store) RemoveClaims(ctx context.Context, userID int64, claims []identity.Claim) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(claims) == 0 {
		return nil
	}
	var b pgx.Batch
	for _, c := range claims {
		b.Queue(`DELETE FROM id.user_claims WHERE user_id=$1 AND claim_type=$2 AND claim_value=$3`,
			userID, c.Type, c.Value)
	}
	br := s.pool.SendBatch(ctx, &b)
	for range claims {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return wrapPersistence("remove claims", err)
		}
	}
	if err := br.Close(); err != nil {
		return wrapPersistence("remove claims", err)
	}
	return nil
}

// GetUsersForClaim enumera los usuarios que poseen el claim (match type+value).
func (s *Store) GetUsersForClaim(ctx context.Context, claim identity.Claim) ([]identity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := `
SELECT ` + userColumnsQ + `
FROM id.users u
JOIN id.user_claims uc ON uc.user_id = u.id
WHERE uc.claim_type=$1 AND uc.claim_value=$2
ORDER BY u.id`
	rows, err := s.pool.Query(ctx, q, claim.Type, claim.Value)
	if err != nil {
		return nil, wrapPersistence("get users for claim", err)
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, wrapPersistence("get users for claim", err)
	}
	return users, nil
}
