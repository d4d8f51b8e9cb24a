package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellojane/internal/domain/identity"
)

// PGRepository lee el catálogo desde Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const countryColumns = `id, code, code3, numeric_code, name, official_name, dialing_code`

func (r *PGRepository) ListCountries(ctx context.Context) ([]Country, error) {
	const q = `SELECT ` + countryColumns + ` FROM geo.countries ORDER BY name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, wrapGeo("list countries", err)
	}
	defer rows.Close()

	var countries []Country
	for rows.Next() {
		var c Country
		if err := rows.Scan(&c.ID, &c.Code, &c.Code3, &c.Numeric, &c.Name, &c.OfficialName, &c.DialingCode); err != nil {
			return nil, wrapGeo("scan country", err)
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapGeo("iterate countries", err)
	}
	return countries, nil
}

func (r *PGRepository) GetCountry(ctx context.Context, id string) (*Country, error) {
	const q = `SELECT ` + countryColumns + ` FROM geo.countries WHERE id=$1`
	var c Country
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&c.ID, &c.Code, &c.Code3, &c.Numeric, &c.Name, &c.OfficialName, &c.DialingCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrNotFound
		}
		return nil, wrapGeo("get country", err)
	}
	return &c, nil
}

func (r *PGRepository) ListRegions(ctx context.Context, countryID string) ([]Region, error) {
	const q = `SELECT id, country_id, code, name FROM geo.regions WHERE country_id=$1 ORDER BY name`
	rows, err := r.pool.Query(ctx, q, countryID)
	if err != nil {
		return nil, wrapGeo("list regions", err)
	}
	defer rows.Close()

	var regions []Region
	for rows.Next() {
		var reg Region
		if err := rows.Scan(&reg.ID, &reg.CountryID, &reg.Code, &reg.Name); err != nil {
			return nil, wrapGeo("scan region", err)
		}
		regions = append(regions, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapGeo("iterate regions", err)
	}
	return regions, nil
}

func (r *PGRepository) GetRegion(ctx context.Context, id string) (*Region, error) {
	const q = `SELECT id, country_id, code, name FROM geo.regions WHERE id=$1`
	var reg Region
	err := r.pool.QueryRow(ctx, q, id).Scan(&reg.ID, &reg.CountryID, &reg.Code, &reg.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrNotFound
		}
		return nil, wrapGeo("get region", err)
	}
	return &reg, nil
}

func wrapGeo(op string, err error) error {
	return fmt.Errorf("%w: geo: %s: %v", identity.ErrPersistence, op, err)
}
