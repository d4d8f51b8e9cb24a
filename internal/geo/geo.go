// Package geo expone el catálogo de países y regiones (schema geo).
// Es data de referencia: lectura intensiva, escritura solo vía seed.
package geo

import "context"

// Country es un país ISO 3166-1. El ID es el código alfa-2.
type Country struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Code3        string `json:"code3"`
	Numeric      string `json:"numeric"`
	Name         string `json:"name"`
	OfficialName string `json:"official_name"`
	DialingCode  string `json:"dialing_code"`
}

// Region es una subdivisión ISO 3166-2. El ID concatena país y código
// (ej. "USCA"); Code es único dentro del país.
type Region struct {
	ID        string `json:"id"`
	CountryID string `json:"country_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
}

// Repository lee el catálogo geográfico.
type Repository interface {
	ListCountries(ctx context.Context) ([]Country, error)
	GetCountry(ctx context.Context, id string) (*Country, error)
	ListRegions(ctx context.Context, countryID string) ([]Region, error)
	GetRegion(ctx context.Context, id string) (*Region, error)
}
