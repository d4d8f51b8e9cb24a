package main

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojane/internal/geo"
	"github.com/dropDatabas3/hellojane/internal/observability/logger"
)

// Catálogo base. ON CONFLICT DO NOTHING: correr el seed dos veces es inocuo.
var seedCountries = []geo.Country{
	{ID: "US", Code: "US", Code3: "USA", Numeric: "840", Name: "United States", OfficialName: "United States of America", DialingCode: "1"},
	{ID: "CA", Code: "CA", Code3: "CAN", Numeric: "124", Name: "Canada", OfficialName: "Canada", DialingCode: "1"},
	{ID: "GB", Code: "GB", Code3: "GBR", Numeric: "826", Name: "United Kingdom", OfficialName: "United Kingdom of Great Britain and Northern Ireland", DialingCode: "44"},
	{ID: "AU", Code: "AU", Code3: "AUS", Numeric: "036", Name: "Australia", OfficialName: "Commonwealth of Australia", DialingCode: "61"},
	{ID: "AR", Code: "AR", Code3: "ARG", Numeric: "032", Name: "Argentina", OfficialName: "Argentine Republic", DialingCode: "54"},
	{ID: "MX", Code: "MX", Code3: "MEX", Numeric: "484", Name: "Mexico", OfficialName: "United Mexican States", DialingCode: "52"},
}

var seedRegions = []geo.Region{
	{ID: "USAL", CountryID: "US", Code: "AL", Name: "Alabama"},
	{ID: "USCA", CountryID: "US", Code: "CA", Name: "California"},
	{ID: "USNY", CountryID: "US", Code: "NY", Name: "New York"},
	{ID: "USTX", CountryID: "US", Code: "TX", Name: "Texas"},
	{ID: "USWA", CountryID: "US", Code: "WA", Name: "Washington"},
	{ID: "CAON", CountryID: "CA", Code: "ON", Name: "Ontario"},
	{ID: "CAQC", CountryID: "CA", Code: "QC", Name: "Quebec"},
	{ID: "CABC", CountryID: "CA", Code: "BC", Name: "British Columbia"},
	{ID: "GBENG", CountryID: "GB", Code: "ENG", Name: "England"},
	{ID: "GBSCT", CountryID: "GB", Code: "SCT", Name: "Scotland"},
	{ID: "GBWLS", CountryID: "GB", Code: "WLS", Name: "Wales"},
	{ID: "AUNSW", CountryID: "AU", Code: "NSW", Name: "New South Wales"},
	{ID: "AUVIC", CountryID: "AU", Code: "VIC", Name: "Victoria"},
	{ID: "ARB", CountryID: "AR", Code: "B", Name: "Buenos Aires"},
	{ID: "ARC", CountryID: "AR", Code: "C", Name: "Ciudad de Buenos Aires"},
	{ID: "MXCMX", CountryID: "MX", Code: "CMX", Name: "Ciudad de Mexico"},
	{ID: "MXJAL", CountryID: "MX", Code: "JAL", Name: "Jalisco"},
}

func newSeedGeoCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-geo",
		Short: "Seed the geography catalog (countries and regions)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
			if err != nil {
				return fmt.Errorf("pgxpool: %w", err)
			}
			defer pool.Close()

			batch := &pgx.Batch{}
			for _, c := range seedCountries {
				batch.Queue(`
INSERT INTO geo.countries (id, code, code3, numeric_code, name, official_name, dialing_code)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO NOTHING`,
					c.ID, c.Code, c.Code3, c.Numeric, c.Name, c.OfficialName, c.DialingCode)
			}
			for _, r := range seedRegions {
				batch.Queue(`
INSERT INTO geo.regions (id, country_id, code, name)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO NOTHING`,
					r.ID, r.CountryID, r.Code, r.Name)
			}
			if err := pool.SendBatch(ctx, batch).Close(); err != nil {
				return fmt.Errorf("seed geo: %w", err)
			}
			logger.L().Info("geography catalog seeded",
				logger.Int("countries", len(seedCountries)),
				logger.Int("regions", len(seedRegions)))
			return nil
		},
	}
}
