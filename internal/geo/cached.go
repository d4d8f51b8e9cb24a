package geo

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/hellojane/internal/cache"
	"github.com/dropDatabas3/hellojane/internal/observability/logger"
)

// DefaultTTL para entradas del catálogo. La data geográfica cambia casi
// nunca, pero un TTL finito evita servir seeds viejos para siempre.
const DefaultTTL = 24 * time.Hour

// CachedRepository es un read-through sobre otro Repository.
// Un fallo del cache degrada a leer el backend, nunca falla la operación.
type CachedRepository struct {
	next   Repository
	client cache.Client
	ttl    time.Duration
}

func NewCachedRepository(next Repository, client cache.Client, ttl time.Duration) *CachedRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedRepository{next: next, client: client, ttl: ttl}
}

func (r *CachedRepository) ListCountries(ctx context.Context) ([]Country, error) {
	var countries []Country
	if r.lookup(ctx, "countries", &countries) {
		return countries, nil
	}
	countries, err := r.next.ListCountries(ctx)
	if err != nil {
		return nil, err
	}
	r.fill(ctx, "countries", countries)
	return countries, nil
}

func (r *CachedRepository) GetCountry(ctx context.Context, id string) (*Country, error) {
	var c Country
	if r.lookup(ctx, "country:"+id, &c) {
		return &c, nil
	}
	country, err := r.next.GetCountry(ctx, id)
	if err != nil {
		return nil, err
	}
	r.fill(ctx, "country:"+id, country)
	return country, nil
}

func (r *CachedRepository) ListRegions(ctx context.Context, countryID string) ([]Region, error) {
	var regions []Region
	if r.lookup(ctx, "regions:"+countryID, &regions) {
		return regions, nil
	}
	regions, err := r.next.ListRegions(ctx, countryID)
	if err != nil {
		return nil, err
	}
	r.fill(ctx, "regions:"+countryID, regions)
	return regions, nil
}

func (r *CachedRepository) GetRegion(ctx context.Context, id string) (*Region, error) {
	var reg Region
	if r.lookup(ctx, "region:"+id, &reg) {
		return &reg, nil
	}
	region, err := r.next.GetRegion(ctx, id)
	if err != nil {
		return nil, err
	}
	r.fill(ctx, "region:"+id, region)
	return region, nil
}

// Warm precarga países y todas sus regiones en paralelo.
func (r *CachedRepository) Warm(ctx context.Context) error {
	countries, err := r.ListCountries(ctx)
	if err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, c := range countries {
		c := c
		g.Go(func() error {
			_, err := r.ListRegions(gctx, c.ID)
			return err
		})
	}
	return g.Wait()
}

// lookup intenta leer y decodificar la key. Retorna true solo en hit sano.
func (r *CachedRepository) lookup(ctx context.Context, key string, out any) bool {
	raw, err := r.client.Get(ctx, key)
	if err != nil {
		if !cache.IsNotFound(err) {
			logger.From(ctx).Warn("geo cache read failed",
				logger.Component("geo"), logger.String("key", key), logger.Err(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		// Entrada corrupta: se descarta y se relee del backend.
		_ = r.client.Delete(ctx, key)
		return false
	}
	return true
}

func (r *CachedRepository) fill(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, string(raw), r.ttl); err != nil {
		logger.From(ctx).Warn("geo cache write failed",
			logger.Component("geo"), logger.String("key", key), logger.Err(err))
	}
}
