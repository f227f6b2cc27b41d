package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/pos-api/internal/application/catalog"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// RedisPromotionCache cachea en Redis las promociones vigentes por producto.
// En cache miss consulta el repositorio y guarda el resultado con TTL corto;
// las escrituras de campañas invalidan las llaves afectadas. El precio siempre
// se re-filtra con ActiveAt(now) porque la entrada cacheada puede incluir
// promociones que vencieron dentro del TTL.
type RedisPromotionCache struct {
	client *redis.Client
	repo   repository.PromotionRepository
	ttl    time.Duration
}

var _ sales.PromotionSource = (*RedisPromotionCache)(nil)
var _ catalog.PromotionInvalidator = (*RedisPromotionCache)(nil)

// NewRedisPromotionCache construye el cache con su cliente Redis.
func NewRedisPromotionCache(addr, password string, db int, ttl time.Duration, repo repository.PromotionRepository) *RedisPromotionCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisPromotionCache{client: client, repo: repo, ttl: ttl}
}

// Ping verifica la conexión.
func (c *RedisPromotionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (c *RedisPromotionCache) Close() error {
	return c.client.Close()
}

func promotionKey(productID string) string {
	return fmt.Sprintf("promo:active:%s", productID)
}

// ActiveForProduct resuelve promociones vigentes, primero desde Redis.
// Un fallo de Redis degrada a lectura directa del repositorio: el cobro de una
// venta nunca se bloquea por el cache.
func (c *RedisPromotionCache) ActiveForProduct(ctx context.Context, productID string, now time.Time) ([]*entity.Promotion, error) {
	key := promotionKey(productID)
	val, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var promos []*entity.Promotion
		if jsonErr := json.Unmarshal([]byte(val), &promos); jsonErr == nil {
			return filterActive(promos, productID, now), nil
		}
		// entrada corrupta, se descarta y se repuebla
		_ = c.client.Del(ctx, key).Err()
	} else if err != redis.Nil {
		return c.repo.ActiveForProduct(productID, now)
	}

	promos, err := c.repo.ActiveForProduct(productID, now)
	if err != nil {
		return nil, err
	}
	if payload, jsonErr := json.Marshal(promos); jsonErr == nil {
		_ = c.client.Set(ctx, key, payload, c.ttl).Err()
	}
	return promos, nil
}

// Invalidate borra las llaves cacheadas de los productos indicados.
func (c *RedisPromotionCache) Invalidate(ctx context.Context, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, promotionKey(id))
	}
	return c.client.Del(ctx, keys...).Err()
}

func filterActive(promos []*entity.Promotion, productID string, now time.Time) []*entity.Promotion {
	var out []*entity.Promotion
	for _, p := range promos {
		if !p.ActiveAt(now) {
			continue
		}
		if _, ok := p.PriceFor(productID); ok {
			out = append(out, p)
		}
	}
	return out
}

// RepoPromotionSource lee promociones directo del repositorio, sin cache.
// Se usa cuando Redis está deshabilitado y en tests.
type RepoPromotionSource struct {
	repo repository.PromotionRepository
}

var _ sales.PromotionSource = (*RepoPromotionSource)(nil)

// NewRepoPromotionSource construye la fuente directa.
func NewRepoPromotionSource(repo repository.PromotionRepository) *RepoPromotionSource {
	return &RepoPromotionSource{repo: repo}
}

func (s *RepoPromotionSource) ActiveForProduct(_ context.Context, productID string, now time.Time) ([]*entity.Promotion, error) {
	return s.repo.ActiveForProduct(productID, now)
}

// NoopInvalidator no invalida nada; para despliegues sin Redis.
type NoopInvalidator struct{}

var _ catalog.PromotionInvalidator = NoopInvalidator{}

func (NoopInvalidator) Invalidate(context.Context, []string) error { return nil }
