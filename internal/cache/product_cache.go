package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
)

const (
	keyPrefix       = "backoffice:"
	keyAllProducts  = keyPrefix + "products:all"
	notFoundMarker  = "notfound"
	notFoundTTL     = time.Minute
	defaultCacheTTL = 5 * time.Minute
)

func productKey(id int) string {
	return fmt.Sprintf("%sproduct:%d", keyPrefix, id)
}

func categoryKey(category string) string {
	return fmt.Sprintf("%sproducts:category:%s", keyPrefix, category)
}

// CachedProductRepository serves product reads from Redis and falls back to
// the wrapped repository. Redis failures are logged and never surfaced.
type CachedProductRepository struct {
	realRepo repository.ProductRepository
	redis    *redis.Client
	ttl      time.Duration
	logger   *slog.Logger
}

var _ repository.ProductRepository = (*CachedProductRepository)(nil)

func NewCachedProductRepository(realRepo repository.ProductRepository, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedProductRepository {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    rdb,
		ttl:      ttl,
		logger:   logger,
	}
}

func (c *CachedProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	key := productKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, repository.ErrNotFound
		}

		var product models.Product
		if err := json.Unmarshal(data, &product); err != nil {
			c.logger.Warn("failed to unmarshal cached product, continuing with DB", "key", key, "error", err)
			break
		}

		return &product, nil

	case errors.Is(err, redis.Nil):

	default:
		c.logger.Warn("redis error, continuing with DB", "key", key, "error", err)
	}

	product, err := c.realRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, notFoundTTL).Err(); setErr != nil {
				c.logger.Warn("failed to cache notfound", "key", key, "error", setErr)
			}
		}
		return nil, err
	}

	c.store(ctx, key, product)
	return product, nil
}

func (c *CachedProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return c.list(ctx, keyAllProducts, func() ([]models.Product, error) {
		return c.realRepo.GetAll(ctx)
	})
}

func (c *CachedProductRepository) GetByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return c.list(ctx, categoryKey(category), func() ([]models.Product, error) {
		return c.realRepo.GetByCategory(ctx, category)
	})
}

func (c *CachedProductRepository) list(ctx context.Context, key string, load func() ([]models.Product, error)) ([]models.Product, error) {
	data, err := c.redis.Get(ctx, key).Bytes()

	if err == nil {
		var products []models.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		c.logger.Warn("failed to unmarshal cached products, continuing with DB", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("redis error, continuing with DB", "key", key, "error", err)
	}

	products, err := load()
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, products)
	return products, nil
}

func (c *CachedProductRepository) store(ctx context.Context, key string, v any) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("failed to marshal products", "key", key, "error", err)
		return
	}
	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache products", "key", key, "error", err)
	}
}

// Search, Count and GetForUpdate always hit the database.

func (c *CachedProductRepository) Search(ctx context.Context, term string) ([]models.Product, error) {
	return c.realRepo.Search(ctx, term)
}

func (c *CachedProductRepository) Count(ctx context.Context) (int, error) {
	return c.realRepo.Count(ctx)
}

func (c *CachedProductRepository) GetForUpdate(ctx context.Context, id int) (*models.Product, error) {
	return c.realRepo.GetForUpdate(ctx, id)
}

func (c *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := c.realRepo.Create(ctx, product); err != nil {
		return err
	}
	c.Invalidate(ctx, product.ProductID, product.Category)
	return nil
}

func (c *CachedProductRepository) Update(ctx context.Context, product *models.Product) error {
	old, err := c.realRepo.GetByID(ctx, product.ProductID)
	if err != nil {
		c.Invalidate(ctx, product.ProductID)
		return err
	}

	if err := c.realRepo.Update(ctx, product); err != nil {
		return err
	}
	c.Invalidate(ctx, product.ProductID, old.Category, product.Category)
	return nil
}

func (c *CachedProductRepository) Delete(ctx context.Context, id int) error {
	product, err := c.realRepo.GetByID(ctx, id)
	if err != nil {
		c.Invalidate(ctx, id)
		return err
	}

	if err := c.realRepo.Delete(ctx, id); err != nil {
		return err
	}
	c.Invalidate(ctx, id, product.Category)
	return nil
}

func (c *CachedProductRepository) UpdateQuantity(ctx context.Context, id int, change int) error {
	if err := c.realRepo.UpdateQuantity(ctx, id, change); err != nil {
		return err
	}
	c.InvalidateProducts(ctx, id)
	return nil
}

// Invalidate drops the product key, the full listing and the given
// category listings.
func (c *CachedProductRepository) Invalidate(ctx context.Context, productID int, categories ...string) {
	keys := []string{productKey(productID), keyAllProducts}
	for _, category := range categories {
		if category != "" {
			keys = append(keys, categoryKey(category))
		}
	}

	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("failed to delete product cache", "keys", keys, "error", err)
	}
}

// InvalidateProducts drops the given products together with every listing.
func (c *CachedProductRepository) InvalidateProducts(ctx context.Context, productIDs ...int) {
	keys := []string{keyAllProducts}
	for _, id := range productIDs {
		keys = append(keys, productKey(id))
	}
	for _, category := range models.Categories {
		keys = append(keys, categoryKey(category))
	}

	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("failed to delete product cache", "keys", keys, "error", err)
	}
}

// CachedStore decorates a store so product reads outside transactions go
// through Redis. Products written inside a transaction are invalidated once
// it commits.
type CachedStore struct {
	repository.Store
	products *CachedProductRepository
}

func NewCachedStore(store repository.Store, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{
		Store:    store,
		products: NewCachedProductRepository(store.Products(), rdb, ttl, logger),
	}
}

func (s *CachedStore) Products() repository.ProductRepository {
	return s.products
}

func (s *CachedStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	touched := &touchedProducts{}

	err := s.Store.WithinTx(ctx, func(tx repository.Store) error {
		return fn(&trackingStore{Store: tx, touched: touched})
	})
	if err != nil {
		return err
	}

	if ids := touched.list(); len(ids) > 0 {
		s.products.InvalidateProducts(ctx, ids...)
	}
	return nil
}

type touchedProducts struct {
	mu  sync.Mutex
	ids []int
}

func (t *touchedProducts) add(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ids = append(t.ids, id)
}

func (t *touchedProducts) list() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]int(nil), t.ids...)
}

type trackingStore struct {
	repository.Store
	touched *touchedProducts
}

func (s *trackingStore) Products() repository.ProductRepository {
	return &trackingProducts{ProductRepository: s.Store.Products(), touched: s.touched}
}

func (s *trackingStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(s)
}

type trackingProducts struct {
	repository.ProductRepository
	touched *touchedProducts
}

func (p *trackingProducts) Create(ctx context.Context, product *models.Product) error {
	if err := p.ProductRepository.Create(ctx, product); err != nil {
		return err
	}
	p.touched.add(product.ProductID)
	return nil
}

func (p *trackingProducts) Update(ctx context.Context, product *models.Product) error {
	if err := p.ProductRepository.Update(ctx, product); err != nil {
		return err
	}
	p.touched.add(product.ProductID)
	return nil
}

func (p *trackingProducts) Delete(ctx context.Context, id int) error {
	if err := p.ProductRepository.Delete(ctx, id); err != nil {
		return err
	}
	p.touched.add(id)
	return nil
}

func (p *trackingProducts) UpdateQuantity(ctx context.Context, id int, change int) error {
	if err := p.ProductRepository.UpdateQuantity(ctx, id, change); err != nil {
		return err
	}
	p.touched.add(id)
	return nil
}
