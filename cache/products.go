package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/moebelhaus/shop-backend/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const productsKey = "products"

// ProductCache 以 ZSET 快取商品列表，score 為商品 ID
type ProductCache struct {
	rdb *redis.Client
	log *zap.Logger
}

// rdb 為 nil 時所有操作都視為未命中
func NewProductCache(rdb *redis.Client, log *zap.Logger) *ProductCache {
	return &ProductCache{rdb: rdb, log: log.Named("product-cache")}
}

func (c *ProductCache) enabled() bool {
	return c != nil && c.rdb != nil
}

func productKey(categoryID uint) string {
	if categoryID == 0 {
		return productsKey
	}
	return fmt.Sprintf("%s:category:%d", productsKey, categoryID)
}

// Page 回傳一頁商品與總數，ok 為 false 代表需要從資料庫讀取
func (c *ProductCache) Page(ctx context.Context, categoryID uint, limit, offset int) (products []models.Product, total int64, ok bool) {
	if !c.enabled() {
		return nil, 0, false
	}
	key := productKey(categoryID)

	total, err := c.rdb.ZCard(ctx, key).Result()
	if err != nil || total == 0 {
		if err != nil {
			c.log.Warn("無法讀取商品快取", zap.String("key", key), zap.Error(err))
		}
		return nil, 0, false
	}

	members, err := c.rdb.ZRange(ctx, key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		c.log.Warn("無法讀取商品快取", zap.String("key", key), zap.Error(err))
		return nil, 0, false
	}

	products = make([]models.Product, 0, len(members))
	for _, member := range members {
		var product models.Product
		if err := json.Unmarshal([]byte(member), &product); err != nil {
			c.log.Warn("無法反序列化商品資料", zap.Error(err))
			return nil, 0, false
		}
		products = append(products, product)
	}
	return products, total, true
}

// Fill 以完整列表覆寫快取
func (c *ProductCache) Fill(ctx context.Context, categoryID uint, products []models.Product) {
	if !c.enabled() || len(products) == 0 {
		return
	}
	key := productKey(categoryID)

	members := make([]redis.Z, 0, len(products))
	for _, product := range products {
		productJSON, err := json.Marshal(product)
		if err != nil {
			c.log.Warn("無法序列化商品資料", zap.Uint("productId", product.ID), zap.Error(err))
			return
		}
		members = append(members, redis.Z{Score: float64(product.ID), Member: productJSON})
	}

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.ZAdd(ctx, key, members...)
		return nil
	})
	if err != nil {
		c.log.Warn("無法將商品資料加入Redis", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate 商品異動後清除所有列表快取
func (c *ProductCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	var keys []string
	iter := c.rdb.Scan(ctx, 0, productsKey+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("無法列出商品快取", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("無法清除商品快取", zap.Error(err))
	}
}
