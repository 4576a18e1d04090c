package services

import (
	"sync"
	"time"

	"loan-origination-api/config"
	"loan-origination-api/models"
)

var (
	productCacheMu sync.RWMutex
	productCache   map[int]*productCacheEntry
	productTTL     = 5 * time.Minute
)

type productCacheEntry struct {
	products  []models.LoanProduct
	fetchedAt time.Time
}

// GetLoanProducts returns the tenant's active product catalog with caching.
// The catalog changes rarely; a short TTL keeps stale windows small.
func GetLoanProducts(tenantID int) ([]models.LoanProduct, error) {
	productCacheMu.RLock()
	cached := productCache[tenantID]
	productCacheMu.RUnlock()

	if cached != nil && time.Since(cached.fetchedAt) < productTTL {
		return cached.products, nil
	}

	productCacheMu.Lock()
	defer productCacheMu.Unlock()

	if cached = productCache[tenantID]; cached != nil && time.Since(cached.fetchedAt) < productTTL {
		return cached.products, nil
	}

	var rows []models.LoanProduct
	if err := config.DB.
		Where("tenant_id = ? AND is_active = ? AND delete_at IS NULL", tenantID, true).
		Order("product_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	if productCache == nil {
		productCache = make(map[int]*productCacheEntry)
	}
	productCache[tenantID] = &productCacheEntry{products: rows, fetchedAt: time.Now()}
	return rows, nil
}

// ClearProductCache invalidates the in-memory product cache.
func ClearProductCache() {
	productCacheMu.Lock()
	defer productCacheMu.Unlock()
	productCache = nil
}
