package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-origination-api/models"
)

func TestGetLoanProductsCachesPerTenant(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db)
	other := seedTenant(t, db)

	now := time.Now()
	product := models.LoanProduct{
		TenantID:    tenant.TenantID,
		ProductName: "Credito Personal",
		MinAmount:   decimal.NewFromInt(1000),
		MaxAmount:   decimal.NewFromInt(50000),
		IsActive:    true,
		CreateAt:    &now,
	}
	require.NoError(t, db.Create(&product).Error)

	products, err := GetLoanProducts(tenant.TenantID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Credito Personal", products[0].ProductName)

	// Caches are tenant-keyed: the other tenant sees its own empty catalog.
	empty, err := GetLoanProducts(other.TenantID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	// A write behind the cache is invisible until invalidation.
	require.NoError(t, db.Model(&product).Update("is_active", false).Error)
	cached, err := GetLoanProducts(tenant.TenantID)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	ClearProductCache()
	fresh, err := GetLoanProducts(tenant.TenantID)
	require.NoError(t, err)
	assert.Empty(t, fresh)
}
