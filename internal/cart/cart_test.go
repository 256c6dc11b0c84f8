package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/lahma-store/internal/catalog"
	"github.com/jcmexdev/lahma-store/internal/pkg/kvstore"
)

func product(id string, price float64) catalog.Product {
	return catalog.Product{
		ID:       id,
		NameAr:   "منتج " + id,
		Price:    price,
		Category: catalog.CategoryBeef,
		Image:    "/assets/beef.jpg",
	}
}

func TestAddMergesSameProduct(t *testing.T) {
	ctx := context.Background()
	svc := NewService(kvstore.NewMemory())
	steak := product("1", 180)

	_, err := svc.Add(ctx, "s1", steak, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "s1", steak, 3)
	require.NoError(t, err)
	c, err := svc.Add(ctx, "s1", steak, 1)
	require.NoError(t, err)

	require.Len(t, c.Items, 1, "re-adding must merge, not duplicate")
	assert.Equal(t, 6, c.Items[0].Quantity)
	assert.Equal(t, 6, c.TotalItems())
}

func TestAddIgnoresNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	svc := NewService(kvstore.NewMemory())

	c, err := svc.Add(ctx, "s1", product("1", 180), 0)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	c, err = svc.Add(ctx, "s1", product("1", 180), -3)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestAddSnapshotsProductFields(t *testing.T) {
	ctx := context.Background()
	svc := NewService(kvstore.NewMemory())
	p := product("1", 180)

	_, err := svc.Add(ctx, "s1", p, 1)
	require.NoError(t, err)

	// A later catalog price change must not reshape the cart line.
	p.Price = 999
	c, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 180.0, c.Items[0].Price)
}

func TestTotalPrice(t *testing.T) {
	ctx := context.Background()
	svc := NewService(kvstore.NewMemory())

	_, err := svc.Add(ctx, "s1", product("1", 120), 2)
	require.NoError(t, err)
	c, err := svc.Add(ctx, "s1", product("2", 90), 1)
	require.NoError(t, err)

	assert.Equal(t, 330.0, c.TotalPrice())
	assert.Equal(t, 3, c.TotalItems())

	c, err = svc.Remove(ctx, "s1", "1")
	require.NoError(t, err)
	assert.Equal(t, 90.0, c.TotalPrice())

	c, err = svc.UpdateQuantity(ctx, "s1", "2", 4)
	require.NoError(t, err)
	assert.Equal(t, 360.0, c.TotalPrice())
}

func TestUpdateQuantityClampsToOne(t *testing.T) {
	ctx := context.Background()
	svc := NewService(kvstore.NewMemory())

	_, err := svc.Add(ctx, "s1", product("1", 100), 5)
	require.NoError(t, err)

	for _, q := range []int{0, -2} {
		c, err := svc.UpdateQuantity(ctx, "s1", "1", q)
		require.NoError(t, err)
		assert.Equal(t, 1, c.Items[0].Quantity, "quantity %d must clamp to 1", q)
	}
}

func TestRemoveAbsentIsNoError(t *testing.T) {
	ctx := context.Background()
	svc := NewService(kvstore.NewMemory())

	c, err := svc.Remove(ctx, "s1", "ghost")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	svc := NewService(kvstore.NewMemory())

	_, err := svc.Add(ctx, "s1", product("1", 100), 2)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "s1"))

	c, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Equal(t, 0, c.TotalItems())
	assert.Equal(t, 0.0, c.TotalPrice())
}

func TestCartsIsolatedPerSession(t *testing.T) {
	ctx := context.Background()
	svc := NewService(kvstore.NewMemory())

	_, err := svc.Add(ctx, "alice", product("1", 100), 2)
	require.NoError(t, err)

	c, err := svc.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestCorruptCartReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	require.NoError(t, store.Set(ctx, "cart:s1", []byte("][")))

	svc := NewService(store)
	c, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}
