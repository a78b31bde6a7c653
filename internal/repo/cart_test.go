package repo

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/agrohub/farm_market/internal/models"
	"github.com/agrohub/farm_market/internal/testutil"
)

func TestUpsertIncrementFreshAndExisting(t *testing.T) {
	r := &GormRepo{DB: testutil.OpenTestDB(t)}
	ctx := context.Background()
	owner, product := uuid.New(), uuid.New()

	item, err := r.UpsertIncrement(ctx, owner, product, 1)
	require.NoError(t, err)
	require.Equal(t, uint(1), item.Quantity)
	firstID := item.ID

	item, err = r.UpsertIncrement(ctx, owner, product, 2)
	require.NoError(t, err)
	require.Equal(t, uint(3), item.Quantity)
	require.Equal(t, firstID, item.ID) // conflict path keeps the stored row

	items, err := r.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

// The upsert is a single conflict-resolving statement, so simultaneous adds
// for a pair with no existing line must all land on one row with the summed
// quantity: none may fail on the unique index or overwrite another's add.
func TestUpsertIncrementConcurrentAddsSum(t *testing.T) {
	r := &GormRepo{DB: testutil.OpenTestDB(t)}
	ctx := context.Background()
	owner, product := uuid.New(), uuid.New()

	const adders = 8
	var wg sync.WaitGroup
	errs := make([]error, adders)
	for i := 0; i < adders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.UpsertIncrement(ctx, owner, product, 1)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "adder %d", i)
	}

	var items []models.CartItem
	require.NoError(t, r.DB.Where("owner_id = ?", owner).Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, uint(adders), items[0].Quantity)
}

func TestClearCartLinesScopedToProducts(t *testing.T) {
	r := &GormRepo{DB: testutil.OpenTestDB(t)}
	ctx := context.Background()
	owner := uuid.New()
	ordered, kept := uuid.New(), uuid.New()

	_, err := r.UpsertIncrement(ctx, owner, ordered, 2)
	require.NoError(t, err)
	_, err = r.UpsertIncrement(ctx, owner, kept, 3)
	require.NoError(t, err)

	require.NoError(t, r.ClearCartLines(ctx, owner, []uuid.UUID{ordered}))

	items, err := r.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, kept, items[0].ProductID)

	// no product ids means nothing to clear
	require.NoError(t, r.ClearCartLines(ctx, owner, nil))
	items, err = r.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Len(t, items, 1)
}
