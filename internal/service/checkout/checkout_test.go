package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/agrohub/farm_market/internal/apperr"
	"github.com/agrohub/farm_market/internal/auth"
	"github.com/agrohub/farm_market/internal/models"
	"github.com/agrohub/farm_market/internal/repo"
	"github.com/agrohub/farm_market/internal/service/cart"
	"github.com/agrohub/farm_market/internal/testutil"
)

// flakyStore injects failures into the two checkout writes.
type flakyStore struct {
	*repo.GormRepo
	failBatch bool
	failClear bool
}

func (s *flakyStore) CreateOrderBatch(ctx context.Context, orders []models.Order) error {
	if s.failBatch {
		return errors.New("injected batch failure")
	}
	return s.GormRepo.CreateOrderBatch(ctx, orders)
}

func (s *flakyStore) ClearCartLines(ctx context.Context, ownerID uuid.UUID, productIDs []uuid.UUID) error {
	if s.failClear {
		return errors.New("injected clear failure")
	}
	return s.GormRepo.ClearCartLines(ctx, ownerID, productIDs)
}

type recordingPublisher struct {
	events []map[string]any
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, event map[string]any) error {
	p.events = append(p.events, event)
	return nil
}

type testEnv struct {
	svc      *CheckoutService
	store    *flakyStore
	repo     *repo.GormRepo
	pub      *recordingPublisher
	sess     auth.Session
	productX *models.Product
	productY *models.Product
}

func newTestEnv(t *testing.T) *testEnv {
	r := &repo.GormRepo{DB: testutil.OpenTestDB(t)}
	store := &flakyStore{GormRepo: r}
	pub := &recordingPublisher{}
	cartSvc := &cart.CartService{Repo: r}

	env := &testEnv{
		svc:   &CheckoutService{Store: store, Cart: cartSvc, Producer: pub},
		store: store,
		repo:  r,
		pub:   pub,
		sess:  auth.Session{UserID: uuid.New(), Role: auth.RoleCustomer},
	}

	ctx := context.Background()
	env.productX = &models.Product{Name: "Tomatoes", Price: 50, Quantity: 100, OwnerID: uuid.New()}
	env.productY = &models.Product{Name: "Cabbage", Price: 20, Quantity: 100, OwnerID: uuid.New()}
	for _, p := range []*models.Product{env.productX, env.productY} {
		_, err := r.CreateProduct(ctx, p)
		require.NoError(t, err)
	}
	return env
}

func (env *testEnv) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := env.repo.UpsertIncrement(ctx, env.sess.UserID, env.productX.ID, 2)
	require.NoError(t, err)
	_, err = env.repo.UpsertIncrement(ctx, env.sess.UserID, env.productY.ID, 1)
	require.NoError(t, err)
}

func TestCheckoutHappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fillCart(t)

	result, err := env.svc.Checkout(ctx, env.sess, uuid.New())
	require.NoError(t, err)
	require.Equal(t, 2, result.OrdersPlaced)
	require.Equal(t, 120.0, result.TotalPrice) // 2*50 + 1*20
	require.False(t, result.CartClearFailed)

	orders, err := env.repo.ListOrders(ctx, env.sess.UserID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	byProduct := map[uuid.UUID]models.Order{}
	for _, o := range orders {
		require.Equal(t, models.OrderStatusPending, o.Status)
		byProduct[o.ProductID] = o
	}
	require.Equal(t, uint(2), byProduct[env.productX.ID].Quantity)
	require.Equal(t, uint(1), byProduct[env.productY.ID].Quantity)
	require.Equal(t, 50.0, byProduct[env.productX.ID].UnitPrice)
	require.Equal(t, 20.0, byProduct[env.productY.ID].UnitPrice)

	items, err := env.repo.GetCart(ctx, env.sess.UserID)
	require.NoError(t, err)
	require.Empty(t, items)

	require.Len(t, env.pub.events, 1)
	require.Equal(t, "order_batch_placed", env.pub.events[0]["type"])
}

func TestCheckoutEmptyCartIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Checkout(ctx, env.sess, uuid.New())
	require.NoError(t, err)
	require.Equal(t, 0, result.OrdersPlaced)
	require.Equal(t, 0.0, result.TotalPrice)

	orders, err := env.repo.ListOrders(ctx, env.sess.UserID)
	require.NoError(t, err)
	require.Empty(t, orders)
	require.Empty(t, env.pub.events)
}

func TestCheckoutBatchFailurePreservesCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fillCart(t)
	env.store.failBatch = true

	_, err := env.svc.Checkout(ctx, env.sess, uuid.New())
	require.Error(t, err)
	require.True(t, errors.Is(err, apperr.ErrCheckoutFailed))

	items, err := env.repo.GetCart(ctx, env.sess.UserID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	orders, err := env.repo.ListOrders(ctx, env.sess.UserID)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestCheckoutClearFailureWarnsAndRetryIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fillCart(t)
	env.store.failClear = true

	token := uuid.New()
	result, err := env.svc.Checkout(ctx, env.sess, token)
	require.NoError(t, err)
	require.Equal(t, 2, result.OrdersPlaced)
	require.True(t, result.CartClearFailed)

	// orders landed but the cart survived the failed clear
	items, err := env.repo.GetCart(ctx, env.sess.UserID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// retry with the same token: no second batch, clear finally succeeds
	env.store.failClear = false
	retry, err := env.svc.Checkout(ctx, env.sess, token)
	require.NoError(t, err)
	require.Equal(t, 2, retry.OrdersPlaced)
	require.Equal(t, 120.0, retry.TotalPrice)
	require.False(t, retry.CartClearFailed)

	orders, err := env.repo.ListOrders(ctx, env.sess.UserID)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	items, err = env.repo.GetCart(ctx, env.sess.UserID)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestCheckoutRetryKeepsLinesAddedAfterBatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fillCart(t)
	env.store.failClear = true

	token := uuid.New()
	result, err := env.svc.Checkout(ctx, env.sess, token)
	require.NoError(t, err)
	require.True(t, result.CartClearFailed)

	// a new product lands in the cart between the failed clear and the retry
	productZ := &models.Product{Name: "Carrots", Price: 30, Quantity: 100, OwnerID: uuid.New()}
	_, err = env.repo.CreateProduct(ctx, productZ)
	require.NoError(t, err)
	_, err = env.repo.UpsertIncrement(ctx, env.sess.UserID, productZ.ID, 3)
	require.NoError(t, err)

	env.store.failClear = false
	retry, err := env.svc.Checkout(ctx, env.sess, token)
	require.NoError(t, err)
	require.Equal(t, 2, retry.OrdersPlaced)
	require.False(t, retry.CartClearFailed)

	// the replayed batch never covered the new line, so it must survive
	items, err := env.repo.GetCart(ctx, env.sess.UserID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, productZ.ID, items[0].ProductID)
	require.Equal(t, uint(3), items[0].Quantity)

	orders, err := env.repo.ListOrders(ctx, env.sess.UserID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, o := range orders {
		require.NotEqual(t, productZ.ID, o.ProductID)
	}
}

func TestCheckoutReplayTotalIgnoresPriceChanges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.fillCart(t)
	env.store.failClear = true

	token := uuid.New()
	result, err := env.svc.Checkout(ctx, env.sess, token)
	require.NoError(t, err)
	require.Equal(t, 120.0, result.TotalPrice)

	env.productX.Price = 500
	require.NoError(t, env.repo.SaveProduct(ctx, env.productX))

	env.store.failClear = false
	retry, err := env.svc.Checkout(ctx, env.sess, token)
	require.NoError(t, err)
	require.Equal(t, 120.0, retry.TotalPrice)
}

func TestCheckoutRequiresCustomer(t *testing.T) {
	env := newTestEnv(t)
	farmer := auth.Session{UserID: uuid.New(), Role: auth.RoleFarmer}

	_, err := env.svc.Checkout(context.Background(), farmer, uuid.New())
	require.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestCheckoutRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Checkout(context.Background(), env.sess, uuid.Nil)
	require.True(t, errors.Is(err, apperr.ErrInvalidInput))
}

func TestBuyNow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.BuyNow(ctx, env.sess, env.productX.ID, "   ")
	require.True(t, errors.Is(err, apperr.ErrInvalidInput))

	_, err = env.svc.BuyNow(ctx, env.sess, uuid.New(), "12 Market Lane")
	require.True(t, errors.Is(err, apperr.ErrNotFound))

	order, err := env.svc.BuyNow(ctx, env.sess, env.productX.ID, "12 Market Lane")
	require.NoError(t, err)
	require.Equal(t, uint(1), order.Quantity)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.Equal(t, "12 Market Lane", order.Address)
	require.Equal(t, 50.0, order.UnitPrice)

	orders, err := env.repo.ListOrders(ctx, env.sess.UserID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
}
