package redis_repo

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/ordertracker/internal/constants"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/cache"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*OrderCacheRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := cache.NewRedisClient(mr.Addr())
	t.Cleanup(func() { _ = client.Close() })
	return NewOrderCacheRepo(
		cache.NewRedisCache(client, constants.OrderCachePrefix),
		cache.NewRedisCache(client, constants.UserOrdersCachePrefix),
		time.Hour,
	), mr
}

func sampleOrder(userID uuid.UUID) *model.Order {
	items := []model.OrderItem{{ProductID: uuid.New(), Name: "P1", PurchasePrice: decimal.NewFromInt(500), Quantity: 2}}
	return &model.Order{
		ID:              uuid.New(),
		UserID:          userID,
		OrderItems:      items,
		TotalAmount:     model.CalculateTotal(items),
		ShippingAddress: "221B Baker Street, London",
		Status:          model.OrderStatusCreated,
	}
}

func TestOrderCacheRepo_Order(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()
	order := sampleOrder(uuid.New())

	_, err := repo.GetOrder(ctx, order.ID)
	require.ErrorIs(t, err, cache.ErrCacheMiss)

	require.NoError(t, repo.SetOrder(ctx, order))
	require.True(t, mr.Exists("order:"+order.ID.String()))
	require.Equal(t, time.Hour, mr.TTL("order:"+order.ID.String()))

	got, err := repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, got.ID)
	require.Equal(t, model.OrderStatusCreated, got.Status)
	require.True(t, order.TotalAmount.Equal(got.TotalAmount))
}

func TestOrderCacheRepo_ListKeyedByQuery(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	page1 := model.OrderListQuery{Page: 1, Limit: 10}
	page2 := model.OrderListQuery{Page: 2, Limit: 10}
	list := &model.OrderList{
		Orders:     []model.Order{*sampleOrder(userID)},
		Pagination: model.NewPagination(11, 1, 10),
	}

	require.NoError(t, repo.SetOrderList(ctx, userID, page1, list))

	got, err := repo.GetOrderList(ctx, userID, page1)
	require.NoError(t, err)
	require.Equal(t, 2, got.Pagination.TotalPages)
	require.Len(t, got.Orders, 1)

	// 不同的查詢條件不可命中同一份快取
	_, err = repo.GetOrderList(ctx, userID, page2)
	require.ErrorIs(t, err, cache.ErrCacheMiss)
	_, err = repo.GetOrderList(ctx, userID, model.OrderListQuery{Page: 1, Limit: 10, Status: "created"})
	require.ErrorIs(t, err, cache.ErrCacheMiss)

	require.NoError(t, repo.InvalidateUserOrders(ctx, userID))
	require.False(t, mr.Exists("userOrders:"+userID.String()))
	_, err = repo.GetOrderList(ctx, userID, page1)
	require.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestListFieldKey(t *testing.T) {
	require.Equal(t, "page=2&limit=5&status=delivered", ListFieldKey(model.OrderListQuery{Page: 2, Limit: 5, Status: "delivered"}))
	require.Equal(t, "page=1&limit=10&status=", ListFieldKey(model.OrderListQuery{Page: 1, Limit: 10}))
}
