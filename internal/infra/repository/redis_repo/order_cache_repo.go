package redis_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/ordertracker/internal/infra/cache"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/google/uuid"
)

type IOrderCacheRepository interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	SetOrder(ctx context.Context, order *model.Order) error
	GetOrderList(ctx context.Context, userID uuid.UUID, query model.OrderListQuery) (*model.OrderList, error)
	SetOrderList(ctx context.Context, userID uuid.UUID, query model.OrderListQuery, list *model.OrderList) error
	InvalidateUserOrders(ctx context.Context, userID uuid.UUID) error
}

/*
order:<orderId>        -> 單筆訂單 json
userOrders:<userId>    -> hash, field 為查詢條件, 整個 hash 共用 TTL
刪除 userOrders:<userId> 即清除該用戶所有分頁快取
找不到時回傳 cache.ErrCacheMiss
*/
type OrderCacheRepo struct {
	orderCache     cache.Cache
	userOrderCache cache.Cache
	ttl            time.Duration
}

func NewOrderCacheRepo(orderCache, userOrderCache cache.Cache, ttl time.Duration) *OrderCacheRepo {
	if orderCache == nil || userOrderCache == nil {
		panic("NewOrderCacheRepo: cache cannot be nil")
	}
	return &OrderCacheRepo{
		orderCache:     orderCache,
		userOrderCache: userOrderCache,
		ttl:            ttl,
	}
}

var _ IOrderCacheRepository = (*OrderCacheRepo)(nil)

// ListFieldKey 查詢條件的 hash field
func ListFieldKey(query model.OrderListQuery) string {
	return fmt.Sprintf("page=%d&limit=%d&status=%s", query.Page, query.Limit, query.Status)
}

func (r *OrderCacheRepo) GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	raw, err := r.orderCache.Get(ctx, orderID.String())
	if err != nil {
		return nil, err
	}
	var order model.Order
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return nil, fmt.Errorf("decode cached order %s: %w", orderID, err)
	}
	return &order, nil
}

func (r *OrderCacheRepo) SetOrder(ctx context.Context, order *model.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return r.orderCache.Set(ctx, order.ID.String(), data, r.ttl)
}

func (r *OrderCacheRepo) GetOrderList(ctx context.Context, userID uuid.UUID, query model.OrderListQuery) (*model.OrderList, error) {
	raw, err := r.userOrderCache.HGet(ctx, userID.String(), ListFieldKey(query))
	if err != nil {
		return nil, err
	}
	var list model.OrderList
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode cached order list of %s: %w", userID, err)
	}
	return &list, nil
}

func (r *OrderCacheRepo) SetOrderList(ctx context.Context, userID uuid.UUID, query model.OrderListQuery, list *model.OrderList) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return r.userOrderCache.HSetWithTTL(ctx, userID.String(), ListFieldKey(query), data, r.ttl)
}

func (r *OrderCacheRepo) InvalidateUserOrders(ctx context.Context, userID uuid.UUID) error {
	return r.userOrderCache.Delete(ctx, userID.String())
}
