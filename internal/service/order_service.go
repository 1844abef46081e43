package service

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/cache"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/producer"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/realtime"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/ordertracker/internal/metrics"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/RoyceAzure/lab/ordertracker/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

type IOrderService interface {
	// CreateOrder 建立訂單, 價格鎖定為下單當下的商品價格, 同交易內扣除庫存
	//
	// 錯誤:
	//   - errs.ValidationErrorCode 400: 會列出所有不合法欄位
	//   - errs.InvalidProductCode 400: 商品不存在或已下架
	//   - errs.InsufficientStockCode 400: 庫存不足, Data 為 errs.StockShortage
	//   - errs.InternalErrorCode 500
	CreateOrder(ctx context.Context, identity model.Identity, input model.CreateOrderModel) (*model.Order, error)
	// ListOrders 分頁查詢呼叫者自己的訂單, 第二個回傳值表示是否來自快取
	//
	// 錯誤:
	//   - errs.ValidationErrorCode 400: page/limit/status 不合法
	//   - errs.InternalErrorCode 500
	ListOrders(ctx context.Context, identity model.Identity, query model.OrderListQuery) (*model.OrderList, bool, error)
	// GetOrder 查詢單筆訂單
	//
	// 錯誤:
	//   - errs.ValidationErrorCode 400: id 格式錯誤
	//   - errs.NotFoundCode 404
	//   - errs.ForbiddenCode 403: 非擁有者也非管理者
	GetOrder(ctx context.Context, identity model.Identity, orderID string) (*model.Order, error)
	// UpdateOrderStatus 依狀態機變更訂單狀態, 並推播給訂單擁有者
	//
	// 錯誤:
	//   - errs.ValidationErrorCode 400: status 不是合法值
	//   - errs.NotFoundCode 404
	//   - errs.ForbiddenCode 403
	//   - errs.NoOpTransitionCode 400: 與目前狀態相同
	//   - errs.IllegalTransitionCode 400: 狀態機不允許
	//   - errs.ConflictCode 409: 同時有其他請求變更了狀態
	//   - errs.InternalErrorCode 500
	UpdateOrderStatus(ctx context.Context, identity model.Identity, orderID string, input model.UpdateOrderStatusModel) (*model.Order, error)
}

type OrderService struct {
	orderRepo   db.IOrderRepository
	productRepo db.IProductRepository
	orderCache  redis_repo.IOrderCacheRepository
	notifier    realtime.Notifier
	publisher   producer.IOrderEventPublisher
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	listGroup   singleflight.Group
}

func NewOrderService(
	orderRepo db.IOrderRepository,
	productRepo db.IProductRepository,
	orderCache redis_repo.IOrderCacheRepository,
	notifier realtime.Notifier,
	publisher producer.IOrderEventPublisher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) IOrderService {
	for name, dep := range map[string]any{
		"orderRepo":   orderRepo,
		"productRepo": productRepo,
		"orderCache":  orderCache,
		"notifier":    notifier,
		"publisher":   publisher,
		"metrics":     m,
	} {
		if dep == nil || (reflect.ValueOf(dep).Kind() == reflect.Ptr && reflect.ValueOf(dep).IsNil()) {
			panic("order service initialization failed: " + name + " cannot be nil")
		}
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		orderCache:  orderCache,
		notifier:    notifier,
		publisher:   publisher,
		metrics:     m,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, identity model.Identity, input model.CreateOrderModel) (*model.Order, error) {
	input.ShippingAddress = strings.TrimSpace(input.ShippingAddress)
	if err := util.Validate(input); err != nil {
		return nil, err
	}

	// 去除重複的商品 id, 保留請求順序
	ids := make([]uuid.UUID, 0, len(input.Items))
	seen := make(map[uuid.UUID]struct{}, len(input.Items))
	lineIDs := make([]uuid.UUID, len(input.Items))
	for i, item := range input.Items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, errs.Validation(errs.FieldError{Field: "items", Message: "Invalid product id."})
		}
		lineIDs[i] = id
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	products, err := s.productRepo.GetActiveProductsByIDs(ctx, ids)
	if err != nil {
		return nil, errs.Wrap(errs.InternalErrorCode, err, "Failed to create order.")
	}
	if len(products) != len(ids) {
		return nil, errs.New(errs.InvalidProductCode, "One or more products are invalid or inactive.")
	}
	productByID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	// 同一商品出現多次時以累計數量檢查
	requested := make(map[uuid.UUID]int, len(ids))
	items := make([]model.OrderItem, 0, len(input.Items))
	for i, line := range input.Items {
		product := productByID[lineIDs[i]]
		requested[product.ID] += line.Quantity
		if product.Stock < requested[product.ID] {
			return nil, errs.InsufficientStock(errs.StockShortage{
				ProductID: product.ID.String(),
				Name:      product.Name,
				Available: product.Stock,
				Requested: requested[product.ID],
			})
		}
		items = append(items, model.OrderItem{
			ProductID:     product.ID,
			Name:          product.Name,
			PurchasePrice: product.Price,
			Quantity:      line.Quantity,
		})
	}

	order := &model.Order{
		ID:              uuid.New(),
		UserID:          identity.UserID,
		OrderItems:      items,
		TotalAmount:     model.CalculateTotal(items),
		ShippingAddress: input.ShippingAddress,
		Status:          model.OrderStatusCreated,
	}

	if err := s.orderRepo.CreateOrderWithStock(ctx, order); err != nil {
		var stockErr *db.StockNotEnoughError
		if errors.As(err, &stockErr) {
			return nil, s.shortageAfterRace(ctx, stockErr, productByID, requested)
		}
		return nil, errs.Wrap(errs.InternalErrorCode, err, "Failed to create order.")
	}

	s.invalidateUserOrders(ctx, order.UserID)
	s.cacheOrder(ctx, order)
	s.publishEvent(ctx, model.NewOrderCreatedEvent(order))
	s.metrics.OrdersCreated.Inc()

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", order.UserID.String()).
		Str("total_amount", order.TotalAmount.String()).
		Msg("order created")
	return order, nil
}

// shortageAfterRace 檢查後到扣庫存之間被其他訂單買走, 重新讀取目前庫存回報
func (s *OrderService) shortageAfterRace(ctx context.Context, stockErr *db.StockNotEnoughError, productByID map[uuid.UUID]model.Product, requested map[uuid.UUID]int) error {
	shortage := errs.StockShortage{
		ProductID: stockErr.ProductID.String(),
		Name:      productByID[stockErr.ProductID].Name,
		Requested: requested[stockErr.ProductID],
	}
	if current, err := s.productRepo.GetProductByID(ctx, stockErr.ProductID); err == nil {
		shortage.Available = current.Stock
	}
	return errs.InsufficientStock(shortage)
}

func (s *OrderService) ListOrders(ctx context.Context, identity model.Identity, query model.OrderListQuery) (*model.OrderList, bool, error) {
	if err := util.Validate(query); err != nil {
		return nil, false, err
	}

	cached, err := s.orderCache.GetOrderList(ctx, identity.UserID, query)
	switch {
	case err == nil:
		s.metrics.ObserveCache("order_list", metrics.CacheHit)
		return cached, true, nil
	case errors.Is(err, cache.ErrCacheMiss):
		s.metrics.ObserveCache("order_list", metrics.CacheMiss)
	default:
		s.metrics.ObserveCache("order_list", metrics.CacheError)
		s.logger.Warn().Err(err).Str("user_id", identity.UserID.String()).Msg("order list cache read failed")
	}

	// 同一組查詢同時 miss 時只查一次 DB
	// 共用的查詢不跟隨第一個呼叫者取消
	key := identity.UserID.String() + "|" + redis_repo.ListFieldKey(query)
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.listGroup.Do(key, func() (any, error) {
		ctx := flightCtx
		orders, total, err := s.orderRepo.ListOrdersByUser(ctx, identity.UserID, model.OrderStatus(query.Status), query.Page, query.Limit)
		if err != nil {
			return nil, err
		}
		if orders == nil {
			orders = []model.Order{}
		}
		list := &model.OrderList{
			Orders:     orders,
			Pagination: model.NewPagination(total, query.Page, query.Limit),
		}
		if err := s.orderCache.SetOrderList(ctx, identity.UserID, query, list); err != nil {
			s.logger.Warn().Err(err).Str("user_id", identity.UserID.String()).Msg("order list cache write failed")
		}
		return list, nil
	})
	if err != nil {
		return nil, false, errs.Wrap(errs.InternalErrorCode, err, "Failed to fetch orders.")
	}
	return v.(*model.OrderList), false, nil
}

func (s *OrderService) GetOrder(ctx context.Context, identity model.Identity, orderID string) (*model.Order, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.orderCache.GetOrder(ctx, id)
	switch {
	case err == nil:
		s.metrics.ObserveCache("order", metrics.CacheHit)
	case errors.Is(err, cache.ErrCacheMiss):
		s.metrics.ObserveCache("order", metrics.CacheMiss)
	default:
		s.metrics.ObserveCache("order", metrics.CacheError)
		s.logger.Warn().Err(err).Str("order_id", orderID).Msg("order cache read failed")
	}

	if order == nil {
		order, err = s.loadOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		s.cacheOrder(ctx, order)
	}

	if !identity.CanAccess(order.UserID) {
		return nil, errs.New(errs.ForbiddenCode, "You are not authorized to access this order.")
	}
	return order, nil
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, identity model.Identity, orderID string, input model.UpdateOrderStatusModel) (*model.Order, error) {
	input.Status = strings.TrimSpace(input.Status)
	if err := util.Validate(input); err != nil {
		return nil, err
	}
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}
	next := model.OrderStatus(input.Status)

	// 狀態判斷一律以 DB 為準, 不讀快取
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !identity.CanAccess(order.UserID) {
		return nil, errs.New(errs.ForbiddenCode, "You are not authorized to access this order.")
	}

	previous := order.Status
	if err := model.ValidateTransition(previous, next); err != nil {
		return nil, err
	}

	updated, err := s.orderRepo.UpdateOrderStatus(ctx, id, previous, next)
	if err != nil {
		if errors.Is(err, db.ErrStatusConflict) {
			return nil, errs.Wrap(errs.ConflictCode, err, "Order status changed concurrently. Please retry.")
		}
		return nil, errs.Wrap(errs.InternalErrorCode, err, "Failed to update order status.")
	}

	s.invalidateUserOrders(ctx, updated.UserID)
	s.cacheOrder(ctx, updated)
	s.notifyOwner(ctx, updated)
	s.publishEvent(ctx, model.NewOrderStatusChangedEvent(updated, previous))
	s.metrics.StatusTransitions.WithLabelValues(string(previous), string(next)).Inc()

	s.logger.Info().
		Str("order_id", updated.ID.String()).
		Str("from", string(previous)).
		Str("to", string(next)).
		Str("by", identity.UserID.String()).
		Msg("order status updated")
	return updated, nil
}

func parseOrderID(orderID string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(orderID))
	if err != nil {
		return uuid.Nil, errs.Validation(errs.FieldError{Field: "id", Message: "Invalid order ID."})
	}
	return id, nil
}

func (s *OrderService) loadOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Wrap(errs.NotFoundCode, err, "Order not found.")
		}
		return nil, errs.Wrap(errs.InternalErrorCode, err, "Failed to fetch order.")
	}
	return order, nil
}

// 以下快取 / 推播 / 事件失敗都只記錄, 不影響主流程

func (s *OrderService) invalidateUserOrders(ctx context.Context, userID uuid.UUID) {
	if err := s.orderCache.InvalidateUserOrders(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("order list cache invalidation failed")
	}
}

func (s *OrderService) cacheOrder(ctx context.Context, order *model.Order) {
	if err := s.orderCache.SetOrder(ctx, order); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("order cache write failed")
	}
}

// notifyOwner notifier 只放進 buffer / queue, 不會 block 請求
func (s *OrderService) notifyOwner(ctx context.Context, order *model.Order) {
	event := model.OrderUpdatedEvent{
		UserID:    order.UserID.String(),
		OrderID:   order.ID.String(),
		Status:    order.Status,
		UpdatedAt: order.UpdatedAt,
	}
	if err := s.notifier.PublishToUser(ctx, event.UserID, event); err != nil {
		s.logger.Warn().Err(err).Str("order_id", event.OrderID).Msg("realtime notification failed")
	}
}

func (s *OrderService) publishEvent(ctx context.Context, event model.OrderEvent) {
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("order_id", event.OrderID).Str("type", string(event.Type)).Msg("order event publish failed")
	}
}
