package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrStatusConflict 更新狀態時, 訂單狀態已被其他請求改變
var ErrStatusConflict = errors.New("order status changed concurrently")

// StockNotEnoughError 交易內扣庫存失敗, 整筆訂單已 rollback
type StockNotEnoughError struct {
	ProductID uuid.UUID
	Requested int
}

func (e *StockNotEnoughError) Error() string {
	return fmt.Sprintf("product %s stock not enough for quantity %d", e.ProductID, e.Requested)
}

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateOrderWithStock 同一個交易內新增訂單並扣除每個品項的庫存
// 任一品項扣庫存失敗則整筆 rollback, 回傳 *StockNotEnoughError
func (s *OrderRepo) CreateOrderWithStock(ctx context.Context, order *model.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for _, item := range order.OrderItems {
			ok, err := deductStock(tx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &StockNotEnoughError{ProductID: item.ProductID, Requested: item.Quantity}
			}
		}
		return nil
	})
}

// Read - 根據ID查詢訂單
func (s *OrderRepo) GetOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// 根據用戶分頁查詢訂單, status 為空時不過濾, 依建立時間新到舊
func (s *OrderRepo) ListOrdersByUser(ctx context.Context, userID uuid.UUID, status model.OrderStatus, page, pageSize int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	offset := (page - 1) * pageSize
	query := s.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	// 計算總數
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分頁查詢
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateOrderStatus compare-and-set, 目前狀態不是 from 時回傳 ErrStatusConflict
func (s *OrderRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (*model.Order, error) {
	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrStatusConflict
	}
	return s.GetOrderByID(ctx, id)
}
