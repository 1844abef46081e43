package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/RoyceAzure/lab/ordertracker/internal/api/dto"
	"github.com/RoyceAzure/lab/ordertracker/internal/api/response"
	"github.com/RoyceAzure/lab/ordertracker/internal/constants"
	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/RoyceAzure/lab/ordertracker/internal/service"
	"github.com/RoyceAzure/lab/ordertracker/internal/util"
	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orderService service.IOrderService
}

func NewOrderHandler(orderService service.IOrderService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{
		orderService: orderService,
	}
}

// CreateOrder POST /api/user/orders
// 201 dto.OrderDTO; 400 驗證/商品無效/庫存不足; 401
func (o *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromRequest(r)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	var orderDTO dto.CreateOrderDTO
	if err := decodeBody(r, &orderDTO); err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	input := model.CreateOrderModel{ShippingAddress: orderDTO.ShippingAddress}
	if orderDTO.Items != nil {
		input.Items = make([]model.CreateOrderItemModel, 0, len(orderDTO.Items))
		for _, item := range orderDTO.Items {
			input.Items = append(input.Items, model.CreateOrderItemModel{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}
	}

	order, err := o.orderService.CreateOrder(r.Context(), identity, input)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	response.SuccessJSON(w, r, http.StatusCreated, "Order created successfully.", convertOrderToDTO(order))
}

// ListOrders GET /api/user/orders?page=&limit=&status=
func (o *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromRequest(r)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	query, err := parseOrderListQuery(r)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	list, fromCache, err := o.orderService.ListOrders(r.Context(), identity, query)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	message := "Orders fetched successfully."
	if fromCache {
		message = "Orders fetched successfully (from cache)."
	}
	response.SuccessJSON(w, r, http.StatusOK, message, convertOrderListToDTO(list))
}

// GetOrder GET /api/user/orders/{id}
func (o *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromRequest(r)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	order, err := o.orderService.GetOrder(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	response.SuccessJSON(w, r, http.StatusOK, "Order fetched successfully.", convertOrderToDTO(order))
}

// UpdateOrderStatus PATCH /api/user/orders/{id}/status
// 400 NoOp/非法轉換; 403 非擁有者; 404; 409 並行更新
func (o *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromRequest(r)
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	var statusDTO dto.UpdateOrderStatusDTO
	if err := decodeBody(r, &statusDTO); err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	order, err := o.orderService.UpdateOrderStatus(r.Context(), identity, chi.URLParam(r, "id"), model.UpdateOrderStatusModel{
		Status: statusDTO.Status,
	})
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	response.SuccessJSON(w, r, http.StatusOK, "Order status updated successfully.", convertOrderToDTO(order))
}

// parseOrderListQuery 未帶 page/limit 時使用預設值, 格式錯誤與範圍錯誤一併回報
func parseOrderListQuery(r *http.Request) (model.OrderListQuery, error) {
	values := r.URL.Query()
	query := model.OrderListQuery{
		Page:   constants.DefaultPaging,
		Limit:  constants.DefaultPagingSize,
		Status: strings.TrimSpace(values.Get("status")),
	}

	var fields []errs.FieldError
	parseInt := func(name string, dst *int) {
		raw := strings.TrimSpace(values.Get(name))
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields = append(fields, errs.FieldError{Field: name, Message: fmt.Sprintf("%s must be a number", name)})
			return
		}
		*dst = n
	}
	parseInt("page", &query.Page)
	parseInt("limit", &query.Limit)

	// 無法解析的欄位保留預設值, 不會重複回報
	fields = append(fields, util.ValidateStruct(query)...)
	if len(fields) > 0 {
		return query, errs.Validation(fields...)
	}
	return query, nil
}
