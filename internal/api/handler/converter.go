package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/ordertracker/internal/api/dto"
	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/RoyceAzure/lab/ordertracker/internal/util"
	"github.com/go-chi/render"
)

// decodeBody body 不是合法 json 時回傳 ValidationError
func decodeBody(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return errs.Validation(errs.FieldError{Field: "body", Message: "Invalid request body."})
	}
	return nil
}

// identityFromRequest 只會在未掛 AuthMiddleware 的路由發生
func identityFromRequest(r *http.Request) (model.Identity, error) {
	identity, ok := util.GetIdentityFromContext(r.Context())
	if !ok {
		return model.Identity{}, errs.New(errs.UnauthorizedCode, "Invalid or expired token.")
	}
	return identity, nil
}

func convertOrderToDTO(order *model.Order) dto.OrderDTO {
	items := make([]dto.OrderItemDTO, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		items = append(items, dto.OrderItemDTO{
			ProductID:     item.ProductID.String(),
			Name:          item.Name,
			PurchasePrice: item.PurchasePrice,
			Quantity:      item.Quantity,
		})
	}
	return dto.OrderDTO{
		ID:              order.ID.String(),
		UserID:          order.UserID.String(),
		OrderItems:      items,
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		Status:          string(order.Status),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func convertOrderListToDTO(list *model.OrderList) dto.OrderListResponse {
	orders := make([]dto.OrderDTO, 0, len(list.Orders))
	for i := range list.Orders {
		orders = append(orders, convertOrderToDTO(&list.Orders[i]))
	}
	return dto.OrderListResponse{
		Orders: orders,
		Pagination: dto.PaginationDTO{
			Total:      list.Pagination.Total,
			Page:       list.Pagination.Page,
			Limit:      list.Pagination.Limit,
			TotalPages: list.Pagination.TotalPages,
		},
	}
}

func convertProductToDTO(product *model.Product) dto.ProductDTO {
	return dto.ProductDTO{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
