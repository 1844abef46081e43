package util

import (
	"errors"
	"testing"

	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func fieldNames(fields []errs.FieldError) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	return names
}

func TestValidateCreateOrderEnumeratesEveryField(t *testing.T) {
	input := model.CreateOrderModel{
		Items: []model.CreateOrderItemModel{
			{ProductID: "not-a-uuid", Quantity: 1},
			{ProductID: "3f1c1f3e-3b4a-4d36-9d2a-6a3b0c8f4e11", Quantity: 0},
		},
		ShippingAddress: "short",
	}

	fields := ValidateStruct(input)

	require.ElementsMatch(t, []string{"items[0].productId", "items[1].quantity", "shippingAddress"}, fieldNames(fields))
	for _, f := range fields {
		switch f.Field {
		case "items[1].quantity":
			require.Equal(t, "quantity must be greater than or equal to 1", f.Message)
		case "shippingAddress":
			require.Equal(t, "shippingAddress length must be at least 10 characters long", f.Message)
		}
	}
}

func TestValidateCreateOrderEmptyItems(t *testing.T) {
	err := Validate(model.CreateOrderModel{Items: []model.CreateOrderItemModel{}, ShippingAddress: "12 Long Street, Springfield"})

	appErr, ok := errs.As(err)
	require.True(t, ok)
	require.True(t, errors.Is(err, errs.ValidationError))
	require.Equal(t, "Validation error occurred.", appErr.Message)
	require.Equal(t, []errs.FieldError{{Field: "items", Message: "At least one order item is required."}}, appErr.Fields)
}

func TestValidateOrderListQuery(t *testing.T) {
	require.Nil(t, ValidateStruct(model.OrderListQuery{Page: 1, Limit: 10}))
	require.Nil(t, ValidateStruct(model.OrderListQuery{Page: 3, Limit: 100, Status: "delivered"}))

	fields := ValidateStruct(model.OrderListQuery{Page: 0, Limit: 101, Status: "lost"})
	require.ElementsMatch(t, []string{"page", "limit", "status"}, fieldNames(fields))
}

func TestValidateUpdateStatus(t *testing.T) {
	fields := ValidateStruct(model.UpdateOrderStatusModel{Status: "shipped"})
	require.Equal(t, []errs.FieldError{{Field: "status", Message: "Status must be one of: created, dispatched, delivered, cancelled."}}, fields)

	fields = ValidateStruct(model.UpdateOrderStatusModel{})
	require.Equal(t, []errs.FieldError{{Field: "status", Message: "Status is required."}}, fields)
}

func TestValidateRegister(t *testing.T) {
	fields := ValidateStruct(model.RegisterUserModel{
		UserName: "ab",
		FullName: "Jo",
		Email:    "not-an-email",
		Password: "weak",
	})
	require.ElementsMatch(t, []string{"userName", "fullName", "email", "password"}, fieldNames(fields))

	require.Nil(t, ValidateStruct(model.RegisterUserModel{
		UserName: "jdoe",
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Password: "Secr3t!pass",
	}))
}

func TestValidateProductPrice(t *testing.T) {
	fields := ValidateStruct(model.CreateProductModel{
		Name:        "Keyboard",
		Description: "Mechanical keyboard",
		Price:       decimal.NewFromInt(-1),
		Stock:       -2,
	})
	require.ElementsMatch(t, []string{"price", "stock"}, fieldNames(fields))
}

func TestIsStrongPassword(t *testing.T) {
	require.True(t, IsStrongPassword("Abcd1!"))
	require.False(t, IsStrongPassword("abcd1!"))
	require.False(t, IsStrongPassword("ABCD1!"))
	require.False(t, IsStrongPassword("Abcdef!"))
	require.False(t, IsStrongPassword("Abcd12"))
	require.False(t, IsStrongPassword("Ab1!"))
	require.False(t, IsStrongPassword("Abcd1! with space"))
}
