package service

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestProductService(t *testing.T) {
	ctx := context.Background()
	svc := NewProductService(db.NewProductRepo(newTestDbDao(t)))

	empty, err := svc.ListActiveProducts(ctx)
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	created, err := svc.CreateProduct(ctx, model.CreateProductModel{
		Name:        " Keyboard ",
		Description: "Mechanical keyboard",
		Price:       decimal.RequireFromString("49.90"),
		Stock:       5,
	})
	require.NoError(t, err)
	require.Equal(t, "Keyboard", created.Name)
	require.True(t, created.IsActive)

	inactive := false
	_, err = svc.CreateProduct(ctx, model.CreateProductModel{
		Name:        "Mouse",
		Description: "Wired mouse",
		Price:       decimal.NewFromInt(10),
		Stock:       1,
		IsActive:    &inactive,
	})
	require.NoError(t, err)

	products, err := svc.ListActiveProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, created.ID, products[0].ID)
}

func TestProductServiceValidation(t *testing.T) {
	svc := NewProductService(db.NewProductRepo(newTestDbDao(t)))

	_, err := svc.CreateProduct(context.Background(), model.CreateProductModel{
		Price: decimal.NewFromInt(-5),
		Stock: -1,
	})

	appErr, ok := errs.As(err)
	require.True(t, ok)
	require.Equal(t, errs.ValidationErrorCode, appErr.Code)
	require.Equal(t, "Multiple validation errors occurred.", appErr.Message)
	require.Len(t, appErr.Fields, 4)
}
