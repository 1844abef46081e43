package db

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestProductRepo_ActiveLookups(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepo(newTestDbDao(t))

	active := &model.Product{Name: "Keyboard", Description: "Mechanical", Price: decimal.RequireFromString("49.90"), Stock: 3, IsActive: true}
	inactive := &model.Product{Name: "Mouse", Description: "Wired", Price: decimal.RequireFromString("9.90"), Stock: 3, IsActive: false}
	require.NoError(t, repo.CreateProduct(ctx, active))
	require.NoError(t, repo.CreateProduct(ctx, inactive))

	products, err := repo.GetActiveProductsByIDs(ctx, []uuid.UUID{active.ID, inactive.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, active.ID, products[0].ID)
	require.True(t, decimal.RequireFromString("49.90").Equal(products[0].Price))

	listed, err := repo.ListActiveProducts(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	empty, err := repo.GetActiveProductsByIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestDeductStock(t *testing.T) {
	ctx := context.Background()
	dao := newTestDbDao(t)
	repo := NewProductRepo(dao)
	p := &model.Product{Name: "Cable", Description: "USB-C", Price: decimal.NewFromInt(5), Stock: 2, IsActive: true}
	require.NoError(t, repo.CreateProduct(ctx, p))

	ok, err := deductStock(dao.WithContext(ctx), p.ID, 3)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = deductStock(dao.WithContext(ctx), p.ID, 2)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Stock)
}
