package service

import (
	"context"
	"reflect"
	"strings"

	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/RoyceAzure/lab/ordertracker/internal/util"
)

type IProductService interface {
	ListActiveProducts(ctx context.Context) ([]model.Product, error)
	// CreateProduct 管理者新增商品, isActive 未指定時為上架
	//
	// 錯誤:
	//   - errs.ValidationErrorCode 400
	//   - errs.InternalErrorCode 500
	CreateProduct(ctx context.Context, input model.CreateProductModel) (*model.Product, error)
}

type ProductService struct {
	productRepo db.IProductRepository
}

func NewProductService(productRepo db.IProductRepository) IProductService {
	if productRepo == nil || reflect.ValueOf(productRepo).IsNil() {
		panic("product service initialization failed: productRepo cannot be nil")
	}
	return &ProductService{productRepo: productRepo}
}

func (p *ProductService) ListActiveProducts(ctx context.Context) ([]model.Product, error) {
	products, err := p.productRepo.ListActiveProducts(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.InternalErrorCode, err, "Failed to fetch products.")
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

func (p *ProductService) CreateProduct(ctx context.Context, input model.CreateProductModel) (*model.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if err := util.Validate(input); err != nil {
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	product := &model.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		IsActive:    isActive,
	}
	if err := p.productRepo.CreateProduct(ctx, product); err != nil {
		return nil, errs.Wrap(errs.InternalErrorCode, err, "Failed to create product.")
	}
	return product, nil
}
