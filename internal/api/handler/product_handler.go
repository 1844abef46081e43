package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/ordertracker/internal/api/dto"
	"github.com/RoyceAzure/lab/ordertracker/internal/api/response"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/RoyceAzure/lab/ordertracker/internal/service"
)

type ProductHandler struct {
	productService service.IProductService
}

func NewProductHandler(productService service.IProductService) *ProductHandler {
	if productService == nil {
		panic("productService cannot be nil")
	}
	return &ProductHandler{
		productService: productService,
	}
}

// ListProducts GET /api/products
func (p *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := p.productService.ListActiveProducts(r.Context())
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	res := make([]dto.ProductDTO, 0, len(products))
	for i := range products {
		res = append(res, convertProductToDTO(&products[i]))
	}
	response.SuccessJSON(w, r, http.StatusOK, "Products fetched successfully.", res)
}

// CreateProduct POST /api/admin/products
func (p *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var productDTO dto.CreateProductDTO
	if err := decodeBody(r, &productDTO); err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	product, err := p.productService.CreateProduct(r.Context(), model.CreateProductModel{
		Name:        productDTO.Name,
		Description: productDTO.Description,
		Price:       productDTO.Price,
		Stock:       productDTO.Stock,
		IsActive:    productDTO.IsActive,
	})
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	response.SuccessJSON(w, r, http.StatusCreated, "Product created successfully.", convertProductToDTO(product))
}
