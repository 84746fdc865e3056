package controller

import (
	"errors"
	"net/http"

	"github.com/foodmarket/provision-backend/internal/app/service"
	apperrors "github.com/foodmarket/provision-backend/internal/errors"
	"github.com/foodmarket/provision-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type ProductRequest struct {
	Name     string `json:"name" binding:"required"`
	Price    int    `json:"price" binding:"gte=0"`
	Barcode  string `json:"barcode" binding:"required"`
	Category string `json:"category"`
}

func (r ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:     r.Name,
		Price:    r.Price,
		Barcode:  r.Barcode,
		Category: r.Category,
	}
}

// GetAllProducts returns all products
// GET /api/v1/products
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.productService.ListProducts(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch products", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProductByID returns a product by ID
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	product, err := ctrl.productService.GetProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.respondError(c, err, "get product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct registers a product (Admin only)
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BindError(c, err)
		return
	}

	product, err := ctrl.productService.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		ctrl.respondError(c, err, "create product")
		return
	}

	log.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct edits a product (Admin only)
// PUT /api/v1/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BindError(c, err)
		return
	}

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		ctrl.respondError(c, err, "update product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct removes a product (Admin only)
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	if err := ctrl.productService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		ctrl.respondError(c, err, "delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func (ctrl *ProductController) respondError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "물품을 찾을 수 없습니다")
	case errors.Is(err, service.ErrBarcodeExists):
		apperrors.Conflict(c, apperrors.ProductBarcodeExists, "이미 등록된 바코드입니다")
	case errors.Is(err, service.ErrBarcodeRequired),
		errors.Is(err, service.ErrProductNameNeeded),
		errors.Is(err, service.ErrInvalidPrice):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
	default:
		middleware.GetLoggerFromContext(c).Error("Product request failed", err, map[string]interface{}{
			"context": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}
