package handlers

import (
	"net/http"

	"shopcart-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB *gorm.DB
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	var products []models.Product

	query := h.DB.Model(&models.Product{})
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	if err := query.Order("name").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	var product models.Product
	if err := h.DB.First(&product, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req struct {
		Name         string  `json:"name" binding:"required"`
		Price        float64 `json:"price" binding:"required"`
		ComparePrice float64 `json:"compare_price"`
		Taxable      *bool   `json:"taxable"`
		TaxRate      float64 `json:"tax_rate"`
		Stock        int     `json:"stock"`
		Description  string  `json:"description"`
		Brand        string  `json:"brand"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	taxable := true
	if req.Taxable != nil {
		taxable = *req.Taxable
	}

	product := models.Product{
		Name:         req.Name,
		Price:        req.Price,
		ComparePrice: req.ComparePrice,
		Taxable:      taxable,
		TaxRate:      req.TaxRate,
		Stock:        req.Stock,
		Description:  req.Description,
		Brand:        req.Brand,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var product models.Product
	if err := h.DB.First(&product, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req struct {
		Name         *string  `json:"name"`
		Price        *float64 `json:"price"`
		ComparePrice *float64 `json:"compare_price"`
		Taxable      *bool    `json:"taxable"`
		TaxRate      *float64 `json:"tax_rate"`
		Stock        *int     `json:"stock"`
		Description  *string  `json:"description"`
		Brand        *string  `json:"brand"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.ComparePrice != nil {
		product.ComparePrice = *req.ComparePrice
	}
	if req.Taxable != nil {
		product.Taxable = *req.Taxable
	}
	if req.TaxRate != nil {
		product.TaxRate = *req.TaxRate
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}

	if err := h.DB.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	result := h.DB.Delete(&models.Product{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
