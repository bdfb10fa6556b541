package handlers

import (
	"net/http"

	"shopcart-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FeeHandler manages the fee reference table named surcharges are loaded
// from.
type FeeHandler struct {
	DB *gorm.DB
}

func (h *FeeHandler) GetFees(c *gin.Context) {
	var fees []models.Fee
	if err := h.DB.Order("name").Find(&fees).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch fees"})
		return
	}
	c.JSON(http.StatusOK, fees)
}

func (h *FeeHandler) CreateFee(c *gin.Context) {
	var req struct {
		Name    string   `json:"name" binding:"required"`
		Type    string   `json:"type" binding:"required"`
		Value   float64  `json:"value"`
		Taxable bool     `json:"taxable"`
		TaxRate *float64 `json:"tax_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fee := models.Fee{
		Name:    req.Name,
		Type:    req.Type,
		Value:   req.Value,
		Taxable: req.Taxable,
		TaxRate: req.TaxRate,
	}

	// Reject rows the pricing engine would refuse to apply later.
	if _, err := fee.ToCartFee(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.DB.Create(&fee).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Fee name already exists"})
		return
	}

	c.JSON(http.StatusCreated, fee)
}

func (h *FeeHandler) DeleteFee(c *gin.Context) {
	result := h.DB.Where("name = ?", c.Param("name")).Delete(&models.Fee{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete fee"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Fee not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fee deleted"})
}
