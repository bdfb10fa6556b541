package handlers

import (
	"net/http"
	"time"

	"shopcart-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CouponHandler manages the coupon reference table redeemable codes are
// loaded from.
type CouponHandler struct {
	DB *gorm.DB
}

func (h *CouponHandler) GetCoupons(c *gin.Context) {
	var coupons []models.Coupon
	if err := h.DB.Order("code").Find(&coupons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupons"})
		return
	}
	c.JSON(http.StatusOK, coupons)
}

func (h *CouponHandler) GetCoupon(c *gin.Context) {
	var coupon models.Coupon
	if err := h.DB.First(&coupon, "code = ?", c.Param("code")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
		return
	}
	c.JSON(http.StatusOK, coupon)
}

type couponRequest struct {
	Code         string     `json:"code" binding:"required"`
	Type         string     `json:"type" binding:"required"`
	Value        float64    `json:"value"`
	MinimumSpend float64    `json:"minimum_spend"`
	MaximumSpend float64    `json:"maximum_spend"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	UseLimit     int        `json:"use_limit"`
	MultipleUse  bool       `json:"multiple_use"`
	Status       *bool      `json:"status"`
	Options      string     `json:"options"`
}

func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := true
	if req.Status != nil {
		status = *req.Status
	}
	options := req.Options
	if options == "" {
		options = "{}"
	}

	coupon := models.Coupon{
		Code:         req.Code,
		Type:         req.Type,
		Value:        req.Value,
		MinimumSpend: req.MinimumSpend,
		MaximumSpend: req.MaximumSpend,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		UseLimit:     req.UseLimit,
		MultipleUse:  req.MultipleUse,
		Status:       status,
		Options:      options,
	}

	// Reject rows the pricing engine would refuse to apply later.
	if _, err := coupon.ToCartCoupon(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.DB.Create(&coupon).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Coupon code already exists"})
		return
	}

	c.JSON(http.StatusCreated, coupon)
}

func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	var coupon models.Coupon
	if err := h.DB.First(&coupon, "code = ?", c.Param("code")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
		return
	}

	var req struct {
		Value        *float64   `json:"value"`
		MinimumSpend *float64   `json:"minimum_spend"`
		MaximumSpend *float64   `json:"maximum_spend"`
		StartDate    *time.Time `json:"start_date"`
		EndDate      *time.Time `json:"end_date"`
		UseLimit     *int       `json:"use_limit"`
		MultipleUse  *bool      `json:"multiple_use"`
		Status       *bool      `json:"status"`
		Options      *string    `json:"options"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Value != nil {
		coupon.Value = *req.Value
	}
	if req.MinimumSpend != nil {
		coupon.MinimumSpend = *req.MinimumSpend
	}
	if req.MaximumSpend != nil {
		coupon.MaximumSpend = *req.MaximumSpend
	}
	if req.StartDate != nil {
		coupon.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		coupon.EndDate = req.EndDate
	}
	if req.UseLimit != nil {
		coupon.UseLimit = *req.UseLimit
	}
	if req.MultipleUse != nil {
		coupon.MultipleUse = *req.MultipleUse
	}
	if req.Status != nil {
		coupon.Status = *req.Status
	}
	if req.Options != nil {
		coupon.Options = *req.Options
	}

	if _, err := coupon.ToCartCoupon(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.DB.Save(&coupon).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update coupon"})
		return
	}

	c.JSON(http.StatusOK, coupon)
}

func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	result := h.DB.Where("code = ?", c.Param("code")).Delete(&models.Coupon{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete coupon"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted"})
}
