package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"shopcart-backend/cart"
	"shopcart-backend/middleware"
	"shopcart-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CartHandler struct {
	DB       *gorm.DB
	Config   *cart.Config
	Sessions cart.SessionStore
	Repo     cart.StoredCartRepository
	Resolver cart.ModelResolver
	Events   cart.Dispatcher
}

// cart builds the request-scoped cart: the shared session store namespaced
// by the shopper's session, on the instance selected by the query string.
func (h *CartHandler) cart(c *gin.Context) *cart.Cart {
	session := cart.Namespaced(h.Sessions, middleware.SessionID(c))
	ct := cart.New(h.Config, session, h.Events).
		SetRepository(h.Repo).
		SetResolver(h.Resolver)
	if instance := c.Query("instance"); instance != "" {
		ct.Instance(instance)
	}
	return ct
}

// statusFor maps the pricing engine's typed errors onto HTTP statuses.
func statusFor(err error) int {
	var (
		validation *cart.ValidationError
		coupon     *cart.CouponError
		unknownRow *cart.UnknownRowError
		unknownMdl *cart.UnknownModelError
		metric     *cart.UnknownMetricError
		config     *cart.ConfigError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &metric):
		return http.StatusBadRequest
	case errors.As(err, &unknownRow), errors.As(err, &unknownMdl):
		return http.StatusNotFound
	case errors.As(err, &coupon):
		return http.StatusUnprocessableEntity
	case errors.As(err, &config):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func abortCartError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

type itemResponse struct {
	RowID        string       `json:"rowId"`
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Qty          float64      `json:"qty"`
	Options      cart.Options `json:"options,omitempty"`
	UnitPrice    float64      `json:"unit_price"`
	Price        float64      `json:"price"`
	PriceTax     float64      `json:"price_tax"`
	ComparePrice float64      `json:"compare_price"`
	Subtotal     float64      `json:"subtotal"`
	Total        float64      `json:"total"`
	Tax          float64      `json:"tax"`
	TaxTotal     float64      `json:"tax_total"`
	LineDiscount float64      `json:"line_discount"`
	IsSaved      bool         `json:"is_saved"`
	Formatted    string       `json:"formatted_total"`
}

func itemPayload(item *cart.CartItem) itemResponse {
	return itemResponse{
		RowID:        item.RowID,
		ID:           item.ID,
		Name:         item.Name,
		Qty:          item.Qty,
		Options:      item.Options,
		UnitPrice:    item.UnitPrice(),
		Price:        item.Price(true),
		PriceTax:     item.PriceTax(true),
		ComparePrice: item.ComparePriceValue(),
		Subtotal:     item.Subtotal(true),
		Total:        item.Total(true),
		Tax:          item.Tax(true),
		TaxTotal:     item.TaxTotal(true),
		LineDiscount: item.LineDiscount(),
		IsSaved:      item.IsSaved,
		Formatted:    item.Format(item.Total(true)),
	}
}

func cartPayload(ct *cart.Cart) gin.H {
	items := ct.Content()
	payload := make([]itemResponse, 0, len(items))
	for _, item := range items {
		payload = append(payload, itemPayload(item))
	}

	return gin.H{
		"instance":        ct.CurrentInstance(),
		"items":           payload,
		"count":           ct.Count(),
		"subtotal":        ct.Subtotal(),
		"tax":             ct.Tax(),
		"cart_discount":   ct.CartDiscount(),
		"cart_fees":       ct.CartFees(),
		"savings":         ct.Savings(),
		"compare_price":   ct.ComparePrice(),
		"total":           ct.Total(),
		"formatted_total": ct.Format(ct.Total()),
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, cartPayload(h.cart(c)))
}

// priceField accepts a price either as a JSON number or as a formatted
// string ("$1,311.82"); strings are parsed with the cart's format config.
type priceField struct {
	amount   float64
	raw      string
	isString bool
}

func (p *priceField) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		p.isString = true
		return json.Unmarshal(b, &p.raw)
	}
	return json.Unmarshal(b, &p.amount)
}

func (p *priceField) resolve(f cart.FormatConfig) (float64, error) {
	if p.isString {
		return cart.ParsePrice(p.raw, f)
	}
	return p.amount, nil
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req struct {
		ProductID    string       `json:"product_id"`
		ID           string       `json:"id"`
		Name         string       `json:"name"`
		Price        priceField   `json:"price"`
		ComparePrice float64      `json:"compare_price"`
		Qty          float64      `json:"qty"`
		Options      cart.Options `json:"options"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Qty == 0 {
		req.Qty = 1
	}

	ct := h.cart(c)

	var (
		item *cart.CartItem
		err  error
	)
	if req.ProductID != "" {
		var product models.Product
		if dbErr := h.DB.First(&product, "id = ?", req.ProductID).Error; dbErr != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		item, err = ct.AddBuyable(&product, req.Qty, req.Options)
	} else {
		price, perr := req.Price.resolve(h.Config.Format)
		if perr != nil {
			abortCartError(c, perr)
			return
		}
		item, err = ct.Add(req.ID, req.Name, req.Qty, cart.Price{Amount: price, Compare: req.ComparePrice}, req.Options)
	}
	if err != nil {
		abortCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, itemPayload(item))
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	rowID := c.Param("rowId")

	var req struct {
		Qty     *float64      `json:"qty"`
		Name    *string       `json:"name"`
		Price   *float64      `json:"price"`
		Options *cart.Options `json:"options"`
		Saved   *bool         `json:"saved"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ct := h.cart(c)
	item, err := ct.Update(rowID, cart.ItemUpdate{
		Qty:     req.Qty,
		Name:    req.Name,
		Price:   req.Price,
		Options: req.Options,
		Saved:   req.Saved,
	})
	if err != nil {
		abortCartError(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
		return
	}

	c.JSON(http.StatusOK, itemPayload(item))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	if err := h.cart(c).Remove(c.Param("rowId")); err != nil {
		abortCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	h.cart(c).Destroy()
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var row models.Coupon
	if err := h.DB.First(&row, "code = ?", req.Code).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
		return
	}

	coupon, err := row.ToCartCoupon()
	if err != nil {
		abortCartError(c, err)
		return
	}

	ct := h.cart(c)
	if err := ct.AddCoupon(coupon); err != nil {
		abortCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartPayload(ct))
}

func (h *CartHandler) ClearCoupons(c *gin.Context) {
	ct := h.cart(c)
	ct.ClearCoupons()
	c.JSON(http.StatusOK, cartPayload(ct))
}

func (h *CartHandler) ApplyFee(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var row models.Fee
	if err := h.DB.First(&row, "name = ?", req.Name).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Fee not found"})
		return
	}

	fee, err := row.ToCartFee()
	if err != nil {
		abortCartError(c, err)
		return
	}

	ct := h.cart(c)
	ct.AddFee(fee)
	c.JSON(http.StatusOK, cartPayload(ct))
}

func (h *CartHandler) StoreCart(c *gin.Context) {
	ct := h.cart(c)
	if err := ct.Store(middleware.SessionID(c)); err != nil {
		abortCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart stored"})
}

func (h *CartHandler) RestoreCart(c *gin.Context) {
	ct := h.cart(c)
	if err := ct.Restore(middleware.SessionID(c)); err != nil {
		abortCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartPayload(ct))
}

func (h *CartHandler) DeleteStoredCart(c *gin.Context) {
	ct := h.cart(c)
	if err := ct.DeleteStoredCart(middleware.SessionID(c)); err != nil {
		abortCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stored cart deleted"})
}

func (h *CartHandler) GetMetrics(c *gin.Context) {
	metric := c.Query("metric")
	if metric == "" {
		metric = "total"
	}

	instances := []string{h.Config.DefaultInstance}
	if raw := c.Query("instances"); raw != "" {
		instances = strings.Split(raw, ",")
	}

	value, err := h.cart(c).WithInstance(instances, metric)
	if err != nil {
		abortCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metric":    metric,
		"instances": instances,
		"value":     value,
	})
}
