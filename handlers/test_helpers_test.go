package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"shopcart-backend/cart"
	"shopcart-backend/database"
	"shopcart-backend/middleware"
	"shopcart-backend/models"
	"shopcart-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")

	var err error
	testDB, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	// Limit to 1 open connection to prevent SQLite concurrent access issues
	// with in-memory databases.
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)

	// Create tables using raw SQLite-compatible SQL instead of AutoMigrate,
	// because the GORM model tags use PostgreSQL-specific defaults like gen_random_uuid().
	if err := createSQLiteTables(testDB); err != nil {
		panic("failed to migrate test database: " + err.Error())
	}

	code := m.Run()
	os.Exit(code)
}

// freshDB returns a clean database for each test by deleting all rows.
func freshDB() *gorm.DB {
	testDB.Exec("DELETE FROM stored_carts")
	testDB.Exec("DELETE FROM fees")
	testDB.Exec("DELETE FROM coupons")
	testDB.Exec("DELETE FROM products")
	return testDB
}

// createSQLiteTables creates all tables with SQLite-compatible DDL.
func createSQLiteTables(db *gorm.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS "products" (
			"id" TEXT PRIMARY KEY,
			"name" TEXT NOT NULL,
			"price" REAL NOT NULL,
			"compare_price" REAL DEFAULT 0,
			"taxable" INTEGER DEFAULT 1,
			"tax_rate" REAL DEFAULT 0,
			"stock" INTEGER DEFAULT 0,
			"description" TEXT,
			"brand" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_deleted_at ON "products"("deleted_at")`,
		`CREATE INDEX IF NOT EXISTS idx_products_name ON "products"("name")`,

		`CREATE TABLE IF NOT EXISTS "coupons" (
			"id" TEXT PRIMARY KEY,
			"code" TEXT NOT NULL UNIQUE,
			"type" TEXT NOT NULL,
			"value" REAL NOT NULL,
			"minimum_spend" REAL DEFAULT 0,
			"maximum_spend" REAL DEFAULT 0,
			"start_date" DATETIME,
			"end_date" DATETIME,
			"use_limit" INTEGER DEFAULT 0,
			"use_device" TEXT,
			"multiple_use" INTEGER DEFAULT 0,
			"total_use" INTEGER DEFAULT 0,
			"status" INTEGER DEFAULT 1,
			"options" TEXT DEFAULT '{}',
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_coupons_deleted_at ON "coupons"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "fees" (
			"id" TEXT PRIMARY KEY,
			"name" TEXT NOT NULL UNIQUE,
			"type" TEXT NOT NULL,
			"value" REAL NOT NULL,
			"taxable" INTEGER DEFAULT 0,
			"tax_rate" REAL,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fees_deleted_at ON "fees"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "stored_carts" (
			"id" TEXT PRIMARY KEY,
			"identifier" TEXT NOT NULL,
			"instance" TEXT NOT NULL,
			"content" TEXT NOT NULL,
			"created_at" DATETIME,
			UNIQUE("identifier", "instance")
		)`,
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			return err
		}
	}
	return nil
}

// ==================== Seed Helpers ====================

// seedProduct creates a test product.
func seedProduct(db *gorm.DB, name string, price, comparePrice float64) models.Product {
	prod := models.Product{
		ID:           uuid.New(),
		Name:         name,
		Price:        price,
		ComparePrice: comparePrice,
		Taxable:      true,
		Stock:        100,
	}
	db.Create(&prod)
	return prod
}

// seedCoupon creates a coupon row redeemable through the cart API.
func seedCoupon(db *gorm.DB, code, couponType string, value float64) models.Coupon {
	coupon := models.Coupon{
		ID:      uuid.New(),
		Code:    code,
		Type:    couponType,
		Value:   value,
		Status:  true,
		Options: "{}",
	}
	db.Create(&coupon)
	return coupon
}

// seedExpiredCoupon creates a coupon whose end date is already in the past.
func seedExpiredCoupon(db *gorm.DB, code string) models.Coupon {
	end := time.Now().Add(-24 * time.Hour)
	coupon := models.Coupon{
		ID:      uuid.New(),
		Code:    code,
		Type:    "percentage",
		Value:   0.1,
		EndDate: &end,
		Status:  true,
		Options: "{}",
	}
	db.Create(&coupon)
	return coupon
}

// seedFee creates a fee row applicable through the cart API.
func seedFee(db *gorm.DB, name, feeType string, value float64, taxable bool) models.Fee {
	fee := models.Fee{
		ID:      uuid.New(),
		Name:    name,
		Type:    feeType,
		Value:   value,
		Taxable: taxable,
	}
	db.Create(&fee)
	// Explicitly update taxable to ensure false values are persisted,
	// since GORM may skip zero-value bools during Create.
	db.Model(&fee).Update("taxable", taxable)
	return fee
}

// ==================== Router Setup Helpers ====================

// testCartConfig mirrors the shipped defaults with a 19% tax rate and no
// thousand separator, so expected totals stay easy to read.
func testCartConfig() *cart.Config {
	cfg := cart.DefaultConfig()
	cfg.TaxRate = 19
	cfg.Format.ThousandSeparator = ""
	return cfg
}

// setupCartRouter sets up routes for cart handler tests. Each call gets its
// own session store so tests stay isolated; pass nil to use testCartConfig.
func setupCartRouter(db *gorm.DB, cfg *cart.Config) *gin.Engine {
	if cfg == nil {
		cfg = testCartConfig()
	}

	r := gin.New()
	cartHandler := &CartHandler{
		DB:       db,
		Config:   cfg,
		Sessions: cart.NewMemoryStore(),
		Repo:     database.NewCartStore(db, "stored_carts"),
		Resolver: database.NewModelStore(db),
	}

	api := r.Group("/api")
	cartGroup := api.Group("/cart")
	cartGroup.Use(middleware.CartSessionMiddleware())
	cartGroup.GET("", cartHandler.GetCart)
	cartGroup.POST("/items", cartHandler.AddItem)
	cartGroup.PUT("/items/:rowId", cartHandler.UpdateItem)
	cartGroup.DELETE("/items/:rowId", cartHandler.RemoveItem)
	cartGroup.DELETE("", cartHandler.ClearCart)
	cartGroup.POST("/coupons", cartHandler.ApplyCoupon)
	cartGroup.DELETE("/coupons", cartHandler.ClearCoupons)
	cartGroup.POST("/fees", cartHandler.ApplyFee)
	cartGroup.POST("/store", cartHandler.StoreCart)
	cartGroup.POST("/restore", cartHandler.RestoreCart)
	cartGroup.DELETE("/store", cartHandler.DeleteStoredCart)
	cartGroup.GET("/metrics", cartHandler.GetMetrics)

	return r
}

// setupProductRouter sets up routes for product handler tests.
func setupProductRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	productHandler := &ProductHandler{DB: db}

	api := r.Group("/api")
	api.GET("/products", productHandler.GetProducts)
	api.GET("/products/:id", productHandler.GetProduct)

	admin := api.Group("/admin")
	admin.POST("/products", productHandler.CreateProduct)
	admin.PUT("/products/:id", productHandler.UpdateProduct)
	admin.DELETE("/products/:id", productHandler.DeleteProduct)

	return r
}

// setupCouponRouter sets up routes for coupon handler tests.
func setupCouponRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	couponHandler := &CouponHandler{DB: db}

	admin := r.Group("/api/admin")
	admin.GET("/coupons", couponHandler.GetCoupons)
	admin.GET("/coupons/:code", couponHandler.GetCoupon)
	admin.POST("/coupons", couponHandler.CreateCoupon)
	admin.PUT("/coupons/:code", couponHandler.UpdateCoupon)
	admin.DELETE("/coupons/:code", couponHandler.DeleteCoupon)

	return r
}

// setupFeeRouter sets up routes for fee handler tests.
func setupFeeRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	feeHandler := &FeeHandler{DB: db}

	admin := r.Group("/api/admin")
	admin.GET("/fees", feeHandler.GetFees)
	admin.POST("/fees", feeHandler.CreateFee)
	admin.DELETE("/fees/:name", feeHandler.DeleteFee)

	return r
}

// ==================== Request Helpers ====================

// newSessionToken mints a valid cart session token for tests that want to
// pin the session up front instead of adopting the one the middleware mints.
func newSessionToken() string {
	token, err := utils.GenerateCartToken(uuid.New())
	if err != nil {
		panic("failed to mint session token: " + err.Error())
	}
	return token
}

// jsonRequest creates an HTTP request with JSON body.
func jsonRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// sessionRequest creates an HTTP request carrying a cart session token.
func sessionRequest(method, url string, body interface{}, token string) *http.Request {
	req := jsonRequest(method, url, body)
	req.Header.Set(middleware.SessionHeader, token)
	return req
}

// ==================== Response Helpers ====================

// parseResponse reads the response body into a map.
func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// parseResponseArray reads the response body into a slice of maps.
func parseResponseArray(w *httptest.ResponseRecorder) []interface{} {
	var result []interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}
