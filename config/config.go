package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"shopcart-backend/cart"

	"github.com/joho/godotenv"
)

func LoadEnv() error {
	// Try to load .env file if it exists (for local development)
	// On production, environment variables are set directly
	err := godotenv.Load()
	if err != nil {
		// .env file not found is not an error - it might be on production
		// Environment variables are already available in os.Getenv()
		return nil
	}
	return nil
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing.
func ValidateEnv() error {
	var missing []string

	// Critical variables - application cannot function without these
	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if os.Getenv("DATABASE_URL") == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	// Non-critical variables - log warnings but don't fail
	if os.Getenv("FRONTEND_URL") == "" {
		log.Println("WARNING: FRONTEND_URL not set - CORS may not work correctly")
	}
	if os.Getenv("ADMIN_URL") == "" {
		log.Println("WARNING: ADMIN_URL not set")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("WARNING: %s=%q is not a number, using %v", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		log.Printf("WARNING: %s=%q is not a boolean, using %v", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("WARNING: %s=%q is not an integer, using %v", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

// CartConfig builds the pricing configuration from CART_* environment
// variables, falling back to the shipped defaults.
func CartConfig() *cart.Config {
	cfg := cart.DefaultConfig()

	cfg.DefaultInstance = GetEnv("CART_DEFAULT_INSTANCE", cfg.DefaultInstance)
	cfg.TaxRate = getFloat("CART_TAX_RATE", cfg.TaxRate)

	cfg.Coupon.Enable = getBool("CART_COUPON_ENABLE", cfg.Coupon.Enable)
	cfg.Coupon.AllowMultiple = getBool("CART_COUPON_ALLOW_MULTIPLE", cfg.Coupon.AllowMultiple)

	cfg.Fee.DiscountedBase = getBool("CART_FEE_DISCOUNTED_BASE", cfg.Fee.DiscountedBase)

	cfg.ComparePrice.DefaultMultiplier = getFloat("CART_COMPARE_PRICE_MULTIPLIER", cfg.ComparePrice.DefaultMultiplier)
	cfg.ComparePrice.Discount = getBool("CART_COMPARE_PRICE_DISCOUNT", cfg.ComparePrice.Discount)
	cfg.ComparePrice.DiscountCode = GetEnv("CART_COMPARE_PRICE_DISCOUNT_CODE", cfg.ComparePrice.DiscountCode)

	cfg.Format.Decimals = getInt("CART_FORMAT_DECIMALS", cfg.Format.Decimals)
	cfg.Format.DecimalPoint = GetEnv("CART_FORMAT_DECIMAL_POINT", cfg.Format.DecimalPoint)
	cfg.Format.ThousandSeparator = GetEnv("CART_FORMAT_THOUSAND_SEPARATOR", cfg.Format.ThousandSeparator)
	cfg.Format.Prepend = GetEnv("CART_FORMAT_PREPEND", cfg.Format.Prepend)
	cfg.Format.OnZero = GetEnv("CART_FORMAT_ON_ZERO", cfg.Format.OnZero)

	return cfg
}

// StoredCartTable is the table persisted carts are written to.
func StoredCartTable() string {
	return GetEnv("CART_TABLE", "stored_carts")
}
