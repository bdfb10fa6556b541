package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"shopcart-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")
}

func setupSessionRouter() *gin.Engine {
	r := gin.New()
	r.Use(CartSessionMiddleware())
	r.GET("/api/cart", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"session_id": SessionID(c)})
	})
	return r
}

func TestSessionMintedWhenMissing(t *testing.T) {
	r := setupSessionRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	token := w.Header().Get(SessionHeader)
	if token == "" {
		t.Fatal("expected a fresh session token on the response")
	}
	claims, err := utils.ValidateCartToken(token)
	if err != nil {
		t.Fatalf("minted token does not validate: %v", err)
	}
	if claims.SessionID == uuid.Nil {
		t.Error("minted token carries a nil session ID")
	}
}

func TestSessionPreservedAcrossRequests(t *testing.T) {
	r := setupSessionRouter()

	first := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, first)
	token := w1.Header().Get(SessionHeader)

	second := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	second.Header.Set(SessionHeader, token)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, second)

	if got := w2.Header().Get(SessionHeader); got != token {
		t.Error("presented token was not echoed back")
	}
	if w1.Body.String() != w2.Body.String() {
		t.Errorf("session changed between requests: %s vs %s", w1.Body.String(), w2.Body.String())
	}
}

func TestInvalidTokenGetsFreshSession(t *testing.T) {
	r := setupSessionRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set(SessionHeader, "not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	token := w.Header().Get(SessionHeader)
	if token == "" || token == "not-a-token" {
		t.Errorf("expected a replacement token, got %q", token)
	}
	if _, err := utils.ValidateCartToken(token); err != nil {
		t.Errorf("replacement token does not validate: %v", err)
	}
}

func TestSessionTokenReadFromCookie(t *testing.T) {
	r := setupSessionRouter()

	first := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, first)
	token := w1.Header().Get(SessionHeader)

	second := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	second.AddCookie(&http.Cookie{Name: "cart_session", Value: token})
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, second)

	if w1.Body.String() != w2.Body.String() {
		t.Error("cookie token resolved to a different session")
	}
}
