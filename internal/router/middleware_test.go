package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nutrifit/internal/config"
	"github.com/nutrifit/internal/constants"
	handlershared "github.com/nutrifit/internal/http/handlers/shared"
	"github.com/nutrifit/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"https://nutrifit.example"}}))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://nutrifit.example")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("want 204 got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), constants.SessionHeader) {
		t.Fatalf("session header should be allowed, got %s", w.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString(response.RequestIDKey)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if strings.TrimSpace(w2.Header().Get(requestIDHeader)) == "" {
		t.Fatalf("generated request id should not be empty")
	}
}

func TestSessionMiddlewareIssuesAndReusesSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionMiddleware(false))
	r.GET("/s", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.ContextKeySessionID))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s", nil))
	issued := w.Body.String()
	if issued == "" {
		t.Fatalf("session should be issued")
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), constants.SessionCookieName+"="+issued) {
		t.Fatalf("cookie should carry session, got %s", w.Header().Get("Set-Cookie"))
	}

	w2 := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/s", nil)
	req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: issued})
	r.ServeHTTP(w2, req)
	if w2.Body.String() != issued {
		t.Fatalf("cookie session should be reused, want %s got %s", issued, w2.Body.String())
	}

	w3 := httptest.NewRecorder()
	req3 := httptest.NewRequest(http.MethodGet, "/s", nil)
	req3.Header.Set(constants.SessionHeader, "header-session")
	r.ServeHTTP(w3, req3)
	if w3.Body.String() != "header-session" {
		t.Fatalf("header session should win, got %s", w3.Body.String())
	}
	if w3.Header().Get("Set-Cookie") != "" {
		t.Fatalf("no cookie should be issued when header present")
	}
}

func identityEngine(cfg config.AuthConfig, required bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdentityMiddleware(cfg, required))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    c.GetString(constants.ContextKeyUserID),
			"email":      c.GetString(constants.ContextKeyUserEmail),
			"first_name": c.GetString(constants.ContextKeyUserFirstName),
		})
	})
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v (%s)", err, w.Body.String())
	}
	return body
}

func TestIdentityMiddlewareTrustsHeadersWithoutSecret(t *testing.T) {
	r := identityEngine(config.AuthConfig{}, true)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(headerUserID, "uid-1")
	req.Header.Set(headerUserEmail, "asha@example.com")
	req.Header.Set(headerUserFirstName, "Asha")
	r.ServeHTTP(w, req)

	body := decodeBody(t, w)
	if body["user_id"] != "uid-1" || body["email"] != "asha@example.com" || body["first_name"] != "Asha" {
		t.Fatalf("unexpected identity: %v", body)
	}
}

func TestIdentityMiddlewareRequiresIdentity(t *testing.T) {
	r := identityEngine(config.AuthConfig{}, true)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	body := decodeBody(t, w)
	if body["status_code"] != float64(response.CodeUnauthorized) {
		t.Fatalf("want 401 status_code got %v", body["status_code"])
	}

	optional := identityEngine(config.AuthConfig{}, false)
	w2 := httptest.NewRecorder()
	optional.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/me", nil))
	if decodeBody(t, w2)["user_id"] != "" {
		t.Fatalf("optional identity should pass through anonymously")
	}
}

func signIdentity(t *testing.T, secret string, claims IdentityClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	return signed
}

func TestIdentityMiddlewareJWT(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "s3cret", Issuer: "nutrifit-auth"}
	r := identityEngine(cfg, true)
	token := signIdentity(t, "s3cret", IdentityClaims{
		Email:     "asha@example.com",
		GivenName: "Asha",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "uid-9",
			Issuer:    "nutrifit-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	body := decodeBody(t, w)
	if body["user_id"] != "uid-9" || body["first_name"] != "Asha" {
		t.Fatalf("unexpected identity: %v", body)
	}

	// 伪造的透传头在配置密钥后无效
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/me", nil)
	req2.Header.Set(headerUserID, "spoofed")
	r.ServeHTTP(w2, req2)
	if decodeBody(t, w2)["status_code"] != float64(response.CodeUnauthorized) {
		t.Fatalf("headers must be ignored when jwt secret is set")
	}

	wrongIssuer := signIdentity(t, "s3cret", IdentityClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "uid-9", Issuer: "other"}})
	w3 := httptest.NewRecorder()
	req3 := httptest.NewRequest(http.MethodGet, "/me", nil)
	req3.Header.Set("Authorization", "Bearer "+wrongIssuer)
	r.ServeHTTP(w3, req3)
	if decodeBody(t, w3)["status_code"] != float64(response.CodeUnauthorized) {
		t.Fatalf("token from another issuer must be rejected")
	}
}

func TestSetIdentityRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	handlershared.SetIdentity(c, handlershared.Identity{UserID: " u1 ", Email: "a@b.c"})
	identity, ok := handlershared.GetIdentity(c)
	if !ok || identity.UserID != "u1" || identity.Email != "a@b.c" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}
