package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"solosphere/internal/service"
)

type memoryRevocationStore struct {
	revoked map[string]time.Duration
}

func (m *memoryRevocationStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	m.revoked[jti] = ttl
	return nil
}

func (m *memoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}

func setupGate(jwtSvc *service.JWTService) (*gin.Engine, *bool) {
	gin.SetMode(gin.TestMode)
	reached := false
	r := gin.New()
	r.GET("/protected", JWTAuthMiddleware(zap.NewNop(), jwtSvc, nil), func(c *gin.Context) {
		reached = true
		identity, _ := AuthenticatedIdentity(c)
		c.JSON(http.StatusOK, gin.H{"email": identity})
	})
	return r, &reached
}

func gateRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddleware_ValidCookie(t *testing.T) {
	jwtSvc := service.NewJWTService("secret", time.Hour)
	issued, err := jwtSvc.IssueToken("alice@x.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	r, reached := setupGate(jwtSvc)
	rec := gateRequest(r, issued.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !*reached {
		t.Fatalf("expected handler to run")
	}
	if rec.Body.String() != `{"email":"alice@x.com"}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestJWTAuthMiddleware_MissingCookie(t *testing.T) {
	r, reached := setupGate(service.NewJWTService("secret", time.Hour))
	rec := gateRequest(r, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if *reached {
		t.Fatalf("handler must not run without token")
	}
	if rec.Body.String() != `{"message":"Unauthorized access"}` {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestJWTAuthMiddleware_RejectsBadTokens(t *testing.T) {
	jwtSvc := service.NewJWTService("secret", time.Hour)
	other := service.NewJWTService("other-secret", time.Hour)
	forged, err := other.IssueToken("alice@x.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	past := time.Now().UTC().Add(-6 * time.Hour)
	expiredClaims := service.Claims{
		Email: "alice@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "solosphere",
			Subject:   "alice@x.com",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(5 * time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	cases := map[string]string{
		"garbage":       "not-a-jwt",
		"bad signature": forged.Token,
		"expired":       expired,
	}
	for name, token := range cases {
		r, reached := setupGate(jwtSvc)
		rec := gateRequest(r, token)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
		if *reached {
			t.Fatalf("%s: handler must not run", name)
		}
	}
}

func TestJWTAuthMiddleware_RevokedToken(t *testing.T) {
	store := &memoryRevocationStore{revoked: make(map[string]time.Duration)}
	jwtSvc := service.NewJWTServiceWithStore("secret", time.Hour, store)
	issued, err := jwtSvc.IssueToken("alice@x.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if err := jwtSvc.Revoke(context.Background(), issued.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	r, reached := setupGate(jwtSvc)
	rec := gateRequest(r, issued.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked token, got %d", rec.Code)
	}
	if *reached {
		t.Fatalf("handler must not run for revoked token")
	}
}
