package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL es la vida de un token de sesión.
const DefaultTokenTTL = 5 * time.Hour

// JWTService emite y valida los tokens de sesión que viajan en la cookie.
type JWTService struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	revoked RevocationStore
	now     func() time.Time
}

// IssuedToken es un token firmado y su vencimiento.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// Claims lleva la identidad (email) afirmada por el token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid  = errors.New("jwt invalid")
	ErrJWTExpired  = errors.New("jwt expired")
	ErrJWTRevoked  = errors.New("jwt revoked")
	ErrNoIdentity  = errors.New("identity claim missing")
	ErrRevokeStore = errors.New("revocation store unavailable")
)

func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "solosphere",
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// NewJWTServiceWithStore habilita la revocación en logout. Con store nil el
// servicio queda sin estado: un token sigue siendo válido hasta su vencimiento
// aunque se haya borrado la cookie.
func NewJWTServiceWithStore(secret string, ttl time.Duration, store RevocationStore) *JWTService {
	svc := NewJWTService(secret, ttl)
	svc.revoked = store
	return svc
}

// TTL devuelve la vida configurada de los tokens.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// IssueToken firma un token para la identidad dada. No verifica que el
// llamador sea quien dice ser: este endpoint es el que establece la sesión.
func (s *JWTService) IssueToken(email string) (IssuedToken, error) {
	if len(s.secret) == 0 {
		return IssuedToken{}, ErrJWTInvalid
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return IssuedToken{}, ErrNoIdentity
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// ParseToken verifica firma, vencimiento, emisor y revocación, y devuelve los
// claims sólo si todo es válido.
func (s *JWTService) ParseToken(ctx context.Context, tokenString string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrJWTInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrJWTInvalid
	}
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return Claims{}, err
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}
	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Claims{}, errors.Join(ErrRevokeStore, err)
		}
		if revoked {
			return Claims{}, ErrJWTRevoked
		}
	}
	return claims, nil
}

// Revoke invalida el token hasta su vencimiento natural. Sin store es un no-op:
// el logout sólo borra la cookie.
func (s *JWTService) Revoke(ctx context.Context, tokenString string) error {
	if s.revoked == nil || strings.TrimSpace(tokenString) == "" {
		return nil
	}
	claims, err := s.parseToken(tokenString)
	if err != nil {
		// Un token vencido o inválido ya no abre ninguna puerta.
		return nil
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	remaining := claims.ExpiresAt.Time.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, remaining)
}

func (s *JWTService) parseToken(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.Email) == "" {
		return false
	}
	if claims.Subject != claims.Email {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
