package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TokenCookieName es la cookie que transporta el token de sesión.
const TokenCookieName = "token"

// CookieOptions son los flags de seguridad de la cookie según el entorno.
type CookieOptions struct {
	Secure   bool
	SameSite http.SameSite
}

// NewCookieOptions: en producción Secure + SameSite=None para el front en otro origen,
// fuera de producción SameSite=Strict sin Secure.
func NewCookieOptions(production bool) CookieOptions {
	if production {
		return CookieOptions{Secure: true, SameSite: http.SameSiteNoneMode}
	}
	return CookieOptions{Secure: false, SameSite: http.SameSiteStrictMode}
}

// setTokenCookie escribe una cookie de sesión: el vencimiento viaja dentro del token.
func (o CookieOptions) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(o.SameSite)
	c.SetCookie(TokenCookieName, token, 0, "/", "", o.Secure, true)
}

func (o CookieOptions) clearTokenCookie(c *gin.Context) {
	c.SetSameSite(o.SameSite)
	c.SetCookie(TokenCookieName, "", -1, "/", "", o.Secure, true)
}
