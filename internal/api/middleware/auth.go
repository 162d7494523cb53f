package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jobhive/jobhive/internal/models"
	"github.com/jobhive/jobhive/internal/session"
)

const (
	// ContextIdentity is the gin context key holding the caller's
	// models.Identity when the request is authenticated.
	ContextIdentity = "identity"

	// SessionCookie carries the opaque session id issued at login.
	SessionCookie = "jobhive_session"
)

type identityClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Identity resolves the caller from a bearer ID token or the session
// cookie and stores it in the request context. It never aborts: public
// routes see no identity, protected routes gate on Protect.
func Identity(sessions session.Store) gin.HandlerFunc {
	secret := os.Getenv("AUTH_JWT_SECRET")
	issuer := os.Getenv("AUTH_JWT_ISSUER")     // optional
	audience := os.Getenv("AUTH_JWT_AUDIENCE") // optional

	return func(c *gin.Context) {
		if ident, ok := bearerIdentity(c, secret, issuer, audience); ok {
			c.Set(ContextIdentity, ident)
			c.Next()
			return
		}

		if sessions != nil {
			if sid, err := c.Cookie(SessionCookie); err == nil && sid != "" {
				if ident, err := sessions.Get(c.Request.Context(), sid); err == nil {
					c.Set(ContextIdentity, *ident)
				}
			}
		}
		c.Next()
	}
}

// Protect rejects unauthenticated requests.
func Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextIdentity); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Not authenticated",
			})
			return
		}
		c.Next()
	}
}

// bearerIdentity validates an HS256 ID token from the Authorization header.
// Bearer auth is disabled when no secret is configured.
func bearerIdentity(c *gin.Context, secret, issuer, audience string) (models.Identity, bool) {
	if secret == "" {
		return models.Identity{}, false
	}

	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return models.Identity{}, false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	if raw == "" {
		return models.Identity{}, false
	}

	claims := &identityClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || tok == nil || !tok.Valid {
		return models.Identity{}, false
	}
	if issuer != "" && claims.Issuer != issuer {
		return models.Identity{}, false
	}
	if audience != "" {
		valid := false
		for _, aud := range claims.Audience {
			if aud == audience {
				valid = true
				break
			}
		}
		if !valid {
			return models.Identity{}, false
		}
	}
	if claims.Subject == "" {
		return models.Identity{}, false
	}

	return models.Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, true
}
