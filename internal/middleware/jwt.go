package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/classbridge/qbank-backend/internal/response"
)

// ContextKeyClaims is the Gin context key for verified staff claims.
const ContextKeyClaims = "claims"

// StaffClaims are the claims carried by staff tokens. Tokens are issued by
// the platform's identity service; this console only verifies them.
type StaffClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RequireStaffJWT validates a staff JWT from the Authorization header and
// stores its claims on the context.
func RequireStaffJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		tokenStr, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims := &StaffClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenExpired)
				return
			}
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}
		if !token.Valid {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetStaffClaims retrieves the verified claims from the context.
func GetStaffClaims(c *gin.Context) (*StaffClaims, bool) {
	raw, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := raw.(*StaffClaims)
	return claims, ok
}
