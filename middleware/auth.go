package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/TUNKSTUN/thepicklehouse-sub000/services"
)

const ownerContextKey = "owner"

// ResolveOwner is the identity bridge: it turns the bearer token into a
// tagged OwnerRef (user or guest) before any cart logic runs. Core services
// never see cookies or auth state, only the resolved reference.
func ResolveOwner(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid token signing method")
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		subject, _ := claims["sub"].(string)
		role, _ := claims["role"].(string)
		switch role {
		case "user":
			c.Set(ownerContextKey, services.UserRef(subject))
		case "guest":
			c.Set(ownerContextKey, services.GuestRef(subject))
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown token role"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireUser rejects guest tokens; used for endpoints that need an account
// (profile, order history, guest cart sync).
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := Owner(c)
		if !ok || owner.Kind != services.OwnerUser {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User account required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Owner returns the resolved owner reference set by ResolveOwner.
func Owner(c *gin.Context) (services.OwnerRef, bool) {
	val, exists := c.Get(ownerContextKey)
	if !exists {
		return services.OwnerRef{}, false
	}
	owner, ok := val.(services.OwnerRef)
	return owner, ok
}
