package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/TUNKSTUN/thepicklehouse-sub000/config"
	"github.com/TUNKSTUN/thepicklehouse-sub000/controllers/httperr"
	"github.com/TUNKSTUN/thepicklehouse-sub000/services"
)

// POST /auth/guest
//
// CreateGuestSession mints a guest cart and a token carrying its id. The
// cart id is the guest's whole identity; no guest user record exists.
func CreateGuestSession(carts *services.CartService, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := carts.CreateCart(c.Request.Context(), nil)
		if err != nil {
			httperr.JSON(c, err)
			return
		}

		expiresAt := time.Now().Add(cfg.GuestTokenTTL)
		token, err := issueGuestToken(cart.ID, cfg.JWTSecret, expiresAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"cart_id":    cart.ID,
			"token":      token,
			"expires_at": expiresAt,
		})
	}
}

func issueGuestToken(cartID, secret string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  cartID,
		"role": "guest",
		"exp":  expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// IssueUserToken signs a session token for an authenticated user. The actual
// login flow (OAuth, password) lives outside this service; this is the piece
// the identity bridge needs to hand out tokens it can later resolve.
func IssueUserToken(userID, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": "user",
		"exp":  time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
