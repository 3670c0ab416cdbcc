package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	tokenKey        = "token"
	userIDKey       = "user_id"
	restaurantIDKey = "restaurant_id"
)

// SignIn keeps the token in the signed session cookie.
func SignIn(c *gin.Context, token string) error {
	sess := sessions.Default(c)
	sess.Set(tokenKey, token)
	return sess.Save()
}

func SignOut(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	return sess.Save()
}

// RequireAuth rejects requests without a valid session token and puts the
// user and restaurant ids on the context.
func RequireAuth(tokens *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := sessions.Default(c).Get(tokenKey).(string)
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(userIDKey, claims.Subject)
		c.Set(restaurantIDKey, claims.RestaurantID)
		c.Next()
	}
}

func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func RestaurantID(c *gin.Context) string {
	return c.GetString(restaurantIDKey)
}
