package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/waylog/core/internal/models"
	"github.com/waylog/core/internal/pkg/jwt"
	"github.com/waylog/core/internal/pkg/response"
	"gorm.io/gorm"
)

// ContextKeyUserID is the gin context key holding the authenticated user's row id.
const ContextKeyUserID = "user_id"

// Auth returns a middleware that enforces JWT bearer authentication. Which
// account a caller may export or import is decided here, before the porting
// engine is ever invoked.
func Auth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := ValidateToken(db, extractToken(c))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// ValidateToken validates a JWT and returns the authenticated user id after
// confirming the account still exists.
func ValidateToken(db *gorm.DB, rawToken string) (string, error) {
	if strings.TrimSpace(rawToken) == "" {
		return "", errors.New("missing token")
	}
	claims, err := jwt.Parse(rawToken)
	if err != nil {
		return "", err
	}

	var user models.UserModel
	if err := db.Select("id").First(&user, "id = ?", claims.UserID).Error; err != nil {
		return "", errors.New("unknown user")
	}
	return user.ID, nil
}

// UserID returns the authenticated user id stored by Auth.
func UserID(c *gin.Context) string {
	id, _ := c.Get(ContextKeyUserID)
	s, _ := id.(string)
	return s
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(c.Query("token"))
}
