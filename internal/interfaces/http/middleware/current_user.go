package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wzledger/backend/internal/domain/identity"
	"github.com/wzledger/backend/internal/domain/shared"
	"github.com/wzledger/backend/internal/infrastructure/logger"
	"github.com/wzledger/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// CurrentUserKey is the gin context key holding the loaded *identity.User
const CurrentUserKey = "current_user"

// CurrentUser loads the authenticated user's record. It must run after the
// JWT middleware. A token for a user that no longer exists is rejected.
func CurrentUser(users identity.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(GetJWTUserID(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse("Authentication required."))
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse("User no longer exists."))
				return
			}
			logger.GetGinLogger(c).Error("Failed to load current user",
				zap.String("user_id", userID.String()),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error"))
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// GetCurrentUser returns the user loaded by CurrentUser, or nil
func GetCurrentUser(c *gin.Context) *identity.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if user, ok := v.(*identity.User); ok {
			return user
		}
	}
	return nil
}
