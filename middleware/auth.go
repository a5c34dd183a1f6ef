package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/focusdesk/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextTokenIDKey stores the jti of the presented token, used by logout.
	ContextTokenIDKey = "token_id"
	// ContextTokenExpiryKey stores the expiry of the presented token.
	ContextTokenExpiryKey = "token_expiry"
)

// AuthRequired ensures the request carries a valid, unrevoked bearer JWT.
func AuthRequired(secret string, blacklist *utils.TokenBlacklist) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, err := utils.ResolveClaims(secret, ctx.GetHeader("Authorization"))
		if err != nil {
			utils.Fail(ctx, err)
			ctx.Abort()
			return
		}

		if blacklist != nil && blacklist.IsRevoked(ctx.Request.Context(), claims.ID) {
			utils.Fail(ctx, utils.Unauthorized("Not authorized, token revoked"))
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextTokenIDKey, claims.ID)
		if claims.ExpiresAt != nil {
			ctx.Set(ContextTokenExpiryKey, claims.ExpiresAt.Time)
		} else {
			ctx.Set(ContextTokenExpiryKey, time.Time{})
		}
		ctx.Next()
	}
}
