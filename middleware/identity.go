package middleware

import (
	"net/http"
	"strings"

	"homeserve/utils"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey      = "userID"
	deviceIDHeader = "X-Device-ID"
	guestPrefix    = "guest:"
	maxDeviceIDLen = 128
)

// Identity resolves the caller from a Bearer token or, for guests, from the
// X-Device-ID header. Requests carrying neither are rejected.
func Identity(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if !strings.HasPrefix(authHeader, "Bearer ") || tokenString == "" || len(secret) == 0 {
				utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization", "malformed bearer token")
				return
			}
			userID, err := utils.ExtractIDFromToken(secret, tokenString)
			if err != nil {
				utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization", err.Error())
				return
			}
			c.Set(userIDKey, userID)
			c.Next()
			return
		}

		deviceID := strings.TrimSpace(c.GetHeader(deviceIDHeader))
		if deviceID == "" || len(deviceID) > maxDeviceIDLen {
			utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization", "missing bearer token or device id")
			return
		}
		c.Set(userIDKey, guestPrefix+deviceID)
		c.Next()
	}
}

// UserID returns the caller resolved by Identity.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
