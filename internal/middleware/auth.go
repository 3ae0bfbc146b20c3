package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cambix/cambix_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// OperatorClaims are the JWT claims issued at login and consumed here.
type OperatorClaims struct {
	Role    string `json:"role"`
	HouseID int64  `json:"houseID"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the Bearer token and stores the operator identity
// in the request context for downstream permission checks.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		tokenString := parts[1]

		claims := &OperatorClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			logger.Warn("Invalid or expired token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		operatorID, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			logger.Warn("Token subject is not a valid operator id", "subject", claims.Subject)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token subject"})
			return
		}

		op := OperatorContext{
			OperatorID: operatorID,
			Role:       domain.OperatorRole(claims.Role),
			HouseID:    claims.HouseID,
		}
		c.Request = c.Request.WithContext(WithOperator(c.Request.Context(), op))

		c.Next()
	}
}
