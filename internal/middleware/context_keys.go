package middleware

import (
	"context"

	"github.com/cambix/cambix_backend/internal/core/domain"
	"github.com/gin-gonic/gin"
)

const operatorKey = contextKey("operator")

// OperatorContext is the authenticated identity attached to every request by
// the auth middleware: who is calling, with what role, for which house.
type OperatorContext struct {
	OperatorID int64
	Role       domain.OperatorRole
	HouseID    int64
}

// WithOperator stores the operator identity in the context.
func WithOperator(ctx context.Context, op OperatorContext) context.Context {
	return context.WithValue(ctx, operatorKey, op)
}

// GetOperatorFromContext retrieves the authenticated operator from the Gin
// context. It returns the operator and a boolean indicating if it was found.
func GetOperatorFromContext(c *gin.Context) (OperatorContext, bool) {
	op, ok := c.Request.Context().Value(operatorKey).(OperatorContext)
	return op, ok
}

// GetOperatorFromCtx retrieves the authenticated operator from a plain
// context, for use in the service layer.
func GetOperatorFromCtx(ctx context.Context) (OperatorContext, bool) {
	op, ok := ctx.Value(operatorKey).(OperatorContext)
	return op, ok
}
