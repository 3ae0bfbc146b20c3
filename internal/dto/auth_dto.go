package dto

import (
	"time"

	"github.com/cambix/cambix_backend/internal/core/domain"
)

// LoginRequest defines the payload for operator authentication.
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,max=72"`
}

// OperatorResponse defines the API representation of an operator.
type OperatorResponse struct {
	OperatorID int64  `json:"operatorId"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	HouseID    int64  `json:"houseId"`
}

// LoginResponse carries the issued token and the authenticated operator.
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Operator  OperatorResponse `json:"operator"`
}

// ToOperatorResponse maps a domain operator to its API representation.
func ToOperatorResponse(op domain.Operator) OperatorResponse {
	return OperatorResponse{
		OperatorID: op.OperatorID,
		Username:   op.Username,
		Name:       op.Name,
		Role:       string(op.Role),
		HouseID:    op.HouseID,
	}
}
