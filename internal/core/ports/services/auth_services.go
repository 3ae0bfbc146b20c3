package services

import (
	"context"

	"github.com/cambix/cambix_backend/internal/dto"
)

// AuthSvcFacade defines operator authentication.
type AuthSvcFacade interface {
	// Login verifies the operator credentials and issues a signed token.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}
