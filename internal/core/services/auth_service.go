package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cambix/cambix_backend/internal/apperrors"
	portsrepo "github.com/cambix/cambix_backend/internal/core/ports/repositories"
	portssvc "github.com/cambix/cambix_backend/internal/core/ports/services"
	"github.com/cambix/cambix_backend/internal/dto"
	"github.com/cambix/cambix_backend/internal/middleware"
	"github.com/cambix/cambix_backend/internal/utils"
)

// AuthService verifies operator credentials and issues JWTs.
type AuthService struct {
	masterRepo portsrepo.MasterDataRepositoryFacade
	jwtSecret  string
	jwtExpiry  time.Duration
	jwtIssuer  string
}

// NewAuthService creates a new AuthService.
func NewAuthService(masterRepo portsrepo.MasterDataRepositoryFacade, jwtSecret string, jwtExpiry time.Duration, jwtIssuer string) *AuthService {
	return &AuthService{
		masterRepo: masterRepo,
		jwtSecret:  jwtSecret,
		jwtExpiry:  jwtExpiry,
		jwtIssuer:  jwtIssuer,
	}
}

var _ portssvc.AuthSvcFacade = (*AuthService)(nil)

// Login verifies the credentials and issues a signed token. Unknown
// username and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	operator, err := s.masterRepo.FindOperatorByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
		}
		return nil, err
	}
	if !operator.IsActive {
		return nil, fmt.Errorf("%w: operator account is disabled", apperrors.ErrForbidden)
	}
	if !utils.CheckPasswordHash(req.Password, operator.PasswordHash) {
		logger.Warn("failed login attempt", "username", req.Username)
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.jwtExpiry)
	claims := middleware.OperatorClaims{
		Role:    string(operator.Role),
		HouseID: operator.HouseID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(operator.OperatorID, 10),
			Issuer:    s.jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	logger.Info("operator logged in", "operatorID", operator.OperatorID, "role", operator.Role)

	return &dto.LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		Operator:  dto.ToOperatorResponse(*operator),
	}, nil
}
