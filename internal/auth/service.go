package auth

import (
	"context"
	"fmt"
)

// Service mints and validates bearer tokens for the single operator
// credential configured at startup. Unlike the multi-tenant account
// model this is adapted from, there is no user store: one username and
// one bcrypt password hash, both supplied by config or internal/secrets.
type Service struct {
	jwtManager      *JWTManager
	passwordManager *PasswordManager
	operatorUser    string
	operatorHash    string
}

// NewService builds a Service for the configured operator credential.
func NewService(jwtManager *JWTManager, passwordManager *PasswordManager, operatorUser, operatorPasswordHash string) *Service {
	return &Service{
		jwtManager:      jwtManager,
		passwordManager: passwordManager,
		operatorUser:    operatorUser,
		operatorHash:    operatorPasswordHash,
	}
}

// Login verifies the operator credential and mints a token pair.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	if username != s.operatorUser || s.operatorHash == "" {
		return nil, ErrInvalidCredentials
	}
	if !s.passwordManager.VerifyPassword(password, s.operatorHash) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.jwtManager.GenerateTokenPair(UserClaims{Subject: username})
	if err != nil {
		return nil, fmt.Errorf("mint token pair: %w", err)
	}
	return pair, nil
}

// ValidateToken validates a bearer token and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*UserClaims, error) {
	return s.jwtManager.ValidateAccessToken(tokenString)
}

// GetJWTManager exposes the underlying JWTManager, used by middleware
// and by internal/persistence to sign export provenance tokens with the
// same secret.
func (s *Service) GetJWTManager() *JWTManager {
	return s.jwtManager
}
