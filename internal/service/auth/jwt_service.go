package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/ports"
)

var ErrRevokedToken = errors.New("token has been revoked")

// Claims represents the custom JWT claims used by the application.
type Claims struct {
	jwt.RegisteredClaims
	Type string `json:"type"`
}

// JWTService issues and validates the bearer tokens of the HTTP surface.
type JWTService struct {
	secret         []byte
	issuer         string
	accessDuration time.Duration
	cache          ports.Cache
	log            *zap.Logger
}

func NewJWTService(secret, issuer string, accessDuration time.Duration, cache ports.Cache, log *zap.Logger) *JWTService {
	log.Info("JWT service initialized", zap.Duration("access_duration", accessDuration))

	return &JWTService{
		secret:         []byte(secret),
		issuer:         issuer,
		accessDuration: accessDuration,
		cache:          cache,
		log:            log,
	}
}

// GenerateAccessToken signs an HS256 token whose subject is userID.
func (s *JWTService) GenerateAccessToken(userID string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Type: "access",
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.log.Error("failed to sign access token", zap.String("user_id", userID), zap.Error(err))
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses tokenString and rejects revoked or non-access tokens.
func (s *JWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		s.log.Debug("token validation failed", zap.Error(err))
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" || claims.Type != "access" {
		return nil, fmt.Errorf("invalid token claims")
	}
	if s.IsTokenRevoked(ctx, claims.ID) {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// RevokeToken blacklists a token id until it would have expired anyway.
func (s *JWTService) RevokeToken(ctx context.Context, tokenID string) error {
	if err := s.cache.Set(ctx, revokedKey(tokenID), "revoked", s.accessDuration); err != nil {
		s.log.Error("failed to revoke token", zap.String("token_id", tokenID), zap.Error(err))
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.log.Info("token revoked", zap.String("token_id", tokenID))
	return nil
}

func (s *JWTService) IsTokenRevoked(ctx context.Context, tokenID string) bool {
	val, err := s.cache.Get(ctx, revokedKey(tokenID))
	if err != nil {
		return false
	}
	return val == "revoked"
}

func revokedKey(tokenID string) string {
	return "revoked_token:" + tokenID
}
