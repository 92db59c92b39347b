package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/pkg/clock"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService verifies access tokens issued by the identity service.
// Both sides share the HS256 secret.
type TokenService struct {
	secret string
	clock  clock.Clock
}

func NewTokenService(secret string, clk clock.Clock) *TokenService {
	if clk == nil {
		clk = clock.Real{}
	}
	return &TokenService{
		secret: secret,
		clock:  clk,
	}
}

func (s *TokenService) getSecret() string {
	return s.secret
}

// Validate validates the given JWT token string, returning its claims if valid.
// Only access tokens are accepted.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.Claims, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	parsedToken, err := jwt.ParseWithClaims(token, jwt.MapClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return []byte(s.getSecret()), nil
	}, jwt.WithTimeFunc(s.clock.Now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, wrap.Error(ctx, ErrExpToken)
		}
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}
	if !parsedToken.Valid {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	mc, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	typ, _ := mc["typ"].(string)
	if typ != models.AccessToken {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	userIDStr, _ := mc["user_id"].(string)
	if userIDStr == "" {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: missing 'user_id' claim", ErrInvalidToken))
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: invalid 'user_id' claim", ErrInvalidToken))
	}

	var tokenID uuid.UUID
	if jti, _ := mc["jti"].(string); jti != "" {
		if tokenID, err = uuid.Parse(jti); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%w: invalid 'jti' claim", ErrInvalidToken))
		}
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: missing 'exp' claim", ErrInvalidToken))
	}

	email, _ := mc["email"].(string)

	return &models.Claims{
		UserID:    userID,
		TokenID:   tokenID,
		TokenType: typ,
		Email:     email,
		ExpiresAt: exp.Time,
	}, nil
}

// IssueAccessToken signs an access token for userID. Production tokens come from the
// identity service; this is used by the seeding tool and tests.
func (s *TokenService) IssueAccessToken(userID uuid.UUID, email string, ttl time.Duration) (string, error) {
	issuedAt := s.clock.Now().UTC()
	claims := jwt.MapClaims{
		"typ":     models.AccessToken,
		"jti":     uuid.NewString(),
		"user_id": userID.String(),
		"email":   email,
		"iat":     issuedAt.Unix(),
		"exp":     issuedAt.Add(ttl).Unix(),
	}
	return s.signClaims(claims)
}

func (s *TokenService) signClaims(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.getSecret()))
}
