package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/applytrack/applytrack/internal/domain/quota"
	"github.com/applytrack/applytrack/internal/shared/biztime"
	"github.com/applytrack/applytrack/internal/shared/config"
)

const defaultPlanClaim = "plan"

var ErrInvalidToken = errors.New("invalid token")

// Principal is the verified caller of a request. Tier is resolved from the
// raw plan claim once, here.
type Principal struct {
	Identity quota.AuthenticatedIdentity
	Tier     quota.Tier
	RawPlan  string
}

// JWTService verifies HS256 session tokens issued by the auth provider.
// Sign exists for local development and tests.
type JWTService struct {
	secret    []byte
	issuer    string
	audience  string
	planClaim string
	clock     biztime.Clock
}

func NewJWTService(cfg *config.AuthConfig) *JWTService {
	planClaim := cfg.PlanClaim
	if planClaim == "" {
		planClaim = defaultPlanClaim
	}
	return &JWTService{
		secret:    []byte(cfg.JWTSecret),
		issuer:    cfg.Issuer,
		audience:  cfg.Audience,
		planClaim: planClaim,
		clock:     biztime.NowUTC,
	}
}

func (s *JWTService) Sign(userID, email, plan string, ttl time.Duration) (string, error) {
	now := s.clock()
	claims := jwt.MapClaims{
		"sub":       userID,
		"email":     email,
		s.planClaim: plan,
		"iat":       now.Unix(),
		"nbf":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
	if s.issuer != "" {
		claims["iss"] = s.issuer
	}
	if s.audience != "" {
		claims["aud"] = s.audience
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *JWTService) Verify(tokenString string) (*Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	email, _ := claims["email"].(string)
	identity, err := quota.NewAuthenticatedIdentity(sub, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	plan, _ := claims[s.planClaim].(string)
	return &Principal{
		Identity: identity,
		Tier:     quota.ParseTier(plan),
		RawPlan:  plan,
	}, nil
}
