package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/zaidzaid0342-dotcom/restaurant/config"
	jose "gopkg.in/go-jose/go-jose.v2"
	"gopkg.in/go-jose/go-jose.v2/jwt"
)

// tokenTTL is how long an issued token stays valid
const tokenTTL = 7 * 24 * time.Hour

// TokenService issues the signed JWTs that login and register hand to
// clients. The auth middleware validates them with the same shared
// secret, issuer and audience.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
}

// NewTokenService creates a token service from the application config
func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
	}
}

// IssueToken signs an HS256 token whose subject is the user's id
func (s *TokenService) IssueToken(userID uint) (string, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: s.secret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create signer: %w", err)
	}

	now := time.Now()
	claims := jwt.Claims{
		Subject:  strconv.FormatUint(uint64(userID), 10),
		Issuer:   s.issuer,
		Audience: jwt.Audience{s.audience},
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(tokenTTL)),
	}

	token, err := jwt.Signed(signer).Claims(claims).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return token, nil
}
