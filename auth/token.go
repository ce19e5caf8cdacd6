package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nickyhof/LightDB/core"
)

// TokenConfig configures HS256 tokens for the server.
type TokenConfig struct {
	// Secret is the shared HMAC secret. Required.
	Secret string

	// Issuer is written to and, when set, required in the "iss" claim.
	Issuer string

	// Audience is the expected "aud" claim (optional).
	Audience string

	// NameClaim is the claim holding the user's name (default: "name").
	NameClaim string

	// EmailClaim is the claim holding the user's email (default: "email").
	EmailClaim string
}

var ErrNoSecret = errors.New("no JWT secret configured")

func (cfg TokenConfig) claimNames() (string, string) {
	nameClaim := cfg.NameClaim
	if nameClaim == "" {
		nameClaim = "name"
	}
	emailClaim := cfg.EmailClaim
	if emailClaim == "" {
		emailClaim = "email"
	}
	return nameClaim, emailClaim
}

// IssueToken signs a token for identity that expires after ttl. A ttl of
// zero or less issues a token without expiry.
func IssueToken(cfg TokenConfig, identity core.Identity, ttl time.Duration) (string, error) {
	if cfg.Secret == "" {
		return "", ErrNoSecret
	}

	nameClaim, emailClaim := cfg.claimNames()
	now := time.Now()
	claims := jwt.MapClaims{
		nameClaim:  identity.Name,
		emailClaim: identity.Email,
		"iat":      now.Unix(),
		"jti":      uuid.NewString(),
	}
	if cfg.Issuer != "" {
		claims["iss"] = cfg.Issuer
	}
	if cfg.Audience != "" {
		claims["aud"] = cfg.Audience
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}

// ValidateToken checks the signature and the configured issuer and
// audience, and returns the identity and expiry (zero when the token never
// expires).
func ValidateToken(cfg TokenConfig, tokenString string) (core.Identity, time.Time, error) {
	if cfg.Secret == "" {
		return core.Identity{}, time.Time{}, ErrNoSecret
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return core.Identity{}, time.Time{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return core.Identity{}, time.Time{}, errors.New("invalid token claims")
	}

	if cfg.Issuer != "" {
		issuer, _ := claims.GetIssuer()
		if issuer != cfg.Issuer {
			return core.Identity{}, time.Time{}, fmt.Errorf("invalid issuer: expected %s, got %s", cfg.Issuer, issuer)
		}
	}

	if cfg.Audience != "" {
		audiences, _ := claims.GetAudience()
		if !slices.Contains(audiences, cfg.Audience) {
			return core.Identity{}, time.Time{}, fmt.Errorf("invalid audience: expected %s", cfg.Audience)
		}
	}

	nameClaim, emailClaim := cfg.claimNames()
	name, _ := claims[nameClaim].(string)
	email, _ := claims[emailClaim].(string)
	if name == "" && email == "" {
		return core.Identity{}, time.Time{}, fmt.Errorf("token missing identity claims (%s or %s)", nameClaim, emailClaim)
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}

	return core.Identity{Name: name, Email: email}, expiresAt, nil
}
