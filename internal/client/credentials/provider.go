// Package credentials supplies bearer tokens for remote history calls.
// Tokens are minted per call and never cached by callers.
package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/qrscan/internal/clockx"
	"github.com/dmitrijs2005/qrscan/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the lifetime of a minted token.
const DefaultTTL = 5 * time.Minute

// Provider returns a fresh bearer credential.
type Provider interface {
	Token(ctx context.Context) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (string, error)

func (f ProviderFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Claims are the token claims; the subject is the device identifier.
type Claims struct {
	jwt.RegisteredClaims
	Platform string `json:"platform,omitempty"`
}

// JWTProvider mints an HS256 token for the installation on every call.
type JWTProvider struct {
	secret   []byte
	deviceID string
	platform string
	ttl      time.Duration
	clock    clockx.Clock
}

func NewJWTProvider(secret []byte, deviceID, platform string, ttl time.Duration, clk clockx.Clock) *JWTProvider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clockx.Real()
	}
	return &JWTProvider{secret: secret, deviceID: deviceID, platform: platform, ttl: ttl, clock: clk}
}

func (p *JWTProvider) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrAuthCredentialUnavailable, err)
	}
	if len(p.secret) == 0 || p.deviceID == "" {
		return "", common.ErrAuthCredentialUnavailable
	}

	now := p.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.deviceID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
		Platform: p.platform,
	})

	s, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrAuthCredentialUnavailable, err)
	}
	return s, nil
}
