// Package auth verifies the bearer credentials clients attach to history
// requests. The token subject is the device identifier that scopes rows.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/qrscan/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the standard claims plus the client platform.
type Claims struct {
	jwt.RegisteredClaims
	Platform string `json:"platform,omitempty"`
}

// GenerateToken signs an HS256 token for deviceID.
func GenerateToken(deviceID, platform string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Platform: platform,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSubjectFromToken verifies tokenString and returns its subject.
// Expired tokens yield common.ErrTokenExpired; any other failure,
// including a missing subject, yields common.ErrInvalidToken.
func GetSubjectFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
