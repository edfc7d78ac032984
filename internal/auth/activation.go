// Package auth issues and checks the signed activation tokens embedded in
// the links sent after registration.
package auth

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const activationAudience = "account-activation"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ActivationClaims carries the account ID in Subject plus the email the
// link was sent to.
type ActivationClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// GenerateActivationToken signs an HS256 token for accountID valid from now
// for ttl.
func GenerateActivationToken(accountID, email string, secretKey []byte, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ActivationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Audience:  jwt.ClaimStrings{activationAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	})

	return token.SignedString(secretKey)
}

// ParseActivationToken verifies signature, audience and expiry as of now.
func ParseActivationToken(tokenString string, secretKey []byte, now time.Time) (*ActivationClaims, error) {
	claims := &ActivationClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(activationAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ActivationLink appends the token to baseURL as the "token" query value.
func ActivationLink(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Issuer builds activation links from one secret, lifetime and base URL.
type Issuer struct {
	Secret  []byte
	TTL     time.Duration
	BaseURL string
}

// Link returns the activation link for accountID issued at now.
func (i *Issuer) Link(accountID, email string, now time.Time) (string, error) {
	token, err := GenerateActivationToken(accountID, email, i.Secret, now, i.TTL)
	if err != nil {
		return "", err
	}
	return ActivationLink(i.BaseURL, token)
}
