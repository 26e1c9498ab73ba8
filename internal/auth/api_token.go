package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const apiTokenIssuer = "agencyflow"

var ErrInvalidAPIToken = errors.New("invalid API token")

type APIClaims struct {
	jwt.RegisteredClaims
}

// APITokenVerifier checks HS256 bearer tokens issued with the shared API
// secret.
type APITokenVerifier struct {
	secret []byte
}

func NewAPITokenVerifier(secret string) (*APITokenVerifier, error) {
	if secret == "" {
		return nil, errors.New("API secret is empty")
	}

	return &APITokenVerifier{secret: []byte(secret)}, nil
}

func (v *APITokenVerifier) Verify(tokenString string) (*APIClaims, error) {
	claims := &APIClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(apiTokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAPIToken, err)
	}

	return claims, nil
}

// IssueAPIToken creates a token for subject that the verifier built from the
// same secret accepts until ttl has passed.
func IssueAPIToken(secret string, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("API secret is empty")
	}

	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, APIClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    apiTokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign API token: %w", err)
	}

	return signed, nil
}
