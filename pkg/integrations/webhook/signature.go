package webhook

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	SignatureHeader   = "X-Agencyflow-Signature"
	SignatureIssuer   = "agencyflow"
	SignatureLifetime = 5 * time.Minute
)

var ErrBodyDigestMismatch = errors.New("webhook body digest does not match signature")

// Signer issues HS256 tokens that bind a webhook body to the execution that
// sent it.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{
		secret: []byte(secret),
		now:    time.Now,
	}
}

type SignatureClaims struct {
	ExecutionID string `json:"executionId"`
	WorkflowID  string `json:"workflowId"`
	NodeID      string `json:"nodeId"`
	BodyDigest  string `json:"bodySha256"`
	jwt.RegisteredClaims
}

func (s *Signer) Sign(body []byte, executionID, workflowID, nodeID string) (string, error) {
	now := s.now()

	claims := SignatureClaims{
		ExecutionID: executionID,
		WorkflowID:  workflowID,
		NodeID:      nodeID,
		BodyDigest:  digest(body),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    SignatureIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SignatureLifetime)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign webhook body: %w", err)
	}

	return token, nil
}

// Verify checks the token and that it was issued for body.
func (s *Signer) Verify(token string, body []byte) (*SignatureClaims, error) {
	claims := &SignatureClaims{}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(SignatureIssuer))
	if err != nil {
		return nil, fmt.Errorf("invalid webhook signature: %w", err)
	}

	if claims.BodyDigest != digest(body) {
		return nil, ErrBodyDigestMismatch
	}

	return claims, nil
}

func digest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
