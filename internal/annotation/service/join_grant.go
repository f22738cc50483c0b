package service

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	apperrors "github.com/vidmark/vidmark/internal/platform/errors"
)

// joinGrantEnv holds raw env values before post-parse validation.
type joinGrantEnv struct {
	Issuer     string        `env:"VIDMARK_JOIN_GRANT_ISSUER"`
	Audience   string        `env:"VIDMARK_JOIN_GRANT_AUDIENCE"`
	PrivateKey string        `env:"VIDMARK_JOIN_GRANT_PRIVATE_KEY"`
	TTL        time.Duration `env:"VIDMARK_JOIN_GRANT_TTL"         envDefault:"5m"`
}

// JoinGrants signs and verifies short-lived grants wrapping an access
// code, so invite links can carry the code without exposing it in plain
// text.
type JoinGrants struct {
	issuer   string
	audience string
	key      ed25519.PrivateKey
	ttl      time.Duration
}

// NewJoinGrants builds a signer from explicit parts.
func NewJoinGrants(issuer, audience string, key ed25519.PrivateKey, ttl time.Duration) (*JoinGrants, error) {
	issuer = strings.TrimSpace(issuer)
	audience = strings.TrimSpace(audience)
	if issuer == "" {
		return nil, fmt.Errorf("join grant issuer is required")
	}
	if audience == "" {
		return nil, fmt.Errorf("join grant audience is required")
	}
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("join grant private key must be %d bytes", ed25519.PrivateKeySize)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("join grant ttl must be positive")
	}
	return &JoinGrants{issuer: issuer, audience: audience, key: key, ttl: ttl}, nil
}

// LoadJoinGrantsFromEnv builds a signer from VIDMARK_JOIN_GRANT_* env
// values.
func LoadJoinGrantsFromEnv() (*JoinGrants, error) {
	var raw joinGrantEnv
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("parse join grant env: %w", err)
	}
	privateKey := strings.TrimSpace(raw.PrivateKey)
	if privateKey == "" {
		return nil, fmt.Errorf("VIDMARK_JOIN_GRANT_PRIVATE_KEY is required")
	}
	keyBytes, err := decodeBase64(privateKey)
	if err != nil {
		return nil, fmt.Errorf("decode join grant private key: %w", err)
	}
	if len(keyBytes) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("join grant private key must be %d bytes", ed25519.PrivateKeySize)
	}
	return NewJoinGrants(raw.Issuer, raw.Audience, ed25519.PrivateKey(keyBytes), raw.TTL)
}

type joinGrantClaims struct {
	Issuer   string `json:"iss"`
	Audience string `json:"aud"`
	Code     string `json:"code"`
	IssuedAt int64  `json:"iat"`
	Expires  int64  `json:"exp"`
}

// Issue signs a grant wrapping the given access code.
func (g *JoinGrants) Issue(code string, now time.Time) (string, error) {
	if g == nil {
		return "", fmt.Errorf("join grant signer is not configured")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("access code is required")
	}
	now = now.UTC()

	headerJSON, err := json.Marshal(map[string]string{
		"alg": "EdDSA",
		"typ": "JWT",
	})
	if err != nil {
		return "", fmt.Errorf("encode join grant header: %w", err)
	}
	payloadJSON, err := json.Marshal(joinGrantClaims{
		Issuer:   g.issuer,
		Audience: g.audience,
		Code:     code,
		IssuedAt: now.Unix(),
		Expires:  now.Add(g.ttl).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("encode join grant payload: %w", err)
	}

	encodedHeader := base64.RawURLEncoding.EncodeToString(headerJSON)
	encodedPayload := base64.RawURLEncoding.EncodeToString(payloadJSON)
	signingInput := encodedHeader + "." + encodedPayload
	signature := ed25519.Sign(g.key, []byte(signingInput))
	encodedSig := base64.RawURLEncoding.EncodeToString(signature)
	return signingInput + "." + encodedSig, nil
}

// Verify checks a grant's signature, issuer, audience, and expiry, and
// returns the wrapped access code.
func (g *JoinGrants) Verify(grant string, now time.Time) (string, error) {
	if g == nil {
		return "", fmt.Errorf("join grant signer is not configured")
	}
	parts := strings.Split(strings.TrimSpace(grant), ".")
	if len(parts) != 3 {
		return "", apperrors.New(apperrors.CodeJoinGrantInvalid, "join grant is malformed")
	}

	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", apperrors.New(apperrors.CodeJoinGrantInvalid, "join grant signature is malformed")
	}
	signingInput := parts[0] + "." + parts[1]
	publicKey := g.key.Public().(ed25519.PublicKey)
	if !ed25519.Verify(publicKey, []byte(signingInput), signature) {
		return "", apperrors.New(apperrors.CodeJoinGrantInvalid, "join grant signature is invalid")
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", apperrors.New(apperrors.CodeJoinGrantInvalid, "join grant payload is malformed")
	}
	var claims joinGrantClaims
	if err := json.Unmarshal(payloadJSON, &claims); err != nil {
		return "", apperrors.New(apperrors.CodeJoinGrantInvalid, "join grant claims are malformed")
	}
	if claims.Issuer != g.issuer || claims.Audience != g.audience {
		return "", apperrors.New(apperrors.CodeJoinGrantMismatch, "join grant issuer or audience mismatch")
	}
	if now.UTC().Unix() >= claims.Expires {
		return "", apperrors.New(apperrors.CodeJoinGrantExpired, "join grant is expired")
	}
	if strings.TrimSpace(claims.Code) == "" {
		return "", apperrors.New(apperrors.CodeJoinGrantInvalid, "join grant carries no access code")
	}
	return claims.Code, nil
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
