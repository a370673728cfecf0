package identity

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleSeller = "seller"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingKey   = errors.New("either secret or public key must be configured")
)

//go:generate mockgen -destination=mock/mock_identity.go -package=mock_identity . ITokenVerifier

type ITokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*Payload, error)
}

// Payload 由身份提供者簽發的 token 解出, UserID 即 subject
type Payload struct {
	UserID  string
	Name    string
	Email   string
	Picture string
	Role    string
}

func (p *Payload) IsSeller() bool {
	return p != nil && strings.EqualFold(p.Role, RoleSeller)
}

type providerClaims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	Role    string `json:"role"`
	// 部分身份提供者把角色放在 public metadata
	Metadata struct {
		Role string `json:"role"`
	} `json:"metadata"`
	jwt.RegisteredClaims
}

// JWTVerifier HS256 使用共用 secret, RS256 使用提供者公鑰
type JWTVerifier struct {
	secret    []byte
	publicKey *rsa.PublicKey
	issuer    string
	leeway    time.Duration
}

type Option func(*JWTVerifier)

func WithIssuer(issuer string) Option {
	return func(v *JWTVerifier) {
		v.issuer = issuer
	}
}

func WithLeeway(leeway time.Duration) Option {
	return func(v *JWTVerifier) {
		v.leeway = leeway
	}
}

// NewJWTVerifier secret 與 publicKeyPEM 擇一, 兩者都有時以公鑰為主
func NewJWTVerifier(secret string, publicKeyPEM string, opts ...Option) (*JWTVerifier, error) {
	v := &JWTVerifier{leeway: 5 * time.Second}
	for _, opt := range opts {
		opt(v)
	}

	if publicKeyPEM != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse identity public key: %w", err)
		}
		v.publicKey = key
		return v, nil
	}
	if secret == "" {
		return nil, ErrMissingKey
	}
	v.secret = []byte(secret)
	return v, nil
}

var _ ITokenVerifier = (*JWTVerifier)(nil)

func (v *JWTVerifier) VerifyToken(ctx context.Context, token string) (*Payload, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.publicKey != nil {
		parserOpts = append(parserOpts, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	} else {
		parserOpts = append(parserOpts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	claims := &providerClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if v.publicKey != nil {
			return v.publicKey, nil
		}
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	role := claims.Role
	if role == "" {
		role = claims.Metadata.Role
	}

	return &Payload{
		UserID:  claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Picture: claims.Picture,
		Role:    role,
	}, nil
}
