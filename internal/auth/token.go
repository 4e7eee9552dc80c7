package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
)

const (
	issuerName = "luxury-yachts"
	roleAdmin  = "admin"
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type Token struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Issuer signs and verifies HS256 admin tokens.
type Issuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

func (i *Issuer) Issue(a Admin) (Token, error) {
	now := i.Now()
	exp := now.Add(i.TTL)
	claims := Claims{
		Email: a.Email,
		Role:  roleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   a.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: exp}, nil
}

func (i *Issuer) Parse(raw string) (Claims, error) {
	var c Claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.Secret, nil
	},
		jwt.WithIssuer(issuerName),
		jwt.WithTimeFunc(i.Now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !tok.Valid {
		return Claims{}, fmt.Errorf("%w: invalid token", apperr.ErrUnauthorized)
	}
	if c.Role != roleAdmin || c.Subject == "" {
		return Claims{}, fmt.Errorf("%w: not an admin token", apperr.ErrUnauthorized)
	}
	return c, nil
}
