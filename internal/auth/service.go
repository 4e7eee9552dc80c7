package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/apperr"
)

type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (Admin, error)
}

type Service struct {
	Admins AdminStore
	Tokens *Issuer
}

var errBadCredentials = fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthorized)

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	var f apperr.Fields
	f.Add(NormalizeEmail(email) == "", "email")
	f.Add(password == "", "password")
	if err := f.Err(); err != nil {
		return Token{}, err
	}

	a, err := s.Admins.GetByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return Token{}, errBadCredentials
	}
	if err != nil {
		return Token{}, err
	}
	if !VerifyPassword(a.PasswordHash, password) {
		return Token{}, errBadCredentials
	}
	return s.Tokens.Issue(a)
}
