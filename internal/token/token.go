// Package token issues and verifies the signed session credentials that
// identify a signed-in user.
package token

import (
	"time"

	"shortlink/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is the fixed lifetime of a session token.
const TTL = 7 * 24 * time.Hour

// Identity is the minimal claim set a verified token resolves to.
type Identity struct {
	UserID uint
	Email  string
}

type Claims struct {
	UserID uint   `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret string) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    TTL,
		now:    time.Now,
	}
}

// Issue signs a token binding the user's id and email. Stateless: no
// record of issued tokens is kept anywhere.
func (s *Service) Issue(user models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify fails closed: a malformed token, a bad signature and an expired
// token all yield the same (Identity{}, false) so callers cannot
// distinguish why verification failed.
func (s *Service) Verify(tokenString string) (Identity, bool) {
	if tokenString == "" {
		return Identity{}, false
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return Identity{}, false
	}

	return Identity{UserID: claims.UserID, Email: claims.Email}, true
}
