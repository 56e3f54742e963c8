package auth

import (
	"errors"
	"time"

	"tunevault/models"

	"github.com/dgrijalva/jwt-go"
)

// TokenLifetime is how long an issued identity assertion stays valid.
const TokenLifetime = 24 * time.Hour

// ErrInvalidToken covers every verification failure: structural errors,
// signature mismatch, and expiry. Verification fails closed and never
// surfaces partial claims.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity assertion embedded in a signed token.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.StandardClaims
}

// Service issues and verifies signed identity assertions. The signing key
// is process-wide static configuration; there is no rotation and no
// revocation, so a token stays valid until natural expiry.
type Service struct {
	key []byte
}

// NewService creates a token service signing with the given key
func NewService(key []byte) *Service {
	return &Service{key: key}
}

// Issue produces a signed assertion for the user with a 24-hour expiry
func (s *Service) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(TokenLifetime).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Verify checks signature and expiry and returns the embedded claims.
// Any fault yields ErrInvalidToken.
func (s *Service) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
