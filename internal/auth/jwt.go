package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BorisDmv/snip-api/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload issued at login.
type Claims struct {
	Username  string `json:"username"`
	Moderator bool   `json:"mod,omitempty"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) Issue(user models.User) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("jwt secret not set")
	}
	now := m.now()
	claims := Claims{
		Username:  user.Username,
		Moderator: user.Moderator,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenStr and returns the actor it identifies.
func (m *TokenManager) Parse(tokenStr string) (models.Actor, error) {
	if len(m.secret) == 0 {
		return models.Actor{}, errors.New("jwt secret not set")
	}
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return models.Actor{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return models.Actor{}, ErrInvalidToken
	}
	return models.Actor{
		UserID:    claims.Subject,
		Username:  claims.Username,
		Moderator: claims.Moderator,
	}, nil
}
