package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("auth: токен невалиден")

// TokenManager проверяет access токены, выпущенные внешним провайдером
// авторизации (HS256, идентификатор пользователя в sub).
type TokenManager struct {
	secret []byte
	parser *jwt.Parser
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// ParseAccess извлекает userID и роль из access токена.
func (m *TokenManager) ParseAccess(token string) (uuid.UUID, string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return uuid.Nil, "", ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	parsed, err := m.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, "", ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, "", ErrInvalidToken
	}

	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, "", ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	return userID, role, nil
}
