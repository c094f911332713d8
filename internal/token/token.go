package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Service выпускает и проверяет подписанные токены подтверждения
// email. Ключ подписи живёт всё время процесса: смена ключа делает все
// выданные токены непроверяемыми.
type Service struct {
	secretKey  []byte
	defaultTTL time.Duration
}

func NewService(secretKey string, defaultTTL time.Duration) *Service {
	return &Service{
		secretKey:  []byte(secretKey),
		defaultTTL: defaultTTL,
	}
}

// Issue выпускает токен с полезной нагрузкой {confirm: userID}.
// При ttl == 0 берётся срок по умолчанию из конфигурации;
// отрицательный ttl даёт уже истёкший токен.
func (s *Service) Issue(userID string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = s.defaultTTL
	}

	claims := jwt.MapClaims{
		"confirm": userID,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return tokenString, nil
}

// Verify проверяет токен и принадлежность его полезной нагрузки
// пользователю. Любая проблема - битый токен, истёкший срок, чужая
// подпись, несовпадение id - даёт false, наружу ошибки не выходят.
func (s *Service) Verify(tokenString, expectedUserID string) bool {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}

	confirmID, ok := claims["confirm"].(string)
	if !ok {
		return false
	}

	return confirmID == expectedUserID
}
