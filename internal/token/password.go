package token

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword возвращает солёный односторонний хеш. Открытый пароль
// нигде не сохраняется - наружу отдаётся только хеш.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("ошибка при хешировании пароля: %w", err)
	}

	return string(hash), nil
}

func CheckPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
