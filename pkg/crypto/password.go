package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced on user creation
const MinPasswordLength = 8

// bcryptCost is above bcrypt.DefaultCost (10).
const bcryptCost = 12

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooWeak  = errors.New("password must mix letters and digits")
)

var (
	generateHash = bcrypt.GenerateFromPassword
	readRandom   = rand.Read
)

// ValidatePassword rejects passwords that are short or made of a single character class.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return ErrPasswordTooWeak
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hashed, err := generateHash([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateRandomToken returns n random bytes hex encoded (2n characters).
func GenerateRandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := readRandom(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
