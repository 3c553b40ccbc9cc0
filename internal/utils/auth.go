package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const guestUsernameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("Failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RandomToken returns an opaque url-safe token built from n random bytes.
func RandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("Failed to read random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// RandomGuestUsername returns a fixed-length username drawn from
// uppercase letters and digits.
func RandomGuestUsername(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("Failed to read random bytes: %w", err)
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = guestUsernameAlphabet[int(b)%len(guestUsernameAlphabet)]
	}
	return string(out), nil
}
