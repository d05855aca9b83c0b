package mytoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
)

const tokenByteCount = 32

//go:generate mockgen -source=token.go -package mytoken -destination tokener_mock.go Tokener
type Tokener interface {
	Create() (string, error)
}

// RealTokener creates opaque session tokens from crypto/rand.
type RealTokener struct{}

func (t RealTokener) Create() (string, error) {
	return randomBytesInHex(tokenByteCount)
}

// Fingerprint is what gets stored instead of the token itself.
func Fingerprint(token string) (string, error) {
	sha2 := sha256.New()

	_, err := io.WriteString(sha2, token)
	if err != nil {
		return "", fmt.Errorf("could not fingerprint token: %v", err)
	}

	return base64.RawURLEncoding.EncodeToString(sha2.Sum(nil)), nil
}

func randomBytesInHex(count int) (string, error) {
	buf := make([]byte, count)

	_, err := io.ReadFull(rand.Reader, buf)
	if err != nil {
		return "", fmt.Errorf("could not generate %d token bytes: %v", count, err)
	}

	return hex.EncodeToString(buf), nil
}
