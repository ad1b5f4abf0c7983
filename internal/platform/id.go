package platform

import (
	"crypto/rand"
	"io"

	"github.com/google/uuid"
)

const keyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// APIKeyPrefix marks keys issued by create-api-key.
const APIKeyPrefix = "eqr_"

const apiKeyLength = 40

// maxUnbiasedByte is the largest multiple of len(keyAlphabet) that fits in a
// byte. Random bytes at or above it are discarded so every character is
// equally likely.
const maxUnbiasedByte = 256 - 256%len(keyAlphabet)

func NewID() string {
	return uuid.New().String()
}

// NewAPIKey returns a random API key with APIKeyPrefix.
func NewAPIKey() string {
	key, err := newAPIKey(rand.Reader)
	if err != nil {
		panic("crypto/rand: " + err.Error())
	}
	return key
}

func newAPIKey(r io.Reader) (string, error) {
	key := make([]byte, 0, apiKeyLength)
	buf := make([]byte, apiKeyLength)
	for len(key) < apiKeyLength {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= maxUnbiasedByte {
				continue
			}
			key = append(key, keyAlphabet[int(b)%len(keyAlphabet)])
			if len(key) == apiKeyLength {
				break
			}
		}
	}
	return APIKeyPrefix + string(key), nil
}
