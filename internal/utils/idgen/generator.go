package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const idCharset = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateSecureID produces a prefixed identifier such as "msg_a1b2c3d4",
// using crypto/rand for the random portion.
func GenerateSecureID(prefix string, length int) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("id prefix must not be empty")
	}
	if length <= 0 {
		return "", fmt.Errorf("id length must be positive, got %d", length)
	}

	max := big.NewInt(int64(len(idCharset)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		buf[i] = idCharset[n.Int64()]
	}

	return prefix + "_" + string(buf), nil
}
