package util

import (
	"crypto/rand"
	"math/big"
)

// RandomToken draws n symbols uniformly from alphabet using crypto/rand.
func RandomToken(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
