package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTPCode generates a cryptographically secure numeric code of
// exactly the given number of digits, uniform over
// [10^(digits-1), 10^digits - 1].
func GenerateOTPCode(digits int) (string, error) {
	if digits < 1 {
		return "", fmt.Errorf("invalid OTP length: %d", digits)
	}

	min := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits-1)), nil)
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	span := new(big.Int).Sub(max, min)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	return new(big.Int).Add(n, min).String(), nil
}
