package util

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	verificationCodeMin = 100000
	verificationCodeMax = 999999
)

// GenerateVerificationCode returns a uniformly random 6-digit code in
// 100000-999999, so it never starts with a zero.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(verificationCodeMax-verificationCodeMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+verificationCodeMin, 10), nil
}

// IsVerificationCode reports whether s has the shape of an issued code.
func IsVerificationCode(s string) bool {
	if len(s) != 6 || s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
