// Package cnpj validates and normalizes Brazilian company tax identifiers
// (CNPJ) and national health-facility registry ids (CNES).
package cnpj

import "strings"

var (
	firstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	secondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// Normalize strips any formatting (dots, slashes, dashes, spaces) and
// returns the digits only.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValid reports whether s is a valid CNPJ after normalization: 14 digits,
// not all identical, and both mod-11 check digits matching.
func IsValid(s string) bool {
	digits := Normalize(s)
	if len(digits) != 14 {
		return false
	}

	allSame := true
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	if checkDigit(digits, firstWeights) != int(digits[12]-'0') {
		return false
	}
	return checkDigit(digits, secondWeights) == int(digits[13]-'0')
}

func checkDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	rem := sum % 11
	if rem < 2 {
		return 0
	}
	return 11 - rem
}

// IsValidCNES reports whether s looks like a CNES id: exactly 7 digits.
// CNES has no published check-digit scheme, so only shape is enforced.
func IsValidCNES(s string) bool {
	return len(Normalize(s)) == 7
}
