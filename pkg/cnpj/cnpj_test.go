package cnpj

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "11222333000181", Normalize("11.222.333/0001-81"))
	assert.Equal(t, "11222333000181", Normalize("11222333000181"))
	assert.Equal(t, "123", Normalize(" 1-2.3 "))
	assert.Equal(t, "", Normalize("abc"))
}

func TestIsValid(t *testing.T) {
	valid := []string{
		"11.222.333/0001-81",
		"11222333000181",
	}
	for _, v := range valid {
		assert.True(t, IsValid(v), "expected %s to be valid", v)
	}

	invalid := []string{
		"",
		"11222333000182",    // wrong second check digit
		"11222333000171",    // wrong first check digit
		"1122233300018",     // 13 digits
		"112223330001811",   // 15 digits
		"11111111111111",    // all identical digits
		"00000000000000",    // all identical digits
		"11.222.333/0001-8", // truncated
	}
	for _, v := range invalid {
		assert.False(t, IsValid(v), "expected %s to be invalid", v)
	}
}

func TestIsValidCNES(t *testing.T) {
	assert.True(t, IsValidCNES("1234567"))
	assert.True(t, IsValidCNES("123-45.67"))
	assert.False(t, IsValidCNES("123456"))
	assert.False(t, IsValidCNES("12345678"))
	assert.False(t, IsValidCNES(""))
}
