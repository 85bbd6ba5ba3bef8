package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCPF(t *testing.T) {
	tests := []struct {
		name  string
		cpf   string
		valid bool
	}{
		{"canonical", "12345678909", true},
		{"masked", "123.456.789-09", true},
		{"real example 1", "11144477735", true},
		{"real example 2", "52998224725", true},
		{"leading zeros", "00000000191", true},
		{"wrong check digit", "12345678900", false},
		{"sequential digits", "12345678910", false},
		{"too short", "123456789", false},
		{"too long", "123456789012", false},
		{"empty", "", false},
		{"only letters", "abcdefghijk", false},
		{"mixed alphanumeric", "123abc78909", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateCPF(tt.cpf), "ValidateCPF(%q)", tt.cpf)
		})
	}
}

func TestValidateCPF_AllSameDigits(t *testing.T) {
	for d := '0'; d <= '9'; d++ {
		cpf := ""
		for i := 0; i < 11; i++ {
			cpf += string(d)
		}
		assert.False(t, ValidateCPF(cpf), "CPF %s should be invalid", cpf)
	}
}

func TestCPFCheckDigit(t *testing.T) {
	assert.Equal(t, byte('0'), cpfCheckDigit("123456789"))
	assert.Equal(t, byte('9'), cpfCheckDigit("1234567890"))
}
