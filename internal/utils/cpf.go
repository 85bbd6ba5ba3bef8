package utils

// ValidateCPF checks length and both check digits of a CPF. Masked input is
// accepted. Sequences of one repeated digit are rejected.
func ValidateCPF(cpf string) bool {
	cpf = Canonical(cpf)
	if len(cpf) != 11 {
		return false
	}

	allSame := true
	for i := 1; i < len(cpf); i++ {
		if cpf[i] != cpf[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	return cpfCheckDigit(cpf[:9]) == cpf[9] && cpfCheckDigit(cpf[:10]) == cpf[10]
}

// cpfCheckDigit computes the next check digit for the given prefix
func cpfCheckDigit(prefix string) byte {
	sum := 0
	weight := len(prefix) + 1
	for i := 0; i < len(prefix); i++ {
		sum += int(prefix[i]-'0') * weight
		weight--
	}
	remainder := sum % 11
	if remainder < 2 {
		return '0'
	}
	return byte('0' + 11 - remainder)
}
