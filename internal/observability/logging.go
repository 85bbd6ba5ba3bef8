package observability

import (
	"net/url"
	"strings"

	"github.com/prefeitura-rio/app-cadastro/internal/logging"
)

// Logger returns the global safe logger instance
func Logger() *logging.SafeLogger {
	return logging.Logger
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskCPF masks a CPF for logging, keeping the first three and the
// seventh to ninth digits. Masked input is accepted.
func MaskCPF(cpf string) string {
	d := digitsOf(cpf)
	if len(d) != 11 {
		return "***.***.***-**"
	}
	return d[:3] + ".***." + d[6:9] + "-**"
}

// MaskPhone keeps only the area code and the last two digits
func MaskPhone(phone string) string {
	d := digitsOf(phone)
	if len(d) < 10 {
		return "(**) ****-****"
	}
	return "(" + d[:2] + ") ****-**" + d[len(d)-2:]
}

// MaskForm flattens posted form values for logging. Personal identifiers
// are masked; empty fields are dropped.
func MaskForm(form url.Values) map[string]string {
	masked := make(map[string]string, len(form))
	for k, v := range form {
		if len(v) == 0 {
			continue
		}
		switch k {
		case "cpf":
			masked[k] = MaskCPF(v[0])
		case "telefone":
			masked[k] = MaskPhone(v[0])
		default:
			masked[k] = v[0]
		}
	}
	return masked
}
