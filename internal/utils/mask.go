package utils

import "strings"

// FieldKind identifies a masked input field
type FieldKind int

const (
	FieldCPF FieldKind = iota
	FieldPhone
	FieldCEP
)

// String returns the form field name for the kind
func (k FieldKind) String() string {
	switch k {
	case FieldCPF:
		return "cpf"
	case FieldPhone:
		return "telefone"
	case FieldCEP:
		return "cep"
	default:
		return "unknown"
	}
}

// MaskSpec describes one display layout. Separators[i] is written before
// Groups[i], and only once that group has at least one digit, which makes
// partial input produce a partial mask. Closers[i] is written right after
// Groups[i] once that group is full.
type MaskSpec struct {
	MaxDigits  int
	Groups     []int
	Separators []string
	Closers    []string
}

// masks lists the layouts per field, shortest first. The first layout whose
// MaxDigits fits the input is used; input is capped at the last one.
var masks = map[FieldKind][]MaskSpec{
	FieldCPF: {
		{MaxDigits: 11, Groups: []int{3, 3, 3, 2}, Separators: []string{"", ".", ".", "-"}},
	},
	FieldPhone: {
		{MaxDigits: 10, Groups: []int{2, 4, 4}, Separators: []string{"(", " ", "-"}, Closers: []string{")"}},
		{MaxDigits: 11, Groups: []int{2, 5, 4}, Separators: []string{"(", " ", "-"}, Closers: []string{")"}},
	},
	FieldCEP: {
		{MaxDigits: 8, Groups: []int{5, 3}, Separators: []string{"", "-"}},
	},
}

// MaxDigits returns the canonical length cap for a field kind
func MaxDigits(kind FieldKind) int {
	specs := masks[kind]
	if len(specs) == 0 {
		return 0
	}
	return specs[len(specs)-1].MaxDigits
}

// Format masks raw input for display. Non-digits are dropped and the digit
// count is capped; it never fails.
func Format(kind FieldKind, raw string) string {
	specs := masks[kind]
	if len(specs) == 0 {
		return Canonical(raw)
	}

	digits := Canonical(raw)
	if max := specs[len(specs)-1].MaxDigits; len(digits) > max {
		digits = digits[:max]
	}

	spec := specs[len(specs)-1]
	for _, s := range specs {
		if len(digits) <= s.MaxDigits {
			spec = s
			break
		}
	}

	return spec.apply(digits)
}

func (s MaskSpec) apply(digits string) string {
	var b strings.Builder
	rest := digits
	for i, size := range s.Groups {
		if rest == "" {
			break
		}
		if i < len(s.Separators) {
			b.WriteString(s.Separators[i])
		}
		full := size <= len(rest)
		if !full {
			size = len(rest)
		}
		b.WriteString(rest[:size])
		rest = rest[size:]
		if full && i < len(s.Closers) {
			b.WriteString(s.Closers[i])
		}
	}
	return b.String()
}

// Canonical returns only the ASCII digits of s
func Canonical(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// IsComplete reports whether the canonical value has exactly the maximum
// number of digits for the kind
func IsComplete(kind FieldKind, value string) bool {
	return len(Canonical(value)) == MaxDigits(kind)
}
