package validate

import (
	"regexp"
	"strings"
)

// Subscriber digits after the two-digit area code.
const (
	LandlineDigits = 8
	MobileDigits   = 9
)

// DefaultLandline is stored when the optional landline is left blank.
const DefaultLandline = "(00) 0000-0000"

var (
	landlinePattern = regexp.MustCompile(`^\(\d{2}\) \d{4}-\d{4}$`)
	mobilePattern   = regexp.MustCompile(`^\(\d{2}\) \d{5}-\d{4}$`)
)

// MaskPhone formats raw keystrokes progressively as "(DD", "(DD) DDDD" and
// "(DD) DDDD-DDDD", or the 5+4 mobile variant when maxDigits is 9.
func MaskPhone(raw string, maxDigits int) string {
	v := OnlyDigits(raw)
	if len(v) > 2+maxDigits {
		v = v[:2+maxDigits]
	}
	head := maxDigits - 4
	switch {
	case len(v) <= 2:
		return "(" + v
	case len(v) <= 2+head:
		return "(" + v[:2] + ") " + v[2:]
	default:
		return "(" + v[:2] + ") " + v[2:2+head] + "-" + v[2+head:]
	}
}

// Phone validates a masked phone number. An optional field holding no
// digits at all (empty, or just the mask's opening parenthesis) is valid.
func Phone(s string, required bool, maxDigits int) error {
	raw := strings.TrimSpace(s)
	if required {
		if raw == "" {
			return fail(CodeMissing, "Informe o celular.")
		}
	} else if OnlyDigits(raw) == "" {
		return nil
	}
	pattern := landlinePattern
	if maxDigits == MobileDigits {
		pattern = mobilePattern
	}
	if !pattern.MatchString(raw) {
		return fail(CodeBadFormat, "Telefone inválido.")
	}
	return nil
}

// PhoneBlank reports whether a landline value should receive DefaultLandline.
func PhoneBlank(s string) bool {
	return OnlyDigits(s) == ""
}
