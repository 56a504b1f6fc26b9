package validate

import (
	"strings"
	"unicode"

	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Email checks the basic address shape first so each failure gets its own
// code, then applies the conventional address-syntax check.
func Email(s string) error {
	v := strings.TrimSpace(s)
	if v == "" {
		return fail(CodeMissing, "Informe o e-mail.")
	}
	if strings.IndexFunc(v, unicode.IsSpace) >= 0 {
		return fail(CodeContainsSpace, "O e-mail não pode conter espaços.")
	}
	if strings.Count(v, "@") != 1 {
		return fail(CodeWrongAtCount, "O e-mail deve conter exatamente um @.")
	}
	local, domain, _ := strings.Cut(v, "@")
	if local == "" || domain == "" {
		return fail(CodeMalformed, "E-mail inválido.")
	}
	if !strings.Contains(domain, ".") {
		return fail(CodeNoDotInDomain, "O domínio do e-mail deve conter um ponto.")
	}
	if err := is.EmailFormat.Validate(v); err != nil {
		return fail(CodeMalformed, "E-mail inválido.")
	}
	return nil
}

// EmailKey is the form used to compare addresses for uniqueness.
func EmailKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
