package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxNameLength = 255

// a word of latin letters (accented included), optionally joined by an
// internal hyphen or apostrophe: "Ana", "Sant'Anna", "Maria-José"
var nameToken = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ]+(?:['-][A-Za-zÀ-ÖØ-öø-ÿ]+)*$`)

// FullName requires at least two words made only of letters.
func FullName(s string) error {
	v := NormalizeSpaces(s)
	if v == "" {
		return fail(CodeMissing, "Informe o nome completo.")
	}
	parts := strings.Split(v, " ")
	if len(parts) < 2 {
		return fail(CodeTooFewWords, "Informe nome e sobrenome.")
	}
	for _, p := range parts {
		if !nameToken.MatchString(p) {
			return fail(CodeInvalidCharacters, "O nome deve conter apenas letras.")
		}
	}
	if utf8.RuneCountInString(v) > maxNameLength {
		return fail(CodeTooLong, "O nome deve ter no máximo 255 caracteres.")
	}
	return nil
}
