package validate

import (
	"regexp"
	"unicode/utf8"
)

const (
	minOccupationLength = 3
	maxOccupationLength = 155
)

// digits are allowed for levels such as "Analista 2"
var occupationChars = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ0-9 \-.'/&()]+$`)

func Occupation(s string) error {
	v := NormalizeSpaces(s)
	if v == "" {
		return fail(CodeMissing, "Informe a profissão.")
	}
	n := utf8.RuneCountInString(v)
	if n < minOccupationLength {
		return fail(CodeTooShort, "A profissão deve ter ao menos 3 caracteres.")
	}
	if n > maxOccupationLength {
		return fail(CodeTooLong, "A profissão deve ter no máximo 155 caracteres.")
	}
	if !occupationChars.MatchString(v) {
		return fail(CodeInvalidCharacters, "A profissão contém caracteres inválidos.")
	}
	return nil
}
