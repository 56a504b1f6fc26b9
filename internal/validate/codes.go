// Package validate holds the field validators and input masks of the contact
// registration form. Every validator is a pure function returning nil or an
// ozzo-validation Error whose Code identifies the single failure kind.
package validate

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Code is the failure kind reported for one field.
type Code string

const (
	CodeMissing           Code = "missing"
	CodeTooFewWords       Code = "tooFewWords"
	CodeInvalidCharacters Code = "invalidCharacters"
	CodeTooShort          Code = "tooShort"
	CodeTooLong           Code = "tooLong"
	CodeBadFormat         Code = "badFormat"
	CodeNotARealDate      Code = "notARealDate"
	CodeNotInPast         Code = "notInPast"
	CodeContainsSpace     Code = "containsSpace"
	CodeWrongAtCount      Code = "wrongAtCount"
	CodeMalformed         Code = "malformed"
	CodeNoDotInDomain     Code = "noDotInDomain"
	CodeNotUnique         Code = "notUnique"
)

func fail(code Code, message string) error {
	return validation.NewError(string(code), message)
}

// Fail builds a validation error for code. Used by callers that produce
// failures outside this package, such as the async uniqueness check.
func Fail(code Code, message string) error { return fail(code, message) }

// CodeOf returns the failure kind carried by err, or "" when err is nil or
// not a validation error.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var ve validation.Error
	if errors.As(err, &ve) {
		return Code(ve.Code())
	}
	return ""
}
