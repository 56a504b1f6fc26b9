package validate

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Field names match the record's JSON keys.
type Field string

const (
	FieldName       Field = "nome"
	FieldEmail      Field = "email"
	FieldBirthDate  Field = "data_nascimento"
	FieldOccupation Field = "profissao"
	FieldLandline   Field = "telefone"
	FieldMobile     Field = "celular"
)

// TextFields lists the validated fields in form order.
var TextFields = []Field{FieldName, FieldEmail, FieldBirthDate, FieldOccupation, FieldLandline, FieldMobile}

// Func validates one field value.
type Func func(value string) error

// Rules returns the validator table. now supplies the current day for the
// birth date rule.
func Rules(now func() time.Time) map[Field]Func {
	return map[Field]Func{
		FieldName:  FullName,
		FieldEmail: Email,
		FieldBirthDate: func(v string) error {
			return BirthDate(v, now())
		},
		FieldOccupation: Occupation,
		FieldLandline: func(v string) error {
			return Phone(v, false, LandlineDigits)
		},
		FieldMobile: func(v string) error {
			return Phone(v, true, MobileDigits)
		},
	}
}

// Masks returns the live input mask for the fields that have one.
func Masks() map[Field]func(string) string {
	return map[Field]func(string) string{
		FieldBirthDate: MaskBirthDate,
		FieldLandline:  func(v string) string { return MaskPhone(v, LandlineDigits) },
		FieldMobile:    func(v string) string { return MaskPhone(v, MobileDigits) },
	}
}

// Normalizers returns the blur-time canonicalization per field.
func Normalizers() map[Field]func(string) string {
	return map[Field]func(string) string{
		FieldName:       NormalizeSpaces,
		FieldOccupation: NormalizeSpaces,
		FieldBirthDate:  NormalizeBirthDate,
	}
}

// Rule adapts fn to an ozzo-validation rule. It accepts any value whose
// kind is string, so named types such as a date column work too.
func Rule(fn Func) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, err := validation.EnsureString(value)
		if err != nil {
			return err
		}
		return fn(s)
	})
}
