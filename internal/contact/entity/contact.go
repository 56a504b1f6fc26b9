package entity

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ovaphlow/pitchfork/service-contact-go/internal/validate"
)

// Contact is a row of the `usuarios` table and the record exchanged with
// clients. Flags are JSON booleans on the wire and 's'/'n' in storage.
type Contact struct {
	ID             int64  `json:"id,omitempty" db:"id"`
	Nome           string `json:"nome" db:"nome"`
	Email          string `json:"email" db:"email"`
	DataNascimento Date   `json:"data_nascimento" db:"data_nascimento"`
	Profissao      string `json:"profissao" db:"profissao"`
	Telefone       string `json:"telefone" db:"telefone"`
	Celular        string `json:"celular" db:"celular"`
	Check1         Flag   `json:"check1" db:"check1"`
	Check2         Flag   `json:"check2" db:"check2"`
	Check3         Flag   `json:"check3" db:"check3"`
}

// Validate checks the payload shape accepted by the gateway. Field format
// rules belong to the form; here only presence and a storable birth date
// are enforced. Email uniqueness is not checked.
func (c Contact) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Nome, validation.Required.Error("nome é obrigatório"), validation.RuneLength(0, 255)),
		validation.Field(&c.Email, validation.Required.Error("email é obrigatório"), validation.RuneLength(0, 255)),
		validation.Field(&c.DataNascimento, validation.Required.Error("data_nascimento é obrigatória"),
			validate.Rule(validate.ISODate)),
		validation.Field(&c.Profissao, validation.Required.Error("profissao é obrigatória"), validation.RuneLength(0, 155)),
		validation.Field(&c.Celular, validation.Required.Error("celular é obrigatório")),
	)
}
