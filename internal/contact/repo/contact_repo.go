package repo

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-contact-go/internal/contact/entity"
)

// ContactRepo provides data access for the `usuarios` table using sqlx.
// Queries are written with `?` or named placeholders and rebound for the
// connected driver.
type ContactRepo struct {
	db *sqlx.DB
}

func NewContactRepo(db *sqlx.DB) *ContactRepo { return &ContactRepo{db: db} }

const selectColumns = `SELECT id, nome, email, data_nascimento, profissao, COALESCE(telefone, '') AS telefone,
	celular, check1, check2, check3 FROM usuarios`

// EnsureTable creates the usuarios table if not exists (idempotent).
// Email is intentionally not UNIQUE: uniqueness is a form-level check.
func (r *ContactRepo) EnsureTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, ddl(r.db.DriverName()))
	return err
}

func ddl(driver string) string {
	switch driver {
	case "postgres":
		return `CREATE TABLE IF NOT EXISTS usuarios (
  id BIGSERIAL PRIMARY KEY,
  nome VARCHAR(255) NOT NULL,
  email VARCHAR(255) NOT NULL,
  data_nascimento DATE NOT NULL,
  profissao VARCHAR(155) NOT NULL,
  telefone VARCHAR(20),
  celular VARCHAR(20) NOT NULL,
  check1 CHAR(1) NOT NULL DEFAULT 'n',
  check2 CHAR(1) NOT NULL DEFAULT 'n',
  check3 CHAR(1) NOT NULL DEFAULT 'n'
)`
	case "sqlite":
		return `CREATE TABLE IF NOT EXISTS usuarios (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  nome TEXT NOT NULL,
  email TEXT NOT NULL,
  data_nascimento TEXT NOT NULL,
  profissao TEXT NOT NULL,
  telefone TEXT,
  celular TEXT NOT NULL,
  check1 TEXT NOT NULL DEFAULT 'n',
  check2 TEXT NOT NULL DEFAULT 'n',
  check3 TEXT NOT NULL DEFAULT 'n'
)`
	default:
		return `CREATE TABLE IF NOT EXISTS usuarios (
  id INT AUTO_INCREMENT PRIMARY KEY,
  nome VARCHAR(255) NOT NULL,
  email VARCHAR(255) NOT NULL,
  data_nascimento DATE NOT NULL,
  profissao VARCHAR(155) NOT NULL,
  telefone VARCHAR(20),
  celular VARCHAR(20) NOT NULL,
  check1 CHAR(1) NOT NULL DEFAULT 'n',
  check2 CHAR(1) NOT NULL DEFAULT 'n',
  check3 CHAR(1) NOT NULL DEFAULT 'n'
) DEFAULT CHARSET=utf8mb4`
	}
}

// List returns every contact, newest first.
func (r *ContactRepo) List(ctx context.Context) ([]entity.Contact, error) {
	out := []entity.Contact{}
	if err := r.db.SelectContext(ctx, &out, selectColumns+` ORDER BY id DESC`); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns the matching contacts (zero or one).
func (r *ContactRepo) GetByID(ctx context.Context, id int64) ([]entity.Contact, error) {
	out := []entity.Contact{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(selectColumns+` WHERE id = ?`), id); err != nil {
		return nil, err
	}
	return out, nil
}

const insertContact = `INSERT INTO usuarios (nome, email, data_nascimento, profissao, telefone, celular, check1, check2, check3)
	VALUES (:nome, :email, :data_nascimento, :profissao, :telefone, :celular, :check1, :check2, :check3)`

// Create inserts c and returns the new ID.
func (r *ContactRepo) Create(ctx context.Context, c *entity.Contact) (int64, error) {
	if r.db.DriverName() == "postgres" {
		rows, err := r.db.NamedQueryContext(ctx, insertContact+` RETURNING id`, c)
		if err != nil {
			return 0, err
		}
		defer rows.Close()
		if rows.Next() {
			if err := rows.Scan(&c.ID); err != nil {
				return 0, err
			}
			return c.ID, nil
		}
		if err := rows.Err(); err != nil {
			return 0, err
		}
		return 0, errors.New("no id returned")
	}
	res, err := r.db.NamedExecContext(ctx, insertContact, c)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.ID = id
	return id, nil
}

// Update overwrites every column of the row matching c.ID and returns the
// number of matched rows.
func (r *ContactRepo) Update(ctx context.Context, c *entity.Contact) (int64, error) {
	const q = `UPDATE usuarios SET nome = :nome, email = :email, data_nascimento = :data_nascimento,
		profissao = :profissao, telefone = :telefone, celular = :celular,
		check1 = :check1, check2 = :check2, check3 = :check3
		WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, q, c)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes the row and returns the number of affected rows.
func (r *ContactRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM usuarios WHERE id = ?`), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
