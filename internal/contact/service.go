package contact

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-contact-go/internal/contact/entity"
	contactrepo "github.com/ovaphlow/pitchfork/service-contact-go/internal/contact/repo"
)

// sentinel errors for common failure modes
var (
	ErrNotFound       = errors.New("contact not found")
	ErrInvalidID      = errors.New("invalid contact id")
	ErrInvalidPayload = errors.New("invalid contact payload")
	// ErrNothingUpdated is returned by Replace when no row matched. It is a
	// storage failure, not ErrNotFound: only Delete reports not-found.
	ErrNothingUpdated = errors.New("no row updated")
)

// ContactService implements the four gateway operations over the repo.
type ContactService struct {
	repo *contactrepo.ContactRepo
}

func NewContactService(db *sqlx.DB, r *contactrepo.ContactRepo) *ContactService {
	if r == nil {
		r = contactrepo.NewContactRepo(db)
	}
	return &ContactService{repo: r}
}

// EnsureSchema creates the backing table when missing.
func (s *ContactService) EnsureSchema(ctx context.Context) error {
	return s.repo.EnsureTable(ctx)
}

// List returns all contacts, newest first.
func (s *ContactService) List(ctx context.Context) ([]entity.Contact, error) {
	return s.repo.List(ctx)
}

// Get returns the contacts matching id; the slice is empty when none does.
func (s *ContactService) Get(ctx context.Context, id int64) ([]entity.Contact, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and stores a new contact, returning its id.
func (s *ContactService) Create(ctx context.Context, c *entity.Contact) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	c.ID = 0
	return s.repo.Create(ctx, c)
}

// Replace overwrites every field of contact id with c.
func (s *ContactService) Replace(ctx context.Context, id int64, c *entity.Contact) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	c.ID = id
	rows, err := s.repo.Update(ctx, c)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("contact %d: %w", id, ErrNothingUpdated)
	}
	return nil
}

// Delete removes contact id. It returns ErrNotFound when no row existed.
func (s *ContactService) Delete(ctx context.Context, id int64) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
