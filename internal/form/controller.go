// Package form implements the contact registration form: field state,
// masks and validation, create/edit modes, the submission protocol and the
// two transient message channels.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-contact-go/internal/contact/entity"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/validate"
)

var (
	// ErrInvalid is returned by Submit when a field fails validation. No
	// record was sent.
	ErrInvalid = errors.New("form has invalid fields")
	// ErrBirthDate is returned by Submit when the birth date cannot be
	// converted to storage form.
	ErrBirthDate = errors.New("birth date conversion failed")
	// ErrCanceled is returned by Delete when the user declines.
	ErrCanceled = errors.New("deletion not confirmed")
)

// Gateway is the record transport used by the controller.
type Gateway interface {
	Lister
	Get(ctx context.Context, id int64) (*entity.Contact, error)
	Create(ctx context.Context, c *entity.Contact) (int64, error)
	Update(ctx context.Context, id int64, c *entity.Contact) error
	Delete(ctx context.Context, id int64) error
}

// Route addresses the form. ID 0 is the blank create route; Updated is the
// one-shot flag set after a successful edit.
type Route struct {
	ID      int64
	Updated bool
}

// Navigator changes the current route. The host is expected to call Open
// with the new route; it must not do so from within Navigate.
type Navigator interface {
	Navigate(r Route)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Control is the state of one text field.
type Control struct {
	Value   string
	Touched bool
	Dirty   bool
	Pending bool
	Err     error
}

// Row is a listing entry in display form.
type Row struct {
	ID             int64
	Nome           string
	Email          string
	DataNascimento string
	Profissao      string
	Telefone       string
	Celular        string
	Checks         [3]bool
}

// Controller is constructed once per session. All methods are safe for
// concurrent use; gateway calls run without the lock held.
type Controller struct {
	gw      Gateway
	nav     Navigator
	confirm Confirmer
	clock   clockwork.Clock
	logger  *zap.SugaredLogger
	checker *EmailChecker

	rules       map[validate.Field]validate.Func
	masks       map[validate.Field]func(string) string
	normalizers map[validate.Field]func(string) string

	mu       sync.Mutex
	mode     Mode
	id       int64
	formID   int64
	controls map[validate.Field]*Control
	checks   [3]bool
	rows     []Row

	// email uniqueness state: the key last verified and its outcome
	emailSeq     uint64
	emailChecked string
	emailTaken   error

	formMsg channel
	listMsg channel
}

type Option func(*Controller)

func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithChecker replaces the default email checker.
func WithChecker(ec *EmailChecker) Option {
	return func(c *Controller) { c.checker = ec }
}

func NewController(gw Gateway, nav Navigator, confirm Confirmer, opts ...Option) *Controller {
	c := &Controller{gw: gw, nav: nav, confirm: confirm}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.logger == nil {
		c.logger = zap.NewNop().Sugar()
	}
	if c.checker == nil {
		c.checker = NewEmailChecker(gw, c.clock, DefaultDebounce)
	}
	c.rules = validate.Rules(c.clock.Now)
	c.masks = validate.Masks()
	c.normalizers = validate.Normalizers()
	c.reset()
	return c
}

func (c *Controller) lock() func() {
	c.mu.Lock()
	return c.mu.Unlock
}

// reset clears every field and flag. Caller holds the lock.
func (c *Controller) reset() {
	c.checker.Cancel()
	c.formID = 0
	c.checks = [3]bool{}
	c.emailSeq++
	c.emailChecked, c.emailTaken = "", nil
	c.controls = make(map[validate.Field]*Control, len(validate.TextFields))
	for _, f := range validate.TextFields {
		ctrl := &Control{}
		ctrl.Err = c.rules[f](ctrl.Value)
		c.controls[f] = ctrl
	}
}

// Open binds r. The blank route resets the form into create mode; an id
// enters edit mode and loads that record. The listing is refreshed either
// way.
func (c *Controller) Open(ctx context.Context, r Route) error {
	c.mu.Lock()
	if r.Updated {
		c.formMsg.set(c.clock, KindSuccess, MsgUpdated, bannerTTL, c.lock)
	}
	c.reset()
	if r.ID == 0 {
		c.mode, c.id = ModeCreate, 0
	} else {
		c.mode, c.id = ModeEdit, r.ID
	}
	c.mu.Unlock()

	if r.Updated {
		c.nav.Navigate(Route{ID: r.ID})
	}

	var loadErr error
	if r.ID != 0 {
		loadErr = c.load(ctx, r.ID)
	}
	if err := c.Refresh(ctx); err != nil && loadErr == nil {
		return err
	}
	return loadErr
}

func (c *Controller) load(ctx context.Context, id int64) error {
	rec, err := c.gw.Get(ctx, id)

	defer c.lock()()
	if c.id != id {
		return nil
	}
	if err != nil {
		c.logger.Warnw("load contact failed", "id", id, "err", err)
		c.formMsg.set(c.clock, KindDanger, MsgLoadFailed, messageTTL, c.lock)
		return fmt.Errorf("load contact %d: %w", id, err)
	}

	if rec.ID != 0 {
		c.id = rec.ID
	}
	c.formID = c.id
	values := map[validate.Field]string{
		validate.FieldName:       rec.Nome,
		validate.FieldEmail:      strings.TrimSpace(rec.Email),
		validate.FieldBirthDate:  validate.ISOToBR(string(rec.DataNascimento)),
		validate.FieldOccupation: rec.Profissao,
		validate.FieldLandline:   rec.Telefone,
		validate.FieldMobile:     rec.Celular,
	}
	for f, v := range values {
		ctrl := c.controls[f]
		*ctrl = Control{Value: v}
		c.validate(f)
	}
	c.checks = [3]bool{bool(rec.Check1), bool(rec.Check2), bool(rec.Check3)}
	return nil
}

// Refresh reloads the listing. Any uniqueness verdict for the email was
// taken against the old listing and is dropped.
func (c *Controller) Refresh(ctx context.Context) error {
	list, err := c.gw.List(ctx)
	if err != nil {
		c.logger.Warnw("load listing failed", "err", err)
		return err
	}
	rows := make([]Row, 0, len(list))
	for _, rec := range list {
		rows = append(rows, Row{
			ID:             rec.ID,
			Nome:           rec.Nome,
			Email:          rec.Email,
			DataNascimento: validate.ISOToBR(string(rec.DataNascimento)),
			Profissao:      rec.Profissao,
			Telefone:       rec.Telefone,
			Celular:        rec.Celular,
			Checks:         [3]bool{bool(rec.Check1), bool(rec.Check2), bool(rec.Check3)},
		})
	}

	defer c.lock()()
	c.rows = rows
	c.forgetEmail()
	return nil
}

// forgetEmail cancels the uniqueness check in flight and clears the cached
// verdict, so the next blur or submit asks again. Caller holds the lock.
func (c *Controller) forgetEmail() {
	c.checker.Cancel()
	c.emailSeq++
	c.emailChecked, c.emailTaken = "", nil
	email := c.controls[validate.FieldEmail]
	email.Pending = false
	c.validate(validate.FieldEmail)
}

// Input applies raw keystrokes to field f and returns the masked value.
func (c *Controller) Input(f validate.Field, raw string) string {
	defer c.lock()()
	ctrl, ok := c.controls[f]
	if !ok {
		return raw
	}
	if mask := c.masks[f]; mask != nil {
		raw = mask(raw)
	}
	ctrl.Value = raw
	ctrl.Dirty = true
	if f == validate.FieldEmail {
		c.checker.Cancel()
		c.emailSeq++
		ctrl.Pending = false
	}
	c.validate(f)
	return ctrl.Value
}

// SetCheck sets checkbox n (1 to 3).
func (c *Controller) SetCheck(n int, v bool) {
	if n < 1 || n > 3 {
		return
	}
	defer c.lock()()
	c.checks[n-1] = v
}

// Blur marks f touched and normalizes it. Leaving a syntactically valid
// email starts the debounced uniqueness check.
func (c *Controller) Blur(ctx context.Context, f validate.Field) {
	defer c.lock()()
	ctrl, ok := c.controls[f]
	if !ok {
		return
	}
	ctrl.Touched = true
	if norm := c.normalizers[f]; norm != nil {
		ctrl.Value = norm(ctrl.Value)
	}
	c.validate(f)
	if f != validate.FieldEmail || ctrl.Err != nil {
		return
	}

	key := validate.EmailKey(ctrl.Value)
	if key == c.emailChecked {
		return
	}
	c.emailSeq++
	seq := c.emailSeq
	ctrl.Pending = true
	c.checker.Check(ctx, key, c.id, func(err error) {
		defer c.lock()()
		if seq != c.emailSeq {
			return
		}
		c.controls[validate.FieldEmail].Pending = false
		c.applyUnique(key, err)
	})
}

// applyUnique records a finished uniqueness check. Transport failures leave
// the email unverified. Caller holds the lock.
func (c *Controller) applyUnique(key string, err error) {
	if err != nil && validate.CodeOf(err) != validate.CodeNotUnique {
		c.logger.Warnw("email uniqueness check failed", "err", err)
		return
	}
	c.emailChecked, c.emailTaken = key, err
	c.validate(validate.FieldEmail)
}

// validate recomputes the error of f. Caller holds the lock.
func (c *Controller) validate(f validate.Field) {
	ctrl := c.controls[f]
	ctrl.Err = c.rules[f](ctrl.Value)
	if f == validate.FieldEmail && ctrl.Err == nil && c.emailChecked == validate.EmailKey(ctrl.Value) {
		ctrl.Err = c.emailTaken
	}
}

func (c *Controller) invalid() bool {
	for _, f := range validate.TextFields {
		if c.controls[f].Err != nil {
			return true
		}
	}
	return false
}

func (c *Controller) touchAll() {
	for _, ctrl := range c.controls {
		ctrl.Touched = true
	}
}

// Submit validates the form and creates or updates the record. On gateway
// failure the fields are left as they were so the user can retry.
func (c *Controller) Submit(ctx context.Context) error {
	c.checker.Wait()

	c.mu.Lock()
	for _, f := range validate.TextFields {
		c.validate(f)
	}
	if c.invalid() {
		c.touchAll()
		c.mu.Unlock()
		return ErrInvalid
	}
	email := c.controls[validate.FieldEmail]
	key, id := validate.EmailKey(email.Value), c.id
	unchecked := key != c.emailChecked
	c.mu.Unlock()

	// a value that never went through blur is verified now
	if unchecked {
		err := c.checker.Verify(ctx, key, id)
		c.mu.Lock()
		c.applyUnique(key, err)
		c.mu.Unlock()
	}

	c.mu.Lock()
	if c.invalid() {
		c.touchAll()
		c.mu.Unlock()
		return ErrInvalid
	}

	for _, f := range []validate.Field{validate.FieldName, validate.FieldOccupation} {
		c.controls[f].Value = validate.NormalizeSpaces(c.controls[f].Value)
	}
	landline := c.controls[validate.FieldLandline]
	if validate.PhoneBlank(landline.Value) {
		landline.Value = validate.DefaultLandline
		c.validate(validate.FieldLandline)
	}
	iso, ok := validate.BRToISO(c.controls[validate.FieldBirthDate].Value)
	if !ok {
		c.formMsg.set(c.clock, KindDanger, MsgBadBirthDate, messageTTL, c.lock)
		c.mu.Unlock()
		return ErrBirthDate
	}

	rec := c.record(iso)
	edit := c.mode == ModeEdit && rec.ID != 0
	c.mu.Unlock()

	if edit {
		return c.update(ctx, rec)
	}
	return c.create(ctx, rec)
}

// record builds the outgoing payload. Caller holds the lock.
func (c *Controller) record(iso string) *entity.Contact {
	id := c.id
	if id == 0 {
		id = c.formID
	}
	return &entity.Contact{
		ID:             id,
		Nome:           c.controls[validate.FieldName].Value,
		Email:          strings.TrimSpace(c.controls[validate.FieldEmail].Value),
		DataNascimento: entity.Date(iso),
		Profissao:      c.controls[validate.FieldOccupation].Value,
		Telefone:       c.controls[validate.FieldLandline].Value,
		Celular:        c.controls[validate.FieldMobile].Value,
		Check1:         entity.Flag(c.checks[0]),
		Check2:         entity.Flag(c.checks[1]),
		Check3:         entity.Flag(c.checks[2]),
	}
}

func (c *Controller) create(ctx context.Context, rec *entity.Contact) error {
	id, err := c.gw.Create(ctx, rec)
	if err != nil {
		c.logger.Warnw("create contact failed", "err", err)
		c.withLock(func() { c.formMsg.set(c.clock, KindDanger, MsgCreateFailed, messageTTL, c.lock) })
		return err
	}
	c.logger.Debugw("contact created", "id", id)
	c.withLock(func() {
		c.formMsg.set(c.clock, KindSuccess, MsgCreated, messageTTL, c.lock)
		c.reset()
	})
	_ = c.Refresh(ctx)
	return nil
}

func (c *Controller) update(ctx context.Context, rec *entity.Contact) error {
	if err := c.gw.Update(ctx, rec.ID, rec); err != nil {
		c.logger.Warnw("update contact failed", "id", rec.ID, "err", err)
		c.withLock(func() { c.formMsg.set(c.clock, KindDanger, MsgUpdateFailed, messageTTL, c.lock) })
		return err
	}
	c.logger.Debugw("contact updated", "id", rec.ID)
	c.withLock(func() { c.formMsg.set(c.clock, KindSuccess, MsgUpdated, messageTTL, c.lock) })
	_ = c.Refresh(ctx)
	c.nav.Navigate(Route{Updated: true})
	return nil
}

// Delete asks for confirmation and removes record id. Deleting the record
// being edited returns to the blank route.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	if id == 0 {
		return nil
	}
	if !c.confirm.Confirm(MsgConfirm) {
		return ErrCanceled
	}
	if err := c.gw.Delete(ctx, id); err != nil {
		c.logger.Warnw("delete contact failed", "id", id, "err", err)
		c.withLock(func() { c.listMsg.set(c.clock, KindDanger, MsgDeleteFailed, messageTTL, c.lock) })
		return err
	}
	var editing bool
	c.withLock(func() {
		c.listMsg.set(c.clock, KindSuccess, MsgDeleted, messageTTL, c.lock)
		editing = c.id == id
	})
	_ = c.Refresh(ctx)
	if editing {
		c.nav.Navigate(Route{})
	}
	return nil
}

// Edit navigates to the edit route of id.
func (c *Controller) Edit(id int64) {
	if id == 0 {
		return
	}
	c.nav.Navigate(Route{ID: id})
}

// Close stops pending timers and waits for in-flight checks.
func (c *Controller) Close() {
	c.withLock(func() {
		c.checker.Cancel()
		c.formMsg.stop()
		c.listMsg.stop()
	})
	c.checker.Wait()
}

func (c *Controller) withLock(fn func()) {
	defer c.lock()()
	fn()
}

func (c *Controller) Mode() Mode {
	defer c.lock()()
	return c.mode
}

// ID returns the bound record id, 0 in create mode.
func (c *Controller) ID() int64 {
	defer c.lock()()
	return c.id
}

func (c *Controller) Title() string {
	if c.Mode() == ModeEdit {
		return "Editar Contato"
	}
	return "Cadastro de Contatos"
}

// Control returns a copy of the state of field f.
func (c *Controller) Control(f validate.Field) Control {
	defer c.lock()()
	if ctrl, ok := c.controls[f]; ok {
		return *ctrl
	}
	return Control{}
}

func (c *Controller) Check(n int) bool {
	if n < 1 || n > 3 {
		return false
	}
	defer c.lock()()
	return c.checks[n-1]
}

// Invalid reports whether any field currently fails validation.
func (c *Controller) Invalid() bool {
	defer c.lock()()
	return c.invalid()
}

func (c *Controller) Rows() []Row {
	defer c.lock()()
	return append([]Row(nil), c.rows...)
}

func (c *Controller) FormMessage() (Message, bool) {
	defer c.lock()()
	return c.formMsg.get()
}

func (c *Controller) ListMessage() (Message, bool) {
	defer c.lock()()
	return c.listMsg.get()
}

// WaitPending blocks until in-flight email checks have settled.
func (c *Controller) WaitPending() { c.checker.Wait() }
