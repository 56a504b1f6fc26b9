package form

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ovaphlow/pitchfork/service-contact-go/internal/contact/entity"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/validate"
)

// DefaultDebounce is the settle window before a uniqueness check hits the
// listing.
const DefaultDebounce = 300 * time.Millisecond

// Lister fetches the full record listing.
type Lister interface {
	List(ctx context.Context) ([]entity.Contact, error)
}

// EmailChecker verifies that an email is not used by another record. Each
// Check supersedes the previous one: its debounce timer and listing
// request are cancelled and its result is dropped.
type EmailChecker struct {
	lister Lister
	clock  clockwork.Clock
	delay  time.Duration

	mu      sync.Mutex
	idle    *sync.Cond
	cancel  context.CancelFunc
	seq     uint64
	running int
}

func NewEmailChecker(lister Lister, clock clockwork.Clock, delay time.Duration) *EmailChecker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	ec := &EmailChecker{lister: lister, clock: clock, delay: delay}
	ec.idle = sync.NewCond(&ec.mu)
	return ec
}

// Check starts a debounced check of email, ignoring the record excludeID.
// done receives nil, a notUnique validation error, or a transport error. It
// is not called when the check is superseded or ctx ends first.
func (ec *EmailChecker) Check(ctx context.Context, email string, excludeID int64, done func(error)) {
	ec.mu.Lock()
	if ec.cancel != nil {
		ec.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	ec.cancel = cancel
	ec.seq++
	seq := ec.seq
	ec.running++
	ec.mu.Unlock()

	go func() {
		defer ec.finish()
		defer cancel()

		t := ec.clock.NewTimer(ec.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.Chan():
		}

		err := ec.Verify(ctx, email, excludeID)
		if ctx.Err() != nil || !ec.current(seq) {
			return
		}
		done(err)
	}()
}

// Verify runs the check immediately.
func (ec *EmailChecker) Verify(ctx context.Context, email string, excludeID int64) error {
	key := validate.EmailKey(email)
	if key == "" {
		return nil
	}
	list, err := ec.lister.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range list {
		if c.ID != excludeID && validate.EmailKey(c.Email) == key {
			return validate.Fail(validate.CodeNotUnique, "email already registered")
		}
	}
	return nil
}

// Cancel abandons the check in flight, if any.
func (ec *EmailChecker) Cancel() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if ec.cancel != nil {
		ec.cancel()
		ec.cancel = nil
	}
	ec.seq++
}

// Wait blocks until every started check has finished or been dropped.
// Checks started while waiting are waited for too.
func (ec *EmailChecker) Wait() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	for ec.running > 0 {
		ec.idle.Wait()
	}
}

func (ec *EmailChecker) finish() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.running--
	if ec.running == 0 {
		ec.idle.Broadcast()
	}
}

func (ec *EmailChecker) current(seq uint64) bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return seq == ec.seq
}
