// Package form is the client-side notification form as an explicit state
// machine: Editing, Submitting, Success and Error. Success clears itself back
// to Editing after a timeout unless an edit or Close cancels it first.
package form

import (
	"context"
	"errors"
	"sync"
	"time"

	"notify-gateway/internal/domain"
	"notify-gateway/internal/notification/schema"
)

// DefaultSuccessTimeout is how long the success state is shown.
const DefaultSuccessTimeout = 10 * time.Second

// State is a form state.
type State int

const (
	Editing State = iota
	Submitting
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "unknown"
}

// Field is an editable text field.
type Field int

const (
	FirstName Field = iota
	LastName
	Email
	Phone
)

// Channel is a contact channel the requester can opt into.
type Channel int

const (
	EmailChannel Channel = iota
	PhoneChannel
)

var (
	// ErrSubmitting is returned for edits or submits while a submit is in flight.
	ErrSubmitting = errors.New("form: submission in progress")
	// ErrUnknownSupervisor is returned when selecting an id not in the directory.
	ErrUnknownSupervisor = errors.New("form: unknown supervisor")
	// ErrUnknownField is returned for an out-of-range Field.
	ErrUnknownField = errors.New("form: unknown field")
)

// Submitter sends a validated request.
type Submitter interface {
	Submit(ctx context.Context, req domain.NotificationRequest) (domain.Acknowledgment, error)
}

// Values are the form inputs.
type Values struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	SupervisorID string
	EmailEnabled bool
	PhoneEnabled bool
}

// View is a point-in-time copy of the form.
type View struct {
	State   State
	Values  Values
	Error   string
	Message string
}

// Transition is delivered to observers on every state change.
type Transition struct {
	From State
	To   State
}

// timerFunc schedules f after d and returns a stop function.
type timerFunc func(d time.Duration, f func()) (stop func() bool)

func afterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Controller owns the form state. It is safe for concurrent use; observers
// are called without the lock held.
type Controller struct {
	mu          sync.Mutex
	submitter   Submitter
	state       State
	values      Values
	errMsg      string
	message     string
	supervisors []domain.Supervisor
	byID        map[string]domain.Supervisor

	successTimeout time.Duration
	schedule       timerFunc
	stopTimer      func() bool
	generation     uint64

	observers []func(Transition)
	pending   []Transition
}

// Option configures the Controller.
type Option func(*Controller)

// WithSuccessTimeout overrides DefaultSuccessTimeout.
func WithSuccessTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.successTimeout = d
	}
}

// WithTimer replaces time.AfterFunc, for tests.
func WithTimer(schedule func(d time.Duration, f func()) (stop func() bool)) Option {
	return func(c *Controller) {
		c.schedule = schedule
	}
}

// New creates a controller in the Editing state.
func New(submitter Submitter, opts ...Option) *Controller {
	c := &Controller{
		submitter:      submitter,
		state:          Editing,
		byID:           map[string]domain.Supervisor{},
		successTimeout: DefaultSuccessTimeout,
		schedule:       afterFunc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnTransition registers an observer for state changes.
func (c *Controller) OnTransition(fn func(Transition)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// SetDirectory replaces the supervisors the form can select from. A selected
// id that is no longer present is cleared.
func (c *Controller) SetDirectory(supervisors []domain.Supervisor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supervisors = append([]domain.Supervisor(nil), supervisors...)
	c.byID = make(map[string]domain.Supervisor, len(supervisors))
	for _, s := range supervisors {
		c.byID[s.ID] = s
	}
	if _, ok := c.byID[c.values.SupervisorID]; !ok {
		c.values.SupervisorID = ""
	}
}

// Directory returns the selectable supervisors in display order.
func (c *Controller) Directory() []domain.Supervisor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Supervisor(nil), c.supervisors...)
}

// View returns a copy of the current form.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{State: c.state, Values: c.values, Error: c.errMsg, Message: c.message}
}

// SetField sets a text field.
func (c *Controller) SetField(f Field, value string) error {
	return c.edit(func(v *Values) error {
		switch f {
		case FirstName:
			v.FirstName = value
		case LastName:
			v.LastName = value
		case Email:
			v.Email = value
		case Phone:
			v.Phone = value
		default:
			return ErrUnknownField
		}
		return nil
	})
}

// ToggleChannel enables or disables a contact channel. A disabled channel is
// submitted as an empty string but keeps its typed value.
func (c *Controller) ToggleChannel(ch Channel, enabled bool) error {
	return c.edit(func(v *Values) error {
		switch ch {
		case EmailChannel:
			v.EmailEnabled = enabled
		case PhoneChannel:
			v.PhoneEnabled = enabled
		default:
			return ErrUnknownField
		}
		return nil
	})
}

// SelectSupervisor selects a supervisor from the loaded directory.
func (c *Controller) SelectSupervisor(id string) error {
	return c.edit(func(v *Values) error {
		if _, ok := c.byID[id]; !ok {
			return ErrUnknownSupervisor
		}
		v.SupervisorID = id
		return nil
	})
}

// edit applies fn in Editing, Error or Success; the latter two move to
// Editing and cancel any pending success timeout.
func (c *Controller) edit(fn func(*Values) error) error {
	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		return ErrSubmitting
	}
	if err := fn(&c.values); err != nil {
		c.mu.Unlock()
		return err
	}
	c.cancelTimer()
	c.errMsg = ""
	c.message = ""
	c.transition(Editing)
	c.unlockAndNotify()
	return nil
}

// Request builds the request the form would submit.
func (c *Controller) Request() domain.NotificationRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.request()
}

func (c *Controller) request() domain.NotificationRequest {
	req := domain.NotificationRequest{
		FirstName: c.values.FirstName,
		LastName:  c.values.LastName,
	}
	if c.values.EmailEnabled {
		req.Email = c.values.Email
	}
	if c.values.PhoneEnabled {
		req.PhoneNumber = c.values.Phone
	}
	if s, ok := c.byID[c.values.SupervisorID]; ok {
		req.Supervisor = &s
	}
	return req
}

// Submit validates the form locally and, if valid, sends it. A local
// validation failure moves to Error without a network call. The returned
// error is the validation or submitter error, also reflected in View.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		return ErrSubmitting
	}
	c.cancelTimer()
	req := c.request()
	if err := schema.Validate(req); err != nil {
		c.fail(err)
		c.unlockAndNotify()
		return err
	}
	c.errMsg = ""
	c.message = ""
	c.transition(Submitting)
	c.unlockAndNotify()

	ack, err := c.submitter.Submit(ctx, req)

	c.mu.Lock()
	if err != nil {
		c.fail(err)
		c.unlockAndNotify()
		return err
	}
	c.values = Values{
		EmailEnabled: c.values.EmailEnabled,
		PhoneEnabled: c.values.PhoneEnabled,
	}
	c.message = ack.Message
	c.transition(Success)
	c.startTimer()
	c.unlockAndNotify()
	return nil
}

// Close cancels any pending success timeout.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelTimer()
}

func (c *Controller) fail(err error) {
	c.errMsg = err.Error()
	c.message = ""
	c.transition(Error)
}

func (c *Controller) startTimer() {
	c.generation++
	gen := c.generation
	c.stopTimer = c.schedule(c.successTimeout, func() {
		c.mu.Lock()
		if c.generation != gen || c.state != Success {
			c.mu.Unlock()
			return
		}
		c.stopTimer = nil
		c.message = ""
		c.transition(Editing)
		c.unlockAndNotify()
	})
}

func (c *Controller) cancelTimer() {
	c.generation++
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
}

// transition records a state change; callers must hold mu.
func (c *Controller) transition(to State) {
	if c.state == to {
		return
	}
	c.pending = append(c.pending, Transition{From: c.state, To: to})
	c.state = to
}

func (c *Controller) unlockAndNotify() {
	pending := c.pending
	c.pending = nil
	observers := append(([]func(Transition))(nil), c.observers...)
	c.mu.Unlock()
	for _, t := range pending {
		for _, fn := range observers {
			fn(t)
		}
	}
}
