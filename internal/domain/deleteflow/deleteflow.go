// Package deleteflow models the confirm-then-apply interaction around a
// soft delete.
//
//	Idle -> ConfirmPending (Request)
//	ConfirmPending -> Applying (Confirm) | Idle (Cancel)
//	Applying -> Success (Succeed) | Error (Fail)
//	Success, Error -> Idle (Acknowledge)
package deleteflow

import (
	"errors"
	"fmt"
	"sync"
)

// State is a step of the delete interaction.
type State int

// Interaction states.
const (
	Idle State = iota
	ConfirmPending
	Applying
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ConfirmPending:
		return "confirm_pending"
	case Applying:
		return "applying"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event drives a transition.
type Event int

// Interaction events.
const (
	Request Event = iota
	Confirm
	Cancel
	Succeed
	Fail
	Acknowledge
)

func (e Event) String() string {
	switch e {
	case Request:
		return "request"
	case Confirm:
		return "confirm"
	case Cancel:
		return "cancel"
	case Succeed:
		return "succeed"
	case Fail:
		return "fail"
	case Acknowledge:
		return "acknowledge"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// ErrInvalidTransition is returned for an event the current state does not
// accept.
var ErrInvalidTransition = errors.New("invalid delete flow transition")

var transitions = map[State]map[Event]State{
	Idle:           {Request: ConfirmPending},
	ConfirmPending: {Confirm: Applying, Cancel: Idle},
	Applying:       {Succeed: Success, Fail: Error},
	Success:        {Acknowledge: Idle},
	Error:          {Acknowledge: Idle},
}

// Flow tracks one delete interaction for one target key.
type Flow struct {
	mu     sync.Mutex
	state  State
	target string
	err    error
}

// New returns a flow in the Idle state.
func New() *Flow { return &Flow{state: Idle} }

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Target returns the key the pending or last delete was requested for.
func (f *Flow) Target() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.target
}

// Err returns the failure recorded by Fail, if the flow is in Error.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Fire applies ev. An event the current state does not accept leaves the
// state unchanged and returns ErrInvalidTransition.
func (f *Flow) Fire(ev Event) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fire(ev)
}

func (f *Flow) fire(ev Event) (State, error) {
	next, ok := transitions[f.state][ev]
	if !ok {
		return f.state, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, f.state)
	}
	f.state = next
	if next == Idle {
		f.target = ""
		f.err = nil
	}
	return next, nil
}

// RequestDelete moves Idle -> ConfirmPending for key.
func (f *Flow) RequestDelete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.fire(Request); err != nil {
		return err
	}
	f.target = key
	return nil
}

// Complete records the outcome of Applying: nil moves to Success, anything
// else to Error.
func (f *Flow) Complete(err error) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		return f.fire(Succeed)
	}
	st, ferr := f.fire(Fail)
	if ferr == nil {
		f.err = err
	}
	return st, ferr
}
