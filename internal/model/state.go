package model

import "fmt"

// LoadState is the loader's internal state.
type LoadState int

const (
	StateLoading LoadState = iota
	StateReady
	StateError
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("LoadState(%d)", int(s))
}

// Tracker enforces the load state machine: Loading→Ready, Loading→Error and
// Error→Loading (the fallback path). Ready is terminal.
type Tracker struct {
	state LoadState
	msg   string
	trace []LoadState
}

// NewTracker starts in Loading.
func NewTracker() *Tracker {
	return &Tracker{state: StateLoading, trace: []LoadState{StateLoading}}
}

// To moves to s. msg is kept for the Error state.
func (t *Tracker) To(s LoadState, msg string) error {
	ok := (t.state == StateLoading && (s == StateReady || s == StateError)) ||
		(t.state == StateError && s == StateLoading)
	if !ok {
		return fmt.Errorf("model: invalid load transition %s -> %s", t.state, s)
	}
	t.state = s
	t.msg = ""
	if s == StateError {
		t.msg = msg
	}
	t.trace = append(t.trace, s)
	return nil
}

// State returns the current state and the error message, if any.
func (t *Tracker) State() (LoadState, string) {
	return t.state, t.msg
}

// Trace returns every state visited, in order.
func (t *Tracker) Trace() []LoadState {
	return append([]LoadState(nil), t.trace...)
}
