// Package wizard holds the three-step flow of the sizing page: choose a
// method, choose an installation type, then enter loads.
package wizard

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"MyGens/internal/calc/sizing"
)

type Step int

const (
	StepMethod Step = iota + 1
	StepType
	StepLoads
)

type Method string

const (
	Visual      Method = "visual"
	Engineering Method = "engineering"
)

var (
	ErrOutOfOrder = errors.New("selection out of order")
	ErrUnknown    = errors.New("unknown selection")
)

// State is immutable; transitions return a new value.
type State struct {
	Step             Step
	Method           Method
	InstallationType sizing.InstallationType
}

func Start() State {
	return State{Step: StepMethod}
}

// ChooseMethod is valid only on the first step. The engineering method
// skips straight to the load table with residential defaults.
func (s State) ChooseMethod(m Method) (State, error) {
	if s.Step != StepMethod {
		return s, fmt.Errorf("%w: method on step %d", ErrOutOfOrder, s.Step)
	}
	switch m {
	case Visual:
		return State{Step: StepType, Method: m}, nil
	case Engineering:
		return State{Step: StepLoads, Method: m, InstallationType: sizing.Residential}, nil
	default:
		return s, fmt.Errorf("%w: method %q", ErrUnknown, m)
	}
}

// ChooseType moves to the load step. On the load step it switches the
// installation in place.
func (s State) ChooseType(t sizing.InstallationType) (State, error) {
	if s.Step == StepMethod {
		return s, fmt.Errorf("%w: installation type before method", ErrOutOfOrder)
	}
	if t != sizing.Residential && t != sizing.Industrial {
		return s, fmt.Errorf("%w: installation type %q", ErrUnknown, t)
	}
	s.Step = StepLoads
	s.InstallationType = t
	return s, nil
}

// Prev goes back one step and forgets the choice made there. It never goes
// below the first step.
func (s State) Prev() State {
	switch s.Step {
	case StepLoads:
		return State{Step: StepType, Method: s.Method}
	default:
		return Start()
	}
}

// Query encodes the state for links and forms on the sizing page.
func (s State) Query() url.Values {
	q := url.Values{}
	if s.Method != "" {
		q.Set("method", string(s.Method))
	}
	if s.Step == StepType {
		q.Set("step", strconv.Itoa(int(StepType)))
	}
	if s.Step == StepLoads && s.InstallationType != "" {
		q.Set("type", string(s.InstallationType))
	}
	return q
}

// FromQuery replays the selections carried in q. An explicit step=2 with no
// type holds the wizard on the type step, which the engineering method
// otherwise skips. Anything that does not replay cleanly restarts the wizard.
func FromQuery(q url.Values) State {
	s := Start()
	m := q.Get("method")
	if m == "" {
		return s
	}
	s, err := s.ChooseMethod(Method(m))
	if err != nil {
		return Start()
	}
	t := q.Get("type")
	if t == "" && q.Get("step") == strconv.Itoa(int(StepType)) {
		return State{Step: StepType, Method: s.Method}
	}
	if t != "" {
		if s, err = s.ChooseType(sizing.InstallationType(t)); err != nil {
			return Start()
		}
	}
	return s
}
