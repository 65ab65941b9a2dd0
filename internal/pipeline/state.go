package pipeline

import "time"

// State is a step in the life of one generation request.
type State string

const (
	StatePending     State = "pending"
	StateAssessing   State = "assessing"
	StateAborted     State = "aborted"
	StateChunking    State = "chunking"
	StateGenerating  State = "generating"
	StateValidating  State = "validating"
	StateAggregating State = "aggregating"
	StateCompleted   State = "completed"
)

var allowed = map[State][]State{
	StatePending:     {StateAssessing},
	StateAssessing:   {StateAborted, StateChunking},
	StateChunking:    {StateGenerating},
	StateGenerating:  {StateValidating},
	StateValidating:  {StateAggregating},
	StateAggregating: {StateCompleted},
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateAborted || s == StateCompleted
}

// CanTransition reports whether moving from s to next is legal.
func (s State) CanTransition(next State) bool {
	for _, n := range allowed[s] {
		if n == next {
			return true
		}
	}
	return false
}

// Transition records one state change.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}
