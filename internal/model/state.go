package model

import "encoding/json"

// WorkflowState is one of the seven issue lifecycle states.
type WorkflowState int

const (
	StateBacklog WorkflowState = iota
	StatePlanning
	StateAwaitingPlanApproval
	StatePlanApproved
	StateInProgress
	StateAwaitingCompletionApproval
	StateClosed
)

var stateNames = [...]string{
	StateBacklog:                    "backlog",
	StatePlanning:                   "planning",
	StateAwaitingPlanApproval:       "awaiting-plan-approval",
	StatePlanApproved:               "plan-approved",
	StateInProgress:                 "in-progress",
	StateAwaitingCompletionApproval: "awaiting-completion-approval",
	StateClosed:                     "closed",
}

func (s WorkflowState) String() string {
	if int(s) < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalJSON renders the state name, not the internal ordinal, so the
// JSON envelope stays readable and stable across reorderings.
func (s WorkflowState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Label returns the status:<state> label used by the labels status
// backend.
func (s WorkflowState) Label() string {
	return "status:" + s.String()
}

// ParseWorkflowState parses the bare state name (no "status:" prefix).
func ParseWorkflowState(name string) (WorkflowState, bool) {
	for i, n := range stateNames {
		if n == name {
			return WorkflowState(i), true
		}
	}
	return StateBacklog, false
}

// ParseStatusLabel parses a full "status:<name>" label, returning false
// for labels that aren't status labels at all.
func ParseStatusLabel(label string) (WorkflowState, bool) {
	const prefix = "status:"
	if len(label) <= len(prefix) || label[:len(prefix)] != prefix {
		return StateBacklog, false
	}
	return ParseWorkflowState(label[len(prefix):])
}
