package model

import "time"

// Issue is a remote work item, assembled from whichever transport
// fields it. REST supplies Number/Body/Labels/Assignees/Milestone/Closed
// and Kind (from the type:<kind> label); Graph supplies
// NodeID/ParentNumber/ChildNumbers/ProjectItemID.
// Neither transport alone has the full picture; the Hybrid Client is
// the only place that merges them.
type Issue struct {
	Number    int
	NodeID    string
	Title     string
	Body      string
	Kind      IssueKind
	Labels    []string
	Assignees []string
	Milestone string
	Closed    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	URL       string

	// Hierarchy, populated by the Hybrid Client's hierarchy view.
	ParentNumber *int
	ChildNumbers []int

	// ProjectItemID is the Projects v2 item id for this issue within
	// the configured project, resolved lazily by the status_field
	// backend. Empty when the project-field backend isn't in use.
	ProjectItemID string
}

// State derives the issue's WorkflowState from its labels (labels
// backend) or is overridden by the caller when using the status_field
// backend: lifecycle state is derived, never stored as a first-class
// attribute of its own.
func (i *Issue) State() (WorkflowState, bool) {
	if i.Closed {
		return StateClosed, true
	}
	var found []WorkflowState
	for _, l := range i.Labels {
		if s, ok := ParseStatusLabel(l); ok {
			found = append(found, s)
		}
	}
	if len(found) == 0 {
		return StateBacklog, false
	}
	// Ambiguous (more than one status:* label present): the
	// lexicographically-first one wins.
	best := found[0]
	bestName := best.String()
	for _, s := range found[1:] {
		if s.String() < bestName {
			best = s
			bestName = s.String()
		}
	}
	return best, true
}

// AmbiguousStatusLabels reports every status:* label present when more
// than one is, so a caller that wants to warn about the ambiguity
// State() resolves silently can do so. Returns nil when zero or one
// status label is present.
func (i *Issue) AmbiguousStatusLabels() []string {
	var found []string
	for _, l := range i.Labels {
		if _, ok := ParseStatusLabel(l); ok {
			found = append(found, l)
		}
	}
	if len(found) < 2 {
		return nil
	}
	return found
}

// HasLabel reports whether the issue currently carries the exact label.
func (i *Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// Milestone is a project milestone resolved by title.
type Milestone struct {
	Number int
	Title  string
}

// Label is a repository label.
type Label struct {
	Name  string
	Color string
}

// Comment is a single issue comment.
type Comment struct {
	ID     int64
	Body   string
	Author string
}
