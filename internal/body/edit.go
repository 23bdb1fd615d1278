package body

import (
	"strconv"
	"strings"

	"github.com/kjc-dev/ghhier/internal/apperrors"
)

// AddSection appends a new, empty section at the end of the section
// list (before the log block). It fails if a section with the same
// case-folded title already exists.
func (d *Document) AddSection(title string) (*Section, error) {
	if _, ok := d.FindSection(title); ok {
		return nil, &apperrors.SectionAlreadyExists{Title: title}
	}
	s := &Section{Title: title}
	d.Sections = append(d.Sections, s)
	return s, nil
}

// SetContent replaces a section's body wholesale and re-scans it for
// todos, as if it had just been parsed.
func (s *Section) SetContent(content string) {
	fresh := parseSection(s.Title, strings.Split(content, "\n"))
	s.Lines = fresh.Lines
	s.Todos = fresh.Todos
}

// AddTodo appends a new, unchecked todo at the end of the section. It
// fails with DuplicateTodo if a todo with the exact same text (case
// sensitive) already exists.
func (s *Section) AddTodo(text string) (*Todo, error) {
	for _, t := range s.Todos {
		if t.Text == text {
			return nil, &apperrors.DuplicateTodo{Section: s.Title, Text: text}
		}
	}
	s.Lines = append(s.Lines, "- [ ] "+text)
	t := &Todo{Text: text, Checked: false, LineIndex: len(s.Lines) - 1}
	s.Todos = append(s.Todos, t)
	return t, nil
}

// ToggleByMatch finds the unique todo whose text contains substr
// (case-insensitive) and flips its checked state in place. Zero matches
// is TodoNotFound, listing the section's own todos; more than one is
// AmbiguousMatch, per S5.
func (s *Section) ToggleByMatch(substr string) (*Todo, error) {
	needle := strings.ToLower(substr)
	var matches []*Todo
	for _, t := range s.Todos {
		if strings.Contains(strings.ToLower(t.Text), needle) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		var available []string
		for _, t := range s.Todos {
			available = append(available, t.Text)
		}
		return nil, &apperrors.TodoNotFound{Section: s.Title, Match: substr, Available: available}
	case 1:
		t := matches[0]
		t.Checked = !t.Checked
		s.Lines[t.LineIndex] = renderTodoLine(t)
		return t, nil
	default:
		var candidates []string
		for _, t := range matches {
			candidates = append(candidates, t.Text)
		}
		return nil, &apperrors.AmbiguousMatch{Candidates: candidates}
	}
}

func renderTodoLine(t *Todo) string {
	mark := " "
	if t.Checked {
		mark = "x"
	}
	return "- [" + mark + "] " + t.Text
}

// EnsureParentReference inserts a "**Parent:** #n" line at the top of
// the prelude if one isn't already present, and reports whether it did
// so. It is idempotent: a document that already carries a (possibly
// different) parent reference is left untouched, since the graph edge
// is authoritative in that case.
func (d *Document) EnsureParentReference(n int) bool {
	if d.ParentNumber != nil {
		return false
	}
	line := "**Parent:** #" + strconv.Itoa(n)
	d.Prelude = append([]string{line, ""}, d.Prelude...)
	d.ParentNumber = &n
	return true
}

// AppendLogEntry appends a new entry to the log block, creating the
// block with the sentinel heading if the body has none yet. The log
// block is always the last region of the body.
func (d *Document) AppendLogEntry(e *LogEntry) {
	if d.Log == nil {
		d.Log = &LogBlock{Heading: LogHeading}
	}
	d.Log.Entries = append(d.Log.Entries, e)
}
