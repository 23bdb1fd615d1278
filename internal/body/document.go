// Package body implements the lossless round-trip between an issue's
// Markdown body and a typed document model: prelude references,
// ordered sections with todos, and a trailing append-only log block.
//
// The parser never fails (malformed Markdown degrades to opaque section
// content); only the writer can fail, and only on the body-size
// ceiling. The split between parsing into a struct and rendering back
// out mirrors a frontmatter codec, generalised to a deeper line
// grammar since issue bodies have no YAML header to lean on.
package body

import "strings"

// LogHeading is the sentinel level-2 heading that introduces the
// audit-log block at the end of a persisted issue body.
const LogHeading = "Log"

// Document is the parsed form of an issue body.
type Document struct {
	// Prelude holds the raw lines before the first "## " heading,
	// verbatim, so untouched content round-trips byte for byte.
	Prelude []string

	// ParentNumber is the issue number parsed from a "**Parent:** #N"
	// line in Prelude, or nil if none is present.
	ParentNumber *int

	// ReferencedTasks are issue numbers mentioned via "- [.] #N" lines
	// in Prelude (Epic bodies referencing their tasks).
	ReferencedTasks []int

	// Sections holds every non-log "## " section, in source order.
	Sections []*Section

	// Log is the trailing audit-log block, or nil if the body has none.
	Log *LogBlock

	// trailingNewline records whether the source ended with "\n", so an
	// untouched document renders back identically.
	trailingNewline bool
}

// Section is the content between one "## " heading and the next (or the
// log block, or end of body).
type Section struct {
	// Title is the heading text exactly as written, used for display.
	Title string
	// Lines are every line of the section body, in source order,
	// including the lines that are also todos. Editing a todo in place
	// mutates the corresponding entry of Lines; nothing else changes.
	Lines []string
	// Todos are the checkbox lines found in Lines, outside fenced code
	// blocks, in order.
	Todos []*Todo
}

// key is the case-folded, trimmed form used for section-identity
// comparisons.
func (s *Section) key() string {
	return strings.ToLower(strings.TrimSpace(s.Title))
}

// Todo is a single Markdown checkbox line inside a section.
type Todo struct {
	Text      string
	Checked   bool
	LineIndex int // index into the owning Section.Lines
}

// LogBlock is the trailing audit-log region of the body.
type LogBlock struct {
	// Heading is the sentinel heading text exactly as written (normally
	// "Log", but an existing body may spell it differently).
	Heading string
	Entries []*LogEntry
}

// LogEntry is one parsed record from the log block, per the three-line
// layout it's rendered in.
type LogEntry struct {
	Timestamp string
	FromState string
	ToState   string
	Actor     string
	// Reason holds the free-text lines following "Reason: ", including
	// any continuation lines up to the next "### " heading or EOF.
	Reason []string
}

// FindSection returns the section whose case-folded title matches name,
// or false if none exists.
func (d *Document) FindSection(name string) (*Section, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, s := range d.Sections {
		if s.key() == key {
			return s, true
		}
	}
	return nil, false
}

// SectionTitles returns the display titles of every section, in order,
// for use in SectionNotFound's valid_options list.
func (d *Document) SectionTitles() []string {
	out := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		out[i] = s.Title
	}
	return out
}
