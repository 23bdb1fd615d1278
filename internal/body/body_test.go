package body

import (
	"strings"
	"testing"
)

func TestParseRoundTripIdentity(t *testing.T) {
	src := "**Parent:** #10\n\n## Summary\nSome prose.\n\n## Acceptance Criteria\n- [ ] first\n- [x] second\n\n## Log\n### 2026-01-01T00:00:00Z\nState changed from `backlog` to `planning` by @alice\nReason: kickoff\n"
	d := Parse([]byte(src))
	out, err := d.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != src {
		t.Fatalf("round trip mismatch:\nwant %q\ngot  %q", src, string(out))
	}
}

func TestFencedCodeBlockHidesTodos(t *testing.T) {
	src := "## Notes\n```\n- [ ] foo\n```\nafter\n"
	d := Parse([]byte(src))
	sec, ok := d.FindSection("Notes")
	if !ok {
		t.Fatal("expected Notes section")
	}
	if len(sec.Todos) != 0 {
		t.Fatalf("expected no todos parsed inside fence, got %d", len(sec.Todos))
	}
	out, err := d.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != src {
		t.Fatalf("round trip mismatch:\nwant %q\ngot  %q", src, string(out))
	}
}

func TestTodoPreservationAcrossUnrelatedEdit(t *testing.T) {
	src := "## Acceptance Criteria\n- [ ] A\n- [ ] B\n"
	d := Parse([]byte(src))
	sec, _ := d.FindSection("Acceptance Criteria")
	before := *sec.Todos[0]

	if _, err := sec.ToggleByMatch("B"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if sec.Todos[0].Text != before.Text || sec.Todos[0].Checked != before.Checked || sec.Todos[0].LineIndex != before.LineIndex {
		t.Fatalf("unrelated todo mutated: got %+v want %+v", sec.Todos[0], before)
	}
	if !sec.Todos[1].Checked {
		t.Fatal("expected targeted todo to be checked")
	}
}

func TestAddTodoDuplicateRejected(t *testing.T) {
	d := Parse([]byte("## Tasks\n- [ ] write tests\n"))
	sec, _ := d.FindSection("Tasks")
	if _, err := sec.AddTodo("write tests"); err == nil {
		t.Fatal("expected DuplicateTodo error")
	}
}

func TestToggleAmbiguousMatch(t *testing.T) {
	d := Parse([]byte("## Tasks\n- [ ] write tests\n- [ ] write docs\n"))
	sec, _ := d.FindSection("Tasks")
	if _, err := sec.ToggleByMatch("write"); err == nil {
		t.Fatal("expected AmbiguousMatch error")
	}
	if _, err := sec.ToggleByMatch("docs"); err != nil {
		t.Fatalf("expected unambiguous match to succeed, got %v", err)
	}
}

func TestAppendLogEntryIsMonotonic(t *testing.T) {
	d := Parse([]byte("## Summary\nhi\n"))
	if d.Log != nil {
		t.Fatal("expected no log block yet")
	}
	d.AppendLogEntry(&LogEntry{Timestamp: "2026-01-01T00:00:00Z", FromState: "backlog", ToState: "planning", Actor: "alice"})
	if len(d.Log.Entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(d.Log.Entries))
	}
	d.AppendLogEntry(&LogEntry{Timestamp: "2026-01-02T00:00:00Z", FromState: "planning", ToState: "awaiting-plan-approval", Actor: "alice"})
	if len(d.Log.Entries) != 2 {
		t.Fatalf("expected log to grow monotonically, got %d entries", len(d.Log.Entries))
	}
}

func TestEnsureParentReferenceIdempotent(t *testing.T) {
	d := Parse([]byte("## Summary\nhi\n"))
	if !d.EnsureParentReference(10) {
		t.Fatal("expected first call to insert the reference")
	}
	if d.EnsureParentReference(99) {
		t.Fatal("expected second call to be a no-op once a parent reference exists")
	}
	if d.ParentNumber == nil || *d.ParentNumber != 10 {
		t.Fatalf("expected parent to remain 10, got %v", d.ParentNumber)
	}
}

func TestBodyTooLarge(t *testing.T) {
	d := &Document{Sections: []*Section{{Title: "Summary", Lines: []string{strings.Repeat("a", BodySizeLimit+1)}}}}
	if _, err := d.Render(); err == nil {
		t.Fatal("expected BodyTooLarge error")
	}
}
