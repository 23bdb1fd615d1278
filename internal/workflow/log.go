package workflow

import "github.com/kjc-dev/ghhier/internal/body"

// BuildLogEntry renders the audit-log record for a successful
// transition, in the three-line layout persisted to the issue body.
func BuildLogEntry(t Transition, actor, timestampISO8601, reason string) *body.LogEntry {
	entry := &body.LogEntry{
		Timestamp: timestampISO8601,
		FromState: t.From.String(),
		ToState:   t.To.String(),
		Actor:     actor,
	}
	if reason != "" {
		entry.Reason = []string{reason}
	}
	return entry
}
