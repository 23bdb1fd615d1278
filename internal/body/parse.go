package body

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	sectionHeadingRe  = regexp.MustCompile(`^## (.*)$`)
	logEntryHeadingRe = regexp.MustCompile(`^### (.*)$`)
	todoRe            = regexp.MustCompile(`^- \[([ xX])\] (.*)$`)
	parentRe          = regexp.MustCompile(`(?i)^\*\*Parent:?\*\*\s*#(\d+)`)
	taskMentionRe     = regexp.MustCompile(`^- \[.\]\s*#(\d+)`)
	fenceRe           = regexp.MustCompile("^(```|~~~)")
	logChangeRe       = regexp.MustCompile("^State changed from `([^`]*)` to `([^`]*)` by @(.*)$")
	logReasonRe       = regexp.MustCompile(`^Reason: ?(.*)$`)
)

// Parse splits raw issue-body bytes into a Document. It never fails:
// anything that doesn't match the expected grammar is retained as
// opaque section or prelude content.
func Parse(raw []byte) *Document {
	normalized := strings.ReplaceAll(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\r", "\n")
	trailingNewline := strings.HasSuffix(normalized, "\n") && normalized != ""
	lines := strings.Split(normalized, "\n")
	if trailingNewline {
		lines = lines[:len(lines)-1]
	}

	d := &Document{trailingNewline: trailingNewline}

	// Split into prelude + raw section blocks, locating the log block
	// by heading text along the way.
	i := 0
	for i < len(lines) {
		if m := sectionHeadingRe.FindStringSubmatch(lines[i]); m != nil {
			break
		}
		d.Prelude = append(d.Prelude, lines[i])
		i++
	}
	parsePrelude(d)

	for i < len(lines) {
		m := sectionHeadingRe.FindStringSubmatch(lines[i])
		title := m[1]
		i++
		start := i
		for i < len(lines) {
			if sectionHeadingRe.MatchString(lines[i]) {
				break
			}
			i++
		}
		body := lines[start:i]
		if strings.EqualFold(strings.TrimSpace(title), LogHeading) && d.Log == nil {
			d.Log = parseLogBlock(title, body)
			continue
		}
		d.Sections = append(d.Sections, parseSection(title, body))
	}

	return d
}

func parsePrelude(d *Document) {
	for _, line := range d.Prelude {
		if d.ParentNumber == nil {
			if m := parentRe.FindStringSubmatch(line); m != nil {
				n, err := strconv.Atoi(m[1])
				if err == nil {
					d.ParentNumber = &n
					continue
				}
			}
		}
		if m := taskMentionRe.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				d.ReferencedTasks = append(d.ReferencedTasks, n)
			}
		}
	}
}

func parseSection(title string, lines []string) *Section {
	s := &Section{Title: title, Lines: append([]string(nil), lines...)}
	inFence := false
	for idx, line := range lines {
		if fenceRe.MatchString(strings.TrimSpace(line)) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		m := todoRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		s.Todos = append(s.Todos, &Todo{
			Text:      strings.TrimRight(m[2], " \t"),
			Checked:   m[1] == "x" || m[1] == "X",
			LineIndex: idx,
		})
	}
	return s
}

// parseLogBlock parses the entries of the log block body, grouping
// lines by "### <timestamp>" heading.
func parseLogBlock(heading string, lines []string) *LogBlock {
	lb := &LogBlock{Heading: heading}
	var cur *LogEntry
	for _, line := range lines {
		if m := logEntryHeadingRe.FindStringSubmatch(line); m != nil {
			cur = &LogEntry{Timestamp: m[1]}
			lb.Entries = append(lb.Entries, cur)
			continue
		}
		if cur == nil {
			continue
		}
		if m := logChangeRe.FindStringSubmatch(line); m != nil {
			cur.FromState, cur.ToState, cur.Actor = m[1], m[2], m[3]
			continue
		}
		if m := logReasonRe.FindStringSubmatch(line); m != nil {
			cur.Reason = append(cur.Reason, m[1])
			continue
		}
		if line != "" {
			cur.Reason = append(cur.Reason, line)
		}
	}
	return lb
}
