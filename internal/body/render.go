package body

import (
	"strings"
	"unicode/utf16"

	"github.com/kjc-dev/ghhier/internal/apperrors"
)

// BodySizeLimit is the service's documented body-size ceiling, in
// UTF-16 code units.
const BodySizeLimit = 65536

// Render serializes the document back to bytes. The prelude and
// section lines untouched by any edit are reproduced verbatim, since
// editing only ever mutates the specific Lines entry or appends to a
// slice. The log block is the exception: it is rebuilt from its parsed
// entries, so blank lines inside it, text before its first "### "
// heading, and non-canonical entry spacing are not reproduced.
func (d *Document) Render() ([]byte, error) {
	var lines []string
	lines = append(lines, d.Prelude...)
	for _, s := range d.Sections {
		lines = append(lines, "## "+s.Title)
		lines = append(lines, s.Lines...)
	}
	if d.Log != nil {
		lines = append(lines, "## "+d.Log.Heading)
		lines = append(lines, renderLogBlock(d.Log)...)
	}

	out := strings.Join(lines, "\n")
	if d.trailingNewline || d.Log != nil {
		out += "\n"
	}

	size := utf16Len(out)
	if size > BodySizeLimit {
		return nil, &apperrors.BodyTooLarge{Size: size, Limit: BodySizeLimit}
	}
	return []byte(out), nil
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func renderLogBlock(lb *LogBlock) []string {
	var lines []string
	for _, e := range lb.Entries {
		lines = append(lines, "### "+e.Timestamp)
		lines = append(lines, "State changed from `"+e.FromState+"` to `"+e.ToState+"` by @"+e.Actor)
		if len(e.Reason) > 0 {
			lines = append(lines, "Reason: "+e.Reason[0])
			lines = append(lines, e.Reason[1:]...)
		}
	}
	return lines
}
