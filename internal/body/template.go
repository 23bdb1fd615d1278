package body

// DefaultTemplate builds the stock body for a newly created issue: one
// empty section per entry in required (the project's configured
// required_sections for this kind, or model.DefaultRequiredSections
// when the project doesn't override it), so a fresh issue already
// satisfies its own RequiredSectionMissing precondition structurally
// (content is still empty until the author fills it in via
// set-body/create-todo).
func DefaultTemplate(required []string) *Document {
	d := &Document{trailingNewline: true}
	for _, name := range required {
		d.Sections = append(d.Sections, &Section{Title: name, Lines: []string{""}})
	}
	return d
}

// MissingRequiredSections reports which of the required section titles
// are absent from the document, preserving the caller's ordering.
func (d *Document) MissingRequiredSections(required []string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := d.FindSection(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
