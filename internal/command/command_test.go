package command

import (
	"testing"

	"github.com/kjc-dev/ghhier/internal/model"
)

func TestResolveBodyUsesDefaultTemplateWhenNoOverride(t *testing.T) {
	doc := resolveBody("", model.DefaultRequiredSections(model.KindTask))
	if len(doc.Sections) == 0 {
		t.Fatal("expected default template to populate sections")
	}
}

func TestResolveBodyParsesOverride(t *testing.T) {
	doc := resolveBody("## Summary\nhand-written\n", model.DefaultRequiredSections(model.KindTask))
	sec, ok := doc.FindSection("Summary")
	if !ok {
		t.Fatal("expected Summary section from override")
	}
	if len(sec.Lines) == 0 || sec.Lines[0] != "hand-written" {
		t.Fatalf("unexpected section content: %v", sec.Lines)
	}
}

func TestWithTypeLabelAppendsKindAndBacklog(t *testing.T) {
	labels := withTypeLabel([]string{"area:api"}, model.KindEpic)
	want := map[string]bool{"area:api": true, "type:epic": true, "status:backlog": true}
	if len(labels) != len(want) {
		t.Fatalf("got %v", labels)
	}
	for _, l := range labels {
		if !want[l] {
			t.Errorf("unexpected label %q", l)
		}
	}
}

func TestMustParentKind(t *testing.T) {
	if got := mustParentKind(model.KindTask); got != model.KindEpic {
		t.Fatalf("got %v", got)
	}
	if got := mustParentKind(model.KindSubTask); got != model.KindTask {
		t.Fatalf("got %v", got)
	}
}

func TestStandardLabelsCoversAllKindsAndStates(t *testing.T) {
	labels := standardLabels()
	for _, name := range []string{"type:epic", "type:task", "type:sub-task", "status:backlog", "status:closed"} {
		if _, ok := labels[name]; !ok {
			t.Errorf("missing label %q", name)
		}
	}
}
