package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kjc-dev/ghhier/internal/command"
	"github.com/kjc-dev/ghhier/internal/config"
	"github.com/kjc-dev/ghhier/internal/hybrid"
	"github.com/kjc-dev/ghhier/internal/workflow"
)

// newTransitionCmd builds one of the six workflow verbs. They differ
// only in the transition name looked up in workflow.Transitions, so one
// constructor serves all six (mirrors command.Transition collapsing the
// six verbs into a single function).
func newTransitionCmd(name, short string) *cobra.Command {
	c := &cobra.Command{
		Use:   name + " <number>",
		Short: short,
		Args:  cobra.ExactArgs(1),
	}
	msgInline, msgFile, msgStdin := addTextFlags(c, "message", "free-text reason recorded in the audit log")
	c.RunE = func(c *cobra.Command, args []string) error {
		number, err := parseIssueNumber(args[0])
		if err != nil {
			return emit(nil, err)
		}
		message, err := resolveText(msgInline, msgFile, msgStdin)
		if err != nil {
			return emit(nil, err)
		}
		var pf *hybrid.ProjectFieldConfig
		if cfg := runtime.cmdCtx.Config; cfg.StatusMethod == config.StatusField {
			pf = &hybrid.ProjectFieldConfig{
				ProjectID: cfg.ProjectField.ProjectID,
				FieldID:   cfg.ProjectField.FieldID,
				OptionIDs: cfg.ProjectField.Options,
			}
		}
		result, err := command.Transition(c.Context(), runtime.cmdCtx, runtime.repo, number, name, message, pf)
		if err != nil {
			return emit(nil, err)
		}
		return emit(transitionReport{Number: number, From: result.From, To: result.To}, nil)
	}
	return c
}

func init() {
	for _, t := range workflow.Transitions {
		rootCmd.AddCommand(newTransitionCmd(t.Name, "Run the "+t.Name+" workflow transition"))
	}
}
