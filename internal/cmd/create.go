package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kjc-dev/ghhier/internal/command"
)

func newCreateCmd(use, short string, fn func(*cobra.Command, command.CreateInput) (*command.CreateResult, error), parentFlag string) *cobra.Command {
	var title, milestone string
	var labels, assignees []string
	var parentNumber int

	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
	}
	bodyInline, bodyFile, bodyStdin := addTextFlags(c, "body", "issue body")
	c.Flags().StringVar(&title, "title", "", "issue title (required)")
	_ = c.MarkFlagRequired("title")
	c.Flags().StringSliceVar(&labels, "labels", nil, "additional labels, comma-separated")
	c.Flags().StringSliceVar(&assignees, "assignees", nil, "assignee logins, comma-separated")
	c.Flags().StringVar(&milestone, "milestone", "", "milestone title (created if it doesn't already exist)")
	if parentFlag != "" {
		c.Flags().IntVar(&parentNumber, parentFlag, 0, "parent issue number (required)")
		_ = c.MarkFlagRequired(parentFlag)
	}

	c.RunE = func(c *cobra.Command, _ []string) error {
		body, err := resolveText(bodyInline, bodyFile, bodyStdin)
		if err != nil {
			return emit(nil, err)
		}
		in := command.CreateInput{
			Repo: runtime.repo, Title: title, BodyOverride: body,
			Labels: labels, Assignees: assignees, ParentNumber: parentNumber,
			MilestoneTitle: milestone,
		}
		result, err := fn(c, in)
		if err != nil {
			return emit(nil, err)
		}
		return emit(issueReport{Issue: result.Issue, Fallback: result.Fallback}, nil)
	}
	return c
}

func init() {
	rootCmd.AddCommand(
		newCreateCmd("create-epic", "Create an Epic", func(c *cobra.Command, in command.CreateInput) (*command.CreateResult, error) {
			return command.CreateEpic(c.Context(), runtime.cmdCtx, in)
		}, ""),
		newCreateCmd("create-task", "Create a Task under an Epic", func(c *cobra.Command, in command.CreateInput) (*command.CreateResult, error) {
			return command.CreateTask(c.Context(), runtime.cmdCtx, in)
		}, "parent-epic"),
		newCreateCmd("create-sub-task", "Create a Sub-task under a Task", func(c *cobra.Command, in command.CreateInput) (*command.CreateResult, error) {
			return command.CreateSubTask(c.Context(), runtime.cmdCtx, in)
		}, "parent-task"),
	)
}
