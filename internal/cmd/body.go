package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kjc-dev/ghhier/internal/command"
)

var setBodyCmd = &cobra.Command{
	Use:   "set-body <number>",
	Short: "Replace an issue's entire body",
	Args:  cobra.ExactArgs(1),
}

var createTodoCmd = &cobra.Command{
	Use:   "create-todo <number> <section>",
	Short: "Add an unchecked todo to a section",
	Args:  cobra.ExactArgs(2),
}

var checkTodoCmd = &cobra.Command{
	Use:   "check-todo <number> <section>",
	Short: "Toggle the todo in a section matching text",
	Args:  cobra.ExactArgs(2),
}

func init() {
	bodyInline, bodyFile, bodyStdin := addTextFlags(setBodyCmd, "body", "new issue body")
	setBodyCmd.RunE = func(c *cobra.Command, args []string) error {
		number, err := parseIssueNumber(args[0])
		if err != nil {
			return emit(nil, err)
		}
		newBody, err := resolveText(bodyInline, bodyFile, bodyStdin)
		if err != nil {
			return emit(nil, err)
		}
		issue, err := command.SetBody(c.Context(), runtime.cmdCtx, runtime.repo, number, newBody)
		return emit(issue, err)
	}

	var createSection bool
	textInline, textFile, textStdin := addTextFlags(createTodoCmd, "text", "todo text")
	createTodoCmd.Flags().BoolVar(&createSection, "create-section", false, "create the section if it doesn't already exist")
	createTodoCmd.RunE = func(c *cobra.Command, args []string) error {
		number, err := parseIssueNumber(args[0])
		if err != nil {
			return emit(nil, err)
		}
		text, err := resolveText(textInline, textFile, textStdin)
		if err != nil {
			return emit(nil, err)
		}
		issue, err := command.CreateTodo(c.Context(), runtime.cmdCtx, runtime.repo, number, args[1], text, createSection)
		return emit(issue, err)
	}

	var match string
	checkTodoCmd.Flags().StringVar(&match, "match", "", "substring identifying the todo to toggle (required)")
	_ = checkTodoCmd.MarkFlagRequired("match")
	checkTodoCmd.RunE = func(c *cobra.Command, args []string) error {
		number, err := parseIssueNumber(args[0])
		if err != nil {
			return emit(nil, err)
		}
		issue, err := command.CheckTodo(c.Context(), runtime.cmdCtx, runtime.repo, number, args[1], match)
		return emit(issue, err)
	}

	rootCmd.AddCommand(setBodyCmd, createTodoCmd, checkTodoCmd)
}
