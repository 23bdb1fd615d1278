package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kjc-dev/ghhier/internal/command"
)

var getCmd = &cobra.Command{
	Use:       "get <kind>",
	Short:     "Show the merged view of one issue, with its hierarchy",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"epic", "task", "sub-task", "issue"},
}

func init() {
	var id int
	var format string
	getCmd.Flags().IntVar(&id, "id", 0, "issue number (required)")
	getCmd.Flags().StringVar(&format, "format", "rich", "output format: rich or json")
	_ = getCmd.MarkFlagRequired("id")

	getCmd.RunE = func(c *cobra.Command, args []string) error {
		if format == "json" {
			flagJSON = true
		}
		issue, err := command.Get(c.Context(), runtime.cmdCtx, runtime.repo, id)
		return emit(issue, err)
	}
	rootCmd.AddCommand(getCmd)
}
