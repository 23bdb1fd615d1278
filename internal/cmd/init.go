package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kjc-dev/ghhier/internal/command"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Ensure the repository carries every type:* and status:* label",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		result, err := command.Init(c.Context(), runtime.cmdCtx, runtime.repo)
		if result == nil {
			return emit(nil, err)
		}
		return emit(initReport{Items: result.Items, Failed: result.Failed}, err)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
