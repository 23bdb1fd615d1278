package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kjc-dev/ghhier/internal/command"
)

// addTextFlags registers the inline/file/stdin trio every free-text
// argument accepts (body, reason, todo text), bound under the given
// flag prefix (e.g. "body" -> --body/--body-file/--body-stdin).
func addTextFlags(fs *cobra.Command, prefix, help string) (*string, *string, *bool) {
	inline := fs.Flags().String(prefix, "", help+" (inline)")
	file := fs.Flags().String(prefix+"-file", "", help+" (read from file)")
	stdin := fs.Flags().Bool(prefix+"-stdin", false, help+" (read from stdin)")
	return inline, file, stdin
}

func resolveText(inline, file *string, stdin *bool) (string, error) {
	in := command.TextInput{Inline: *inline, File: *file, Stdin: *stdin}
	return in.Resolve(os.ReadFile, readStdin)
}

func readStdin() ([]byte, error) {
	return io.ReadAll(os.Stdin)
}
