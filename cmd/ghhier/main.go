// Command ghhier manages an Epic/Task/Sub-task issue hierarchy on a
// hosted remote issue tracker.
package main

import (
	"os"

	"github.com/kjc-dev/ghhier/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
