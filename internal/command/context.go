// Package command holds the verb-level operations the CLI exposes,
// each a plain function over a shared Context rather than a method on a
// class hierarchy.
package command

import (
	"go.uber.org/zap"

	"github.com/kjc-dev/ghhier/internal/config"
	"github.com/kjc-dev/ghhier/internal/hybrid"
)

// Context bundles everything a command function needs: the remote
// client, the project configuration, a logger, the acting user, and a
// clock seam so transitions can be tested deterministically.
type Context struct {
	Hybrid *hybrid.Client
	Config *config.Config
	Log    *zap.Logger
	Actor  string
	Now    func() string // returns an ISO-8601 UTC timestamp
}

// TextInput resolves the inline/file/stdin text options every
// free-text command argument accepts.
type TextInput struct {
	Inline string
	File   string
	Stdin  bool
}

// Resolve reads the configured source. A File of "-" means stdin, per
// the usual CLI convention. Setting more than one option is not
// rejected: stdin takes precedence over File, and File over Inline. readFile and readStdin are injected so
// command functions stay pure and testable; cmd wiring supplies
// os.ReadFile and reading os.Stdin.
func (t TextInput) Resolve(readFile func(string) ([]byte, error), readStdin func() ([]byte, error)) (string, error) {
	switch {
	case t.Stdin, t.File == "-":
		b, err := readStdin()
		return string(b), err
	case t.File != "":
		b, err := readFile(t.File)
		return string(b), err
	default:
		return t.Inline, nil
	}
}

// Repo is the owner/repo pair every command function takes, resolved
// from config.Config.Owner/Repo or an explicit --repo override.
type Repo struct {
	Owner, Repo string
}
